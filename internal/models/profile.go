package models

import "time"

type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CPF       string `json:"cpf"`
	Telefone  string `json:"telefone"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type UpdateProfileRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	CPF      string `json:"cpf" validate:"required"`
	Telefone string `json:"telefone" validate:"required"`
}

type PointRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Points      int       `json:"points"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
