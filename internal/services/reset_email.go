package services

import (
	"fmt"
	"net/url"
)

const resetEmailSubject = "Password Reset"

// BuildResetEmail renders the reset message. The link embeds the raw token
// and the email as query parameters, pointing at the frontend reset page.
func BuildResetEmail(frontendURL string, email string, token string) (subject string, textBody string, htmlBody string) {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	link := fmt.Sprintf("%s/reset.html?%s", frontendURL, q.Encode())

	textBody = fmt.Sprintf(
		"You requested a password reset for your account. Click the link to reset it: %s", link)

	htmlBody = fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; text-align: center; padding: 20px;">
			<h2 style="color: #333;">Password Reset</h2>
			<p style="color: #666;">You requested a password reset for your account.</p>
			<p style="color: #666;">Click the button below to reset your password:</p>
			<a href="%s" style="background-color: #509e2f; color: #F5F3F4; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Reset Password</a>
			<p style="color: #999; margin-top: 20px;">If you did not request this change, please ignore this email.</p>
		</div>
	`, link)

	return resetEmailSubject, textBody, htmlBody
}
