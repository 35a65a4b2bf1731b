package mailer

import (
	"fmt"
	"strings"
)

// SendVerificationCode emails a freshly issued email verification code.
func (m *Mailer) SendVerificationCode(to, username, code string) error {
	htmlBody := fmt.Sprintf(`
		<h2>Welcome to Chatify, %s!</h2>
		<p>We're thrilled to have you join our chat community. To get started, please verify your email address.</p>
		<p>Your verification code is:</p>
		<p style="font-size: 24px; font-weight: bold;">%s</p>
		<p>This code is valid for the next 5 minutes. If you didn't request this, you can safely ignore this message.</p>
		<p>– The Chatify Team</p>
	`, displayName(username), code)

	return m.SendHTML([]string{to}, "Your Chatify Verification Code", htmlBody)
}

// SendEmailChangeCode emails an email-change confirmation code to the
// account's current address, naming the requested new address.
func (m *Mailer) SendEmailChangeCode(to, username, newEmail, code string) error {
	htmlBody := fmt.Sprintf(`
		<h2>Email Change Request</h2>
		<p>Hi %s, someone (hopefully you) requested to change the email address on your Chatify account.</p>
		<p>The new requested email address is: <strong>%s</strong></p>
		<p>To confirm this change, please use the verification code below:</p>
		<p style="font-size: 24px; font-weight: bold;">%s</p>
		<p>This code is valid for the next 5 minutes. If you did not request this, please ignore this message or secure your account.</p>
		<p>– The Chatify Security Team</p>
	`, displayName(username), newEmail, code)

	return m.SendHTML([]string{to}, "Confirm Email Change Request", htmlBody)
}

// SendPasswordResetCode emails a password reset code.
func (m *Mailer) SendPasswordResetCode(to, username, code string) error {
	htmlBody := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>Hi %s, we received a request to reset the password for your Chatify account.</p>
		<p>If you made this request, use the code below to choose a new password:</p>
		<p style="font-size: 24px; font-weight: bold;">%s</p>
		<p>This code is valid for the next 5 minutes. If you did not request a password reset, you can safely ignore this email.</p>
		<p>– The Chatify Security Team</p>
	`, displayName(username), code)

	return m.SendHTML([]string{to}, "Reset Your Chatify Password", htmlBody)
}

func displayName(username string) string {
	if username == "" {
		return "there"
	}

	return strings.ToUpper(username[:1]) + username[1:]
}
