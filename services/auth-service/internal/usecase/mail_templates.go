package usecase

import (
	"fmt"
	"html"
	"time"

	"github.com/vasapolrittideah/credential-api/shared/mailer"
)

func resetCodeEmail(to, code string, expiresIn time.Duration) mailer.Email {
	minutes := int(expiresIn.Minutes())

	body := fmt.Sprintf(`Hi,

We received a request to reset the password for your account.

Your verification code is: %s

This code will expire in %d minutes. If you did not request a password reset,
you can safely ignore this email and your account will remain secure.
`, code, minutes)

	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>Your verification code is:</p>

		<p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p>

		<p>This code will expire in %d minutes.</p>
		<p>If you did not request a password reset, you can safely ignore this email and your account will remain secure.</p>
	`, code, minutes)

	return mailer.Email{
		To:       []string{to},
		Subject:  "Your password reset code",
		Body:     body,
		HTMLBody: htmlBody,
	}
}

func welcomeEmail(to, firstName string) mailer.Email {
	name := firstName
	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(`Hi %s,

Welcome aboard! Your account has been created and you can sign in with %s.
`, name, to)

	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Welcome aboard! Your account has been created and you can sign in with <b>%s</b>.</p>
	`, html.EscapeString(name), html.EscapeString(to))

	return mailer.Email{
		To:       []string{to},
		Subject:  "Welcome!",
		Body:     body,
		HTMLBody: htmlBody,
	}
}

func approvalEmail(to, businessName string) mailer.Email {
	name := businessName
	if name == "" {
		name = "your business"
	}

	body := fmt.Sprintf(`Hi,

Good news: %s has been approved as a service provider.
You can now sign in to the provider dashboard with %s and the password you were given.
`, name, to)

	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Good news: <b>%s</b> has been approved as a service provider.</p>
		<p>You can now sign in to the provider dashboard with <b>%s</b> and the password you were given.</p>
	`, html.EscapeString(name), html.EscapeString(to))

	return mailer.Email{
		To:       []string{to},
		Subject:  "Your provider account has been approved",
		Body:     body,
		HTMLBody: htmlBody,
	}
}
