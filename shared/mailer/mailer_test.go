package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

func testMailer() *Mailer {
	return newMailer(&mailerConfig{
		Host:     "smtp.example.com",
		Port:     465,
		Secure:   true,
		Username: "user",
		Password: "pass",
		From:     "Credentials <no-reply@example.com>",
	})
}

func TestMailer_SetEmailMessage_Headers(t *testing.T) {
	m := testMailer()
	msg := gomail.NewMessage()

	m.setEmailMessage(msg, Email{
		To:       []string{"a@example.com"},
		Cc:       []string{"c@example.com"},
		Subject:  "Your code",
		Body:     "123456",
		HTMLBody: "<p>123456</p>",
	})

	if got := msg.GetHeader("From"); len(got) != 1 || got[0] != "Credentials <no-reply@example.com>" {
		t.Errorf("From = %v", got)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "a@example.com" {
		t.Errorf("To = %v", got)
	}
	if got := msg.GetHeader("Cc"); len(got) != 1 {
		t.Errorf("Cc = %v", got)
	}
	if got := msg.GetHeader("Bcc"); len(got) != 0 {
		t.Errorf("Bcc = %v, want none", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Your code" {
		t.Errorf("Subject = %v", got)
	}

	id := msg.GetHeader("Message-ID")
	if len(id) != 1 || !strings.HasSuffix(id[0], "@example.com>") {
		t.Errorf("Message-ID = %v", id)
	}
}

func TestMailer_SecureFlagSetsSSL(t *testing.T) {
	if !testMailer().dialer.SSL {
		t.Fatal("SMTP_SECURE=true should enable implicit TLS")
	}
}

func TestMailer_Send_Validation(t *testing.T) {
	m := testMailer()

	if err := m.Send(context.Background(), Email{Subject: "x"}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("err = %v, want ErrNoRecipients", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, testEmail); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMailerConfig_Validate(t *testing.T) {
	valid := mailerConfig{Host: "h", Port: 25, Username: "u", Password: "p", From: "f@x.com"}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(c *mailerConfig){
		"SMTP_HOST":     func(c *mailerConfig) { c.Host = "" },
		"SMTP_PORT":     func(c *mailerConfig) { c.Port = 0 },
		"SMTP_USERNAME": func(c *mailerConfig) { c.Username = "" },
		"SMTP_PASSWORD": func(c *mailerConfig) { c.Password = "" },
		"SMTP_FROM":     func(c *mailerConfig) { c.From = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			err := c.validate()
			if err == nil || !strings.Contains(err.Error(), name) {
				t.Fatalf("err = %v, want mention of %s", err, name)
			}
		})
	}
}

func TestSenderDomain(t *testing.T) {
	tests := map[string]string{
		"no-reply@example.com":         "example.com",
		"Team <team@mail.example.org>": "mail.example.org",
		"broken":                       "localhost",
		"trailing@":                    "localhost",
	}
	for in, want := range tests {
		if got := senderDomain(in); got != want {
			t.Errorf("senderDomain(%q) = %q, want %q", in, got, want)
		}
	}
}
