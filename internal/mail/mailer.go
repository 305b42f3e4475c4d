// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

// Package mail delivers credential notifications over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/samber/oops"
)

// sendFunc matches smtp.SendMail. Swapped in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends credential notifications through an SMTP relay. It satisfies
// directory.CredentialMailer.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     sendFunc
}

// NewMailer creates a Mailer. Authentication is used only when username is
// non-empty, so unauthenticated relays on private networks work too.
func NewMailer(host string, port int, username, password, from string) (*Mailer, error) {
	if host == "" {
		return nil, oops.Errorf("smtp host is required")
	}
	if port <= 0 {
		return nil, oops.Errorf("smtp port must be positive")
	}
	if from == "" {
		return nil, oops.Errorf("smtp sender address is required")
	}
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}, nil
}

// SendCredentials delivers a generated username and secret to a new user.
func (m *Mailer) SendCredentials(ctx context.Context, recipient, username, secret, fullName string) error {
	if recipient == "" {
		return oops.Code("MAIL_SEND_FAILED").Errorf("recipient address is required")
	}
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").Wrap(err)
	}

	msg := buildCredentialsMessage(m.from, recipient, username, secret, fullName)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{recipient}, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "smtp send").
			With("recipient", recipient).
			Wrap(err)
	}
	return nil
}

// buildCredentialsMessage renders the notification as an RFC 5322 message.
func buildCredentialsMessage(from, to, username, secret, fullName string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Credenciales de acceso\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hola %s,\r\n\r\n", fullName)
	b.WriteString("Su cuenta ha sido creada. Estas son sus credenciales de acceso:\r\n\r\n")
	fmt.Fprintf(&b, "  Usuario: %s\r\n", username)
	fmt.Fprintf(&b, "  Contrasena temporal: %s\r\n\r\n", secret)
	b.WriteString("Cambie la contrasena despues del primer ingreso.\r\n")
	return []byte(b.String())
}
