// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package notify sends outbound customer notifications (email and
// WhatsApp).
//
// Every send in this package is a best-effort side effect of some primary
// operation: failures are logged by the caller and never surfaced as the
// operation's failure.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"
)

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // e.g. "5thJohnson <no-reply@5thjohnson.com>"
}

// SMTPSender sends mail over plain SMTP with AUTH.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender builds an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message. The context is accepted for interface
// symmetry; net/smtp has no native cancellation.
func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

var contactConfirmationTmpl = template.Must(template.New("contactConfirmation").Parse(
	`Hi {{.Name}},

Thanks for reaching out to 5thJohnson. We received your message about
"{{.Subject}}" and will get back to you within two business days.

— The 5thJohnson team
`))

var contactResponseTmpl = template.Must(template.New("contactResponse").Parse(
	`Hi {{.Name}},

You wrote to us about "{{.Subject}}". Here is our reply:

{{.Response}}

— The 5thJohnson team
`))

var reviewResponseTmpl = template.Must(template.New("reviewResponse").Parse(
	`Hi {{.Name}},

Thanks for reviewing {{.ProductName}}. We replied to your review:

{{.Response}}

— The 5thJohnson team
`))

// RenderContactConfirmation fills the confirmation sent right after a
// contact-form submission.
func RenderContactConfirmation(name, subject string) (string, error) {
	return render(contactConfirmationTmpl, map[string]string{"Name": name, "Subject": subject})
}

// RenderContactResponse fills the admin reply to a contact message.
func RenderContactResponse(name, subject, response string) (string, error) {
	return render(contactResponseTmpl, map[string]string{
		"Name": name, "Subject": subject, "Response": response,
	})
}

// RenderReviewResponse fills the notification sent when an admin replies
// to a review.
func RenderReviewResponse(name, productName, response string) (string, error) {
	return render(reviewResponseTmpl, map[string]string{
		"Name": name, "ProductName": productName, "Response": response,
	})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
