// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WhatsAppSender delivers a WhatsApp text message.
type WhatsAppSender interface {
	SendText(ctx context.Context, phone, body string) error
}

// defaultGraphBaseURL is the WhatsApp Business Graph API endpoint.
const defaultGraphBaseURL = "https://graph.facebook.com/v17.0"

// WhatsAppConfig configures the Graph API client.
type WhatsAppConfig struct {
	BaseURL     string // empty means the public Graph API
	PhoneID     string
	AccessToken string
}

// WhatsAppClient posts messages to the WhatsApp Business Graph API.
type WhatsAppClient struct {
	cfg    WhatsAppConfig
	client *http.Client
}

// NewWhatsAppClient builds a client with a bounded request timeout. An
// empty BaseURL targets the public Graph API; tests point it at a local
// server.
func NewWhatsAppClient(cfg WhatsAppConfig) *WhatsAppClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphBaseURL
	}
	return &WhatsAppClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type whatsAppTextPayload struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText posts one text message.
func (w *WhatsAppClient) SendText(ctx context.Context, phone, body string) error {
	payload := whatsAppTextPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               formatPhone(phone),
		Type:             "text",
	}
	payload.Text.Body = body

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(w.cfg.BaseURL, "/"), w.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.cfg.AccessToken)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// formatPhone normalizes a phone number to digits only, as the Graph API
// expects.
func formatPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
