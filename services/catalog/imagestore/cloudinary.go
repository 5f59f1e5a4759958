// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package imagestore talks to the image provider (Cloudinary-shaped REST
// API). Upload happens in the excluded admin upload layer; this service
// only needs best-effort deletes when images are replaced or their owner
// is removed.
package imagestore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider removes assets from the image CDN.
type Provider interface {
	Delete(ctx context.Context, publicID string) error
}

// defaultBaseURL is the hosted Cloudinary API endpoint.
const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// Config holds the provider account credentials.
type Config struct {
	BaseURL   string // empty means the hosted provider API
	CloudName string
	APIKey    string
	APISecret string
}

// Client is the REST image provider client.
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// NewClient builds a provider client with a bounded request timeout. An
// empty BaseURL targets the hosted provider; tests point it at a local
// server.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

// Delete destroys an asset by its public ID. Callers treat failures as
// best-effort: log and continue.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	ts := fmt.Sprintf("%d", c.now().Unix())
	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", ts)
	form.Set("api_key", c.cfg.APIKey)
	form.Set("signature", c.sign(publicID, ts))

	endpoint := fmt.Sprintf("%s/%s/image/destroy",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy asset %s: %w", publicID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("image provider status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// sign produces the provider's request signature: SHA-1 over the sorted
// parameter string followed by the API secret.
func (c *Client) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.cfg.APISecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
