// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package authclient posts a scanned badge identifier to the attendance
// server and returns its reply.
package authclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// DefaultURL is the authentication endpoint of the attendance server.
const DefaultURL = "http://sampletext.com/authenticate.php"

// ErrStatus is returned when the server answers with a non-2xx status.
var ErrStatus = errors.New("authclient: unexpected status")

// Client sends authentication requests one at a time.
type Client struct {
	url  string
	http *http.Client

	mu sync.Mutex
}

// New returns a Client for url. A nil hc uses a client with a 10s timeout.
func New(url string, hc *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: url, http: hc}
}

// Authenticate posts userID as plain text and returns the raw response body.
// Concurrent calls are serialized.
func (c *Client) Authenticate(ctx context.Context, userID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(userID))
	if err != nil {
		return "", fmt.Errorf("authclient: %w", err)
	}
	req.Close = true
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("authclient: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("authclient: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return string(body), fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return string(body), nil
}

func (c *Client) String() string {
	return c.url
}
