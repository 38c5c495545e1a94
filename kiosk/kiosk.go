// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package kiosk runs the attendance terminal: the clock on the first row of
// the display and badge scan results on the second.
package kiosk

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/GermanBionicSystems/attendance/authclient"
	"github.com/GermanBionicSystems/attendance/clock"
)

// Messages shown on the second row.
const (
	MsgChecking     = "Checking..."
	MsgNoResponse   = "No response"
	MsgServerError  = "Server error"
	MsgNetworkError = "Network error"
)

// Authenticator checks a scanned identifier.
type Authenticator interface {
	Authenticate(ctx context.Context, userID string) (string, error)
}

// Kiosk ties the display, the clock and the authentication server together.
type Kiosk struct {
	display *Display
	auth    Authenticator
	log     *logrus.Entry
}

// New returns a Kiosk. log may be nil.
func New(display *Display, auth Authenticator, log *logrus.Entry) *Kiosk {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Kiosk{display: display, auth: auth, log: log.WithField("component", "kiosk")}
}

// Feedback turns the server's reply into the text for the second row. The
// first line of the body is shown as is.
func Feedback(body string, err error) string {
	switch {
	case errors.Is(err, authclient.ErrStatus):
		return MsgServerError
	case err != nil:
		return MsgNetworkError
	}
	body = strings.TrimSpace(body)
	if i := strings.IndexAny(body, "\r\n"); i >= 0 {
		body = strings.TrimSpace(body[:i])
	}
	if body == "" {
		return MsgNoResponse
	}
	return body
}

// Scan authenticates a scanned identifier and shows the result. Blank
// identifiers are ignored.
func (k *Kiosk) Scan(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	log := k.log.WithField("user", id)
	if err := k.display.ShowFeedback(MsgChecking); err != nil {
		log.WithError(err).Warn("display write failed")
	}
	body, err := k.auth.Authenticate(ctx, id)
	if err != nil {
		log.WithError(err).Error("authentication failed")
	} else {
		log.WithField("response", strings.TrimSpace(body)).Info("user authenticated")
	}
	return k.display.ShowFeedback(Feedback(body, err))
}

func (k *Kiosk) tick(line string) {
	if err := k.display.Tick(line); err != nil {
		k.log.WithError(err).Warn("clock update failed")
	}
}

// Run shows the clock from tk and handles identifiers from scans until ctx
// is done. The clock keeps running after scans is closed.
func (k *Kiosk) Run(ctx context.Context, tk *clock.Ticker, scans <-chan string) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = tk.Run(ctx, k.tick)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id, ok := <-scans:
			if !ok {
				scans = nil
				continue
			}
			if err := k.Scan(ctx, id); err != nil {
				k.log.WithError(err).Warn("display write failed")
			}
		}
	}
}
