// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package clock produces the date and time line shown on the kiosk display.
package clock

import (
	"context"
	"time"
)

// Layout is exactly 16 characters wide: month/day on the left, 12-hour
// time on the right.
const Layout = "01/02      03:04"

// Format returns t formatted with Layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Ticker calls a function with the formatted local time once per period.
type Ticker struct {
	period time.Duration
	now    func() time.Time
}

// New returns a Ticker. A zero period means once per second.
func New(period time.Duration) *Ticker {
	if period <= 0 {
		period = time.Second
	}
	return &Ticker{period: period, now: time.Now}
}

// Run calls fn immediately and then once per period until ctx is done. fn
// runs on the caller's goroutine; a slow fn delays the next tick instead of
// queueing ticks.
func (t *Ticker) Run(ctx context.Context, fn func(string)) error {
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	for {
		fn(Format(t.now().Local()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
		}
	}
}
