// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// attendance runs the badge terminal: a 16x2 LCD on a PCF8574 backpack shows
// the time and the result of each scan. Badge readers act as keyboards, so
// identifiers are read one per line from stdin.
//
// Usage:
//
//	attendance [options]
//
// Use -sim to run without hardware; the display is drawn on the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"

	"github.com/GermanBionicSystems/attendance/authclient"
	"github.com/GermanBionicSystems/attendance/clock"
	"github.com/GermanBionicSystems/attendance/kiosk"
	"github.com/GermanBionicSystems/attendance/lcd1602"
	"github.com/GermanBionicSystems/attendance/lcdsim"
	"github.com/GermanBionicSystems/attendance/pcf8574"
)

var (
	busName    = flag.String("i2c", "", "I²C bus to use")
	addr       = flag.Uint("addr", uint(lcd1602.DefaultAddress), "I²C address of the LCD backpack")
	variantA   = flag.Bool("pcf8574a", false, "backpack uses a PCF8574A")
	authURL    = flag.String("auth", authclient.DefaultURL, "authentication endpoint")
	feedback   = flag.Duration("feedback", 3*time.Second, "how long scan results stay on screen")
	bestEffort = flag.Bool("best-effort", false, "keep writing a message after a failed character")
	testMsg    = flag.String("test-message", lcd1602.DefaultOpts.TestMessage, "message written after initialization")
	simulate   = flag.Bool("sim", false, "draw the display on the terminal instead of using I²C")
	snapshot   = flag.String("snapshot", "", "with -sim, save a PNG of the display on exit")
	verbose    = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()

	log := logrus.New()
	// The simulated panel owns stdout.
	if *simulate {
		log.SetOutput(colorable.NewColorableStderr())
	} else {
		log.SetOutput(colorable.NewColorableStdout())
	}
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("attendance stopped")
	}
}

func run(log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var t lcd1602.Transport
	var sim *lcdsim.Sim
	if *simulate {
		sim = lcdsim.New(nil)
		t = sim
	} else {
		variant := pcf8574.PCF8574
		if *variantA {
			variant = pcf8574.PCF8574A
		}
		t = pcf8574.New(*busName, variant)
	}

	opts := lcd1602.DefaultOpts
	opts.Address = uint16(*addr)
	opts.TestMessage = *testMsg
	if *bestEffort {
		opts.OnWriteError = lcd1602.BestEffort
	}

	lcdLog := log.WithField("component", "lcd")
	lcdLog.Info("initializing LCD")
	dev, err := lcd1602.New(t, &opts)
	if err != nil {
		return fmt.Errorf("initializing LCD: %w", err)
	}
	lcdLog.WithField("display", dev.String()).Info("LCD ready")
	defer func() {
		lcdLog.Info("destroying LCD")
		if err := dev.Halt(); err != nil {
			lcdLog.WithError(err).Warn("halt failed")
		}
	}()

	var screen kiosk.Screen = dev
	if sim != nil {
		term := lcdsim.NewTerminal(sim, nil)
		defer func() { _ = term.Halt() }()
		screen = &refreshing{Screen: dev, term: term, log: lcdLog}
		if *snapshot != "" {
			defer func() {
				if err := sim.SavePNG(*snapshot); err != nil {
					lcdLog.WithError(err).Warn("snapshot failed")
				}
			}()
		}
	}

	// Let the test message show for a moment.
	time.Sleep(time.Second)

	display := kiosk.NewDisplay(screen, *feedback)
	if err := display.Clear(); err != nil {
		return err
	}
	auth := authclient.New(*authURL, nil)
	k := kiosk.New(display, auth, log.WithField("auth", auth.String()))

	log.WithField("component", "clock").Info("starting clock")
	return k.Run(ctx, clock.New(time.Second), scan(ctx, os.Stdin, log))
}

// scan sends each non-empty line of r on the returned channel. The channel
// is closed at EOF.
func scan(ctx context.Context, r io.Reader, log *logrus.Logger) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		s := bufio.NewScanner(r)
		for s.Scan() {
			select {
			case ch <- s.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := s.Err(); err != nil {
			log.WithError(err).Error("reading badge scanner")
		}
	}()
	return ch
}

// refreshing redraws the simulated panel after every change.
type refreshing struct {
	kiosk.Screen
	term *lcdsim.Terminal
	log  *logrus.Entry
}

func (r *refreshing) WriteMessage(text string) error {
	err := r.Screen.WriteMessage(text)
	r.refresh()
	return err
}

func (r *refreshing) Clear() error {
	err := r.Screen.Clear()
	r.refresh()
	return err
}

func (r *refreshing) refresh() {
	if err := r.term.Refresh(); err != nil {
		r.log.WithError(err).Debug("terminal refresh failed")
	}
}
