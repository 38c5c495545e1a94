// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd1602

import "fmt"

// State is the progress of the initialization sequence.
type State int

const (
	// Uninitialized is the state before New starts the bus, and after Halt.
	Uninitialized State = iota
	// BusReady means the transport started.
	BusReady
	// FourBitMode means the controller was switched to the 4-bit interface
	// and the line count and font were set.
	FourBitMode
	// Configured means display control, clear and entry mode were sent and
	// the display was turned on.
	Configured
	// Ready means the backlight is on and the test message was written.
	Ready
	// Failed means the transport could not be started.
	Failed
)

var stateNames = [...]string{
	Uninitialized: "Uninitialized",
	BusReady:      "BusReady",
	FourBitMode:   "FourBitMode",
	Configured:    "Configured",
	Ready:         "Ready",
	Failed:        "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}
