// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package attendance is a container for the badge terminal packages.
//
// lcd1602 drives the character LCD, pcf8574 carries its bytes over I²C and
// lcdsim stands in for both when no hardware is attached. kiosk, clock and
// authclient make up the terminal itself; cmd/attendance wires them.
package attendance
