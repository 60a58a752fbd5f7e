// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"time"
)

var durationUnits = []struct {
	unit   time.Duration
	suffix string
}{
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
	{time.Millisecond, "ms"},
	{time.Microsecond, "µs"},
}

// FormatDuration prints d in its largest unit with 2 decimal places, e.g. "1.23ms" or "2.00s".
func FormatDuration(d time.Duration) string {
	for _, u := range durationUnits {
		if d >= u.unit {
			return fmt.Sprintf("%.2f%s", float64(d)/float64(u.unit), u.suffix)
		}
	}
	return fmt.Sprintf("%dns", d.Nanoseconds())
}
