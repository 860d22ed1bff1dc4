// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// ErrNoFix is returned when an RMC sentence is flagged void.
var ErrNoFix = errors.New("gps: receiver has no fix")

// Accumulator merges NMEA sentences into fixes. GGA sentences refresh
// altitude and quality, each valid RMC sentence emits one fix.
type Accumulator struct {
	current Fix
}

// Feed parses one line. It returns the fix and true when the line
// completed a fix. Lines that are not NMEA sentences and sentence types
// other than RMC/GGA are ignored without error.
func (a *Accumulator) Feed(line string) (Fix, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return Fix{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false, fmt.Errorf("gps: parse %q: %w", line, err)
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)

		a.current.FixQuality = m.FixQuality
		a.current.Satellites = m.NumSatellites
		a.current.HDOP = m.HDOP
		if m.FixQuality == nmea.Invalid {
			a.current.Altitude = 0
			a.current.HasAltitude = false
		} else {
			a.current.Altitude = m.Altitude
			a.current.HasAltitude = true
		}
		return Fix{}, false, nil

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)

		a.current.Time = m.Time.String()
		a.current.Date = m.Date.String()
		a.current.Latitude = m.Latitude
		a.current.Longitude = m.Longitude
		a.current.SpeedKnots = m.Speed
		a.current.CourseDeg = m.Course
		a.current.Validity = m.Validity

		if m.Validity != nmea.ValidRMC {
			return Fix{}, false, ErrNoFix
		}
		return a.current, true, nil

	default:
		return Fix{}, false, nil
	}
}

// ReadFixes reads NMEA lines from r until EOF or ctx is done and calls fn
// with every completed fix. Unparseable sentences and void fixes are
// skipped; GPS receivers emit partial lines while they warm up.
func ReadFixes(ctx context.Context, r io.Reader, fn func(Fix)) error {
	reader := bufio.NewReader(r)
	var acc Accumulator

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadString('\n')
		if line != "" {
			if fix, ok, ferr := acc.Feed(line); ferr == nil && ok {
				fn(fix)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("gps: read: %w", err)
		}
	}
}
