// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package nmea decodes the NMEA 0183 sentences emitted by GPS receivers.
//
// Only the GGA fix data sentence is decoded. Other sentences are returned
// with their fields split but otherwise uninterpreted.
package nmea

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrChecksum indicates the sentence checksum did not match its content.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrMalformed indicates the sentence could not be parsed.
	ErrMalformed = errors.New("malformed sentence")
)

// Sentence is a single NMEA sentence, split into fields.
type Sentence struct {
	// Type is the talker and sentence type, e.g. "GPGGA".
	Type string
	// Fields are the data fields following the type.
	Fields []string
}

// Parse splits a sentence into its fields, verifying the checksum if one is
// present.
func Parse(line string) (Sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Sentence{}, fmt.Errorf("%w: missing '$'", ErrMalformed)
	}
	body := line[1:]
	if data, sum, found := strings.Cut(body, "*"); found {
		want, err := strconv.ParseUint(sum, 16, 8)
		if err != nil {
			return Sentence{}, fmt.Errorf("%w: bad checksum '%s'", ErrMalformed, sum)
		}
		if Checksum(data) != byte(want) {
			return Sentence{}, ErrChecksum
		}
		body = data
	}
	ff := strings.Split(body, ",")
	return Sentence{Type: ff[0], Fields: ff[1:]}, nil
}

// Checksum returns the XOR of the bytes between the '$' and '*'.
func Checksum(data string) byte {
	var sum byte
	for i := 0; i < len(data); i++ {
		sum ^= data[i]
	}
	return sum
}

// Fix is the position fix decoded from a GGA sentence.
type Fix struct {
	// Time is the UTC time of the fix, as hhmmss.ss.
	Time string
	// Latitude in decimal degrees, negative south of the equator.
	Latitude float64
	// Longitude in decimal degrees, negative west of Greenwich.
	Longitude float64
	// Quality is the fix quality indicator; 0 is no fix.
	Quality int
	// Satellites is the number of satellites in use.
	Satellites int
	// HDOP is the horizontal dilution of precision.
	HDOP float64
	// Altitude above mean sea level, in metres.
	Altitude float64
}

// Position returns the fix position formatted as "lat, lon".
func (f Fix) Position() string {
	return fmt.Sprintf("%f, %f", f.Latitude, f.Longitude)
}

// IsGGA returns true if the sentence is a GGA sentence from any talker.
func (s Sentence) IsGGA() bool {
	return len(s.Type) == 5 && s.Type[2:] == "GGA"
}

// GGA decodes a GGA sentence.
func (s Sentence) GGA() (Fix, error) {
	if !s.IsGGA() {
		return Fix{}, fmt.Errorf("%w: %s is not GGA", ErrMalformed, s.Type)
	}
	if len(s.Fields) < 9 {
		return Fix{}, fmt.Errorf("%w: GGA has %d fields", ErrMalformed, len(s.Fields))
	}
	f := Fix{Time: s.Fields[0]}
	var err error
	if f.Latitude, err = Coordinate(s.Fields[1], s.Fields[2]); err != nil {
		return Fix{}, err
	}
	if f.Longitude, err = Coordinate(s.Fields[3], s.Fields[4]); err != nil {
		return Fix{}, err
	}
	f.Quality, _ = strconv.Atoi(s.Fields[5])
	f.Satellites, _ = strconv.Atoi(s.Fields[6])
	f.HDOP, _ = strconv.ParseFloat(s.Fields[7], 64)
	f.Altitude, _ = strconv.ParseFloat(s.Fields[8], 64)
	return f, nil
}

// Coordinate converts an NMEA [d]ddmm.mmmm coordinate and its hemisphere to
// signed decimal degrees.
//
// An empty coordinate, as sent before a fix, converts to 0.
func Coordinate(raw, hemisphere string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad coordinate '%s'", ErrMalformed, raw)
	}
	deg := float64(int(v / 100))
	min := v - deg*100
	d := deg + min/60
	switch hemisphere {
	case "S", "W":
		d = -d
	case "N", "E", "":
	default:
		return 0, fmt.Errorf("%w: bad hemisphere '%s'", ErrMalformed, hemisphere)
	}
	return d, nil
}

// Scan reads sentences from r, calling fn for each that parses.
//
// Lines that fail to parse are skipped. Returns when r returns an error, or
// ctx is done, or fn returns false.
func Scan(ctx context.Context, r io.Reader, fn func(Sentence) bool) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := s.Text()
		if line == "" {
			continue
		}
		st, err := Parse(line)
		if err != nil {
			continue
		}
		if !fn(st) {
			return nil
		}
	}
	return s.Err()
}
