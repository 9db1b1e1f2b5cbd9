// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sensor

// MinMax tracks the extremes of a series of readings.
//
// The zero value is ready to use.
type MinMax struct {
	min   float64
	max   float64
	valid bool
}

// Add includes v in the extremes.
func (m *MinMax) Add(v float64) {
	if !m.valid {
		m.min, m.max, m.valid = v, v, true
		return
	}
	if v < m.min {
		m.min = v
	}
	if v > m.max {
		m.max = v
	}
}

// Min returns the smallest reading since the last reset.
func (m *MinMax) Min() float64 {
	return m.min
}

// Max returns the largest reading since the last reset.
func (m *MinMax) Max() float64 {
	return m.max
}

// Valid returns true once a reading has been added since the last reset.
func (m *MinMax) Valid() bool {
	return m.valid
}

// Reset clears the extremes.
func (m *MinMax) Reset() {
	*m = MinMax{}
}
