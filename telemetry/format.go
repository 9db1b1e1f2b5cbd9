// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry

import "strconv"

func formatFloat2(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Float returns the sample value as a float64, if it is numeric.
func (s Sample) Float() (float64, bool) {
	switch v := s.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
