// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strconv"

// IntToString converts an int for display. strconv.Itoa, not fmt.Sprintf,
// since these run inside render paths.
func IntToString(i int) string {
	return strconv.Itoa(i)
}

// FloatToString formats a float64 with 2 decimal places, the display form
// for currency amounts.
func FloatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
