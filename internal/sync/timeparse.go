// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts carrying their own zone or offset.
var zonedDateLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// Layouts without an offset, read in the feed's zone.
var localDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006 15:04",
	"Mon, 2 Jan 2006 15:04",
}

// Epoch millisecond values outside this range are rejected, so compact
// dates such as 20251220 are not read as instants in January 1970.
var (
	minEpochDate = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	maxEpochDate = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ParseFeedDate parses an event date from the feed.
//
// RFC 3339 and RFC 1123 values keep their zone. Layouts without one are
// read in loc. A bare integer is taken as milliseconds since the Unix epoch
// when it falls between 1990 and 2200.
func ParseFeedDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == missingValueSentinel {
		return time.Time{}, fmt.Errorf("date is missing")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.UnixMilli(ms)
		if t.Before(minEpochDate) || !t.Before(maxEpochDate) {
			return time.Time{}, fmt.Errorf("epoch value %q out of range", s)
		}
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
