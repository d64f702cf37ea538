// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"strconv"
	"strings"
	"time"
)

// Placeholders substituted for empty or "--" feed values.
const (
	PlaceholderLocalName      = "暫無中文名稱"
	PlaceholderForeignName    = "No English Name"
	PlaceholderForeignTitle   = "No English Title"
	PlaceholderDescription    = "No Description"
	PlaceholderPresenter      = "No Presenter"
	missingValueSentinel      = "--"
	defaultReferenceLatitude  = 22.4148
	defaultReferenceLongitude = 114.2045
)

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DefaultReference is the origin used for venue distances when none is configured.
var DefaultReference = Point{Latitude: defaultReferenceLatitude, Longitude: defaultReferenceLongitude}

// NormalizeOptions carries the configuration the normalizers depend on.
type NormalizeOptions struct {
	// Location interprets feed dates that carry no UTC offset. Nil means UTC.
	Location *time.Location
	// Reference is the origin for Venue.DistanceKm.
	Reference Point
}

func (o NormalizeOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// textOr trims s and returns placeholder when the result is empty or the sentinel.
func textOr(s, placeholder string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == missingValueSentinel {
		return placeholder
	}
	return s
}

func parseExternalID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
