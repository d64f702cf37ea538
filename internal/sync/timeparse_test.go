// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"testing"
	"time"
)

func TestParseFeedDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2026-06-01T19:30:00+08:00", time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), false},
		{"2026-06-01T11:30:00Z", time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), false},
		{"2026-06-01T19:30:00", time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), false},
		{"2026-06-01 19:30:00", time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), false},
		{"2026-06-01T19:30", time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), false},
		{"2026-06-01", time.Date(2026, 5, 31, 16, 0, 0, 0, time.UTC), false},
		{"01/06/2026", time.Date(2026, 5, 31, 16, 0, 0, 0, time.UTC), false},
		{"2026/06/01", time.Date(2026, 5, 31, 16, 0, 0, 0, time.UTC), false},
		{"1780313400000", time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC), false},
		{"Sat, 20 Dec 2025 19:30:00 GMT", time.Date(2025, 12, 20, 19, 30, 0, 0, time.UTC), false},
		{"Sat, 20 Dec 2025 19:30:00 +0800", time.Date(2025, 12, 20, 11, 30, 0, 0, time.UTC), false},
		{"Sat, 6 Dec 2025 19:30:00 GMT", time.Date(2025, 12, 6, 19, 30, 0, 0, time.UTC), false},
		{"Sat, 20 Dec 2025 19:30", time.Date(2025, 12, 20, 11, 30, 0, 0, time.UTC), false},
		{"December 20, 2025 19:30", time.Date(2025, 12, 20, 11, 30, 0, 0, time.UTC), false},
		{"December 20, 2025", time.Date(2025, 12, 19, 16, 0, 0, 0, time.UTC), false},
		{"Dec 20, 2025 19:30", time.Date(2025, 12, 20, 11, 30, 0, 0, time.UTC), false},
		{"2025-12-20 19:30", time.Date(2025, 12, 20, 11, 30, 0, 0, time.UTC), false},
		{"20251220", time.Time{}, true},
		{"0", time.Time{}, true},
		{"-1780313400000", time.Time{}, true},
		{"99999999999999", time.Time{}, true},
		{"  2026-06-01  ", time.Date(2026, 5, 31, 16, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
		{"--", time.Time{}, true},
		{"June 1st", time.Time{}, true},
		{"2026-13-01", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFeedDate(tt.input, hongKong)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFeedDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseFeedDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFeedDate_NilLocationIsUTC(t *testing.T) {
	got, err := ParseFeedDate("2026-06-01T19:30:00", nil)
	if err != nil {
		t.Fatalf("ParseFeedDate() error = %v", err)
	}
	if want := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseFeedDate() = %v, want %v", got, want)
	}
}

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Point
		lo, hi float64
	}{
		{"same point", DefaultReference, DefaultReference, 0, 0},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111.1, 111.3},
		{"antipodes", Point{0, 0}, Point{0, 180}, 20015, 20016},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.a, tt.b)
			if got < tt.lo || got > tt.hi {
				t.Errorf("HaversineKm() = %v, want in [%v, %v]", got, tt.lo, tt.hi)
			}
		})
	}
}
