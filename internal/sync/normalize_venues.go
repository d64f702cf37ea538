// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/culturemap/internal/models"
	"github.com/tomtom215/culturemap/internal/validation"
)

// NormalizeVenues converts raw feed venues into domain venues.
//
// Records that cannot be used are returned as skips instead of failing the
// batch. On a duplicate venue ID the later record wins but keeps the feed
// position of the first one, since feed order breaks retention ties.
// Returned venues have no internal ID and no event references yet.
func NormalizeVenues(raw []models.RawVenue, opts NormalizeOptions) ([]models.Venue, []ValidationSkip) {
	venues := make([]models.Venue, 0, len(raw))
	var skips []ValidationSkip
	position := make(map[int64]int, len(raw))

	for i := range raw {
		r := &raw[i]

		venueID, ok := parseExternalID(r.ID)
		if !ok {
			skips = append(skips, ValidationSkip{
				Kind:       KindVenue,
				ExternalID: r.ID,
				Reason:     ReasonInvalidID,
			})
			continue
		}

		lat, lon, err := parseCoordinates(r.Latitude, r.Longitude)
		if err != nil {
			skips = append(skips, ValidationSkip{
				Kind:       KindVenue,
				ExternalID: r.ID,
				Reason:     ReasonInvalidCoordinates,
				Detail:     err.Error(),
			})
			continue
		}

		v := models.Venue{
			VenueID:     venueID,
			NameLocal:   textOr(r.NameLocal, PlaceholderLocalName),
			NameForeign: textOr(r.NameForeign, PlaceholderForeignName),
			Latitude:    lat,
			Longitude:   lon,
			DistanceKm:  roundKm(HaversineKm(opts.Reference, Point{Latitude: lat, Longitude: lon})),
			EventRefs:   []string{},
		}

		if pos, dup := position[venueID]; dup {
			skips = append(skips, ValidationSkip{
				Kind:       KindVenue,
				ExternalID: strconv.FormatInt(venueID, 10),
				Reason:     ReasonDuplicateID,
				Detail:     "superseded by a later record",
			})
			venues[pos] = v
			continue
		}
		position[venueID] = len(venues)
		venues = append(venues, v)
	}

	return venues, skips
}

func parseCoordinates(latText, lonText string) (float64, float64, error) {
	lat, err := parseCoordinate("latitude", latText)
	if err != nil {
		return 0, 0, err
	}
	lon, err := parseCoordinate("longitude", lonText)
	if err != nil {
		return 0, 0, err
	}
	if err := validation.ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func parseCoordinate(name, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%s is missing", name)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s %q is not finite", name, text)
	}
	return f, nil
}
