// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata so repeated validation of the same type is cheap.
//
// The feed normalizers use ValidateCoordinates to reject venues whose
// latitude or longitude fall outside WGS84 bounds, and the config package
// validates enumerated settings through struct tags:
//
//	type StoreConfig struct {
//	    Backend string `validate:"oneof=badger memory duckdb"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg.Store); verr != nil {
//	    return fmt.Errorf("store: %w", verr)
//	}
package validation
