// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package logging

import (
	"sort"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter on top of zerolog.
// Watermill's Info level is noisy for per-message events, so it is mapped
// to zerolog Debug; errors stay errors.
type WatermillAdapter struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

var _ watermill.LoggerAdapter = (*WatermillAdapter)(nil)

// NewWatermillAdapter returns an adapter writing to the global logger
// tagged with component=eventbus.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: WithComponent("eventbus")}
}

// NewWatermillAdapterWithLogger returns an adapter writing to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillAdapterWithLogger(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.emit(a.logger.Error().Err(err), msg, fields)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.emit(a.logger.Debug(), msg, fields)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.emit(a.logger.Debug(), msg, fields)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.emit(a.logger.Trace(), msg, fields)
}

// With returns an adapter that adds fields to every message.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}

func (a *WatermillAdapter) emit(event *zerolog.Event, msg string, fields watermill.LogFields) {
	all := a.fields.Add(fields)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		event = event.Interface(k, all[k])
	}
	event.Msg(msg)
}
