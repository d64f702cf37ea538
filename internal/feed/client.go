// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// Feed names used in errors, logs and metric labels.
const (
	FeedVenues = "venues"
	FeedEvents = "events"
)

// maxErrorBodySize limits how much of a failed response is kept for the error message.
const maxErrorBodySize = 64 * 1024 // 64KB

const userAgent = "culturemap/1.0 (+https://github.com/tomtom215/culturemap)"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Client downloads and decodes the upstream venue and event catalogues.
//
// Each call is one best-effort GET with no internal retries; retry policy
// belongs to the caller. Safe for concurrent use.
type Client struct {
	venuesURL    string
	eventsURL    string
	client       *http.Client
	limiter      *rate.Limiter // nil disables pacing
	maxBodyBytes int64
}

// NewClient creates a feed client from configuration.
func NewClient(cfg *config.FeedConfig) *Client {
	c := &Client{
		venuesURL: cfg.VenuesURL,
		eventsURL: cfg.EventsURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// FetchVenues downloads the venue catalogue.
func (c *Client) FetchVenues(ctx context.Context) (*models.VenueFeed, error) {
	var doc models.VenueFeed
	if err := c.fetchDocument(ctx, FeedVenues, c.venuesURL, &doc); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Int("records", len(doc.Venues)).Msg("Venue feed decoded")
	return &doc, nil
}

// FetchEvents downloads the event catalogue.
func (c *Client) FetchEvents(ctx context.Context) (*models.EventFeed, error) {
	var doc models.EventFeed
	if err := c.fetchDocument(ctx, FeedEvents, c.eventsURL, &doc); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Int("records", len(doc.Events)).Msg("Event feed decoded")
	return &doc, nil
}

// fetchDocument performs the GET and decodes the XML body into into.
func (c *Client) fetchDocument(ctx context.Context, feed, url string, into interface{}) error {
	start := time.Now()
	body, err := c.download(ctx, feed, url)
	if err != nil {
		metrics.RecordFeedFetch(feed, time.Since(start), int64(len(body)), errorType(err))
		return err
	}

	if err := decodeXML(body, into); err != nil {
		metrics.RecordFeedFetch(feed, time.Since(start), int64(len(body)), "parse")
		return &ParseError{Feed: feed, URL: url, Err: err}
	}

	metrics.RecordFeedFetch(feed, time.Since(start), int64(len(body)), "")
	logging.Ctx(ctx).Info().
		Str("feed", feed).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Feed fetched")
	return nil
}

// download returns the raw body. Oversized bodies are a ParseError.
func (c *Client) download(ctx context.Context, feed, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Feed: feed, URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{Feed: feed, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Feed: feed, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Feed:       feed,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(readBodyForError(resp.Body)))),
		}
	}

	limit := c.maxBodyBytes
	if limit <= 0 {
		limit = 64 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &FetchError{Feed: feed, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return body[:limit], &ParseError{Feed: feed, URL: url, Err: fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)}
	}
	return body, nil
}

// readBodyForError reads the response body for error reporting (max 64KB)
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

func decodeXML(body []byte, into interface{}) error {
	body = bytes.TrimPrefix(body, utf8BOM)
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charsetReader
	return dec.Decode(into)
}

// charsetReader accepts UTF-8 declarations only; the upstream publishes nothing else.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8":
		return input, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}

func errorType(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return "parse"
	}
	return "fetch"
}
