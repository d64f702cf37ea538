// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package models

import (
	"encoding/xml"
)

// VenueFeed is the decoded venue catalogue document.
//
//	<venues>
//	  <venue id="50110014">
//	    <venuec>香港文化中心 (音樂廳)</venuec>
//	    <venuee>Hong Kong Cultural Centre (Concert Hall)</venuee>
//	    <latitude>22.29386</latitude>
//	    <longitude>114.17053</longitude>
//	  </venue>
//	</venues>
type VenueFeed struct {
	XMLName xml.Name   `xml:"venues"`
	Venues  []RawVenue `xml:"venue"`
}

// RawVenue is one venue record exactly as published. All values are kept
// as strings; normalization decides what is valid.
type RawVenue struct {
	ID          string `xml:"id,attr"`
	NameLocal   string `xml:"venuec"`
	NameForeign string `xml:"venuee"`
	Latitude    string `xml:"latitude"`
	Longitude   string `xml:"longitude"`
}

// EventFeed is the decoded event catalogue document.
//
//	<events>
//	  <event id="165123">
//	    <titlec>...</titlec>
//	    <titlee>...</titlee>
//	    <venueid>50110014</venueid>
//	    <predateE>2025-12-20T19:30:00</predateE>
//	    <desce>...</desce>
//	    <presenterorge>...</presenterorge>
//	  </event>
//	</events>
type EventFeed struct {
	XMLName xml.Name   `xml:"events"`
	Events  []RawEvent `xml:"event"`
}

// RawEvent is one event record exactly as published.
type RawEvent struct {
	ID           string `xml:"id,attr"`
	TitleLocal   string `xml:"titlec"`
	TitleForeign string `xml:"titlee"`
	VenueID      string `xml:"venueid"`
	Date         string `xml:"predateE"`
	Description  string `xml:"desce"`
	Presenter    string `xml:"presenterorge"`
}
