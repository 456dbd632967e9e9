// Package ics builds iCalendar (RFC 5545) invite documents for event
// notifications.
//
// The builder is a pure transform: given the same invite fields and
// generation time it always produces the same bytes. Nothing is
// persisted; artifacts exist only as outbound mail attachments.
package ics

import (
	"fmt"
	"strings"
	"time"
)

// ProdID identifies this application in generated calendars.
const ProdID = "-//NutriLife Campus//Events//EN"

// uidDomain scopes generated UIDs.
const uidDomain = "nutrilife-campus"

// Invite describes a single timed event to encode.
type Invite struct {
	// Seed is the identity seed for the UID; combined with the generation
	// time it makes every artifact globally unique.
	Seed string

	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
}

// Build renders an invite as a VCALENDAR document with one VEVENT.
// Timestamps are rendered in UTC basic format, line terminators are
// CRLF, and free-text fields are escaped per RFC 5545.
func Build(inv Invite, generatedAt time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProdID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s-%d@%s", inv.Seed, generatedAt.UnixMilli(), uidDomain),
		"DTSTAMP:" + Timestamp(generatedAt),
		"DTSTART:" + Timestamp(inv.Start),
		"DTEND:" + Timestamp(inv.End),
		"SUMMARY:" + escapeText(inv.Title),
		"LOCATION:" + escapeText(inv.Location),
		"DESCRIPTION:" + escapeText(inv.Description),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

// Timestamp renders a time in the UTC basic format RFC 5545 requires,
// e.g. 20240301T090000Z.
func Timestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeText escapes free-text property values per RFC 5545 section
// 3.3.11: backslash, semicolon, comma and newlines.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}
