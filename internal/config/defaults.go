// ABOUTME: Centralized configuration defaults for feedreader
// ABOUTME: Contains the timeouts, limits, and display constants shared by commands

package config

import "time"

// HTTP settings
const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultUserAgent   = "feedreader/1.0 (RSS reader)"
)

// Reader settings
const (
	DefaultTeaserLength = 200
	DefaultCheckTimeout = 30 * time.Second
)

// Display settings
const (
	SeparatorWidth  = 60
	DateFormatShort = "02 Jan 06 15:04 MST"
	DateFormatLong  = "Mon, 02 Jan 2006 15:04 MST"
)

// Logging settings
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
