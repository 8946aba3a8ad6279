// ABOUTME: Tests for configuration defaults
// ABOUTME: Verifies constants are properly defined

package config

import (
	"testing"
	"time"
)

func TestDefaultHTTPTimeout(t *testing.T) {
	if DefaultHTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %v", DefaultHTTPTimeout)
	}
}

func TestReaderConstants(t *testing.T) {
	if DefaultTeaserLength <= 0 {
		t.Error("DefaultTeaserLength should be positive")
	}
	if DefaultCheckTimeout <= 0 {
		t.Error("DefaultCheckTimeout should be positive")
	}
	if DefaultUserAgent == "" {
		t.Error("DefaultUserAgent should be set")
	}
}
