package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateLayout = "2006-01-02"

// parseOptionalDate parses a YYYY-MM-DD value; empty means absent.
func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseOptionalID parses a snowflake id; empty means absent.
func parseOptionalID(raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
