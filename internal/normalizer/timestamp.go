package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Day-first forms sit ahead of
// month-first forms, matching the source exports this tool sees.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"02-01-2006 15:04",
	"02/01/2006 15:04",
	"01/02/2006 15:04",
	"20060102 15:04:05",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
}

// ParseTimestamp parses a timestamp string against the known layout list.
// Bare integers of plausible magnitude are taken as Unix seconds.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil && epoch > 1_000_000_000 && epoch < 10_000_000_000 {
		return time.Unix(epoch, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("no layout matched %q", value)
}
