// Package ingest discovers communication log files and reads them into raw
// records for normalization. File-to-channel mapping follows the filename
// conventions of the source exports: sms*.csv, *call*/*cdr*, *email*/*mail*.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tracewell/comm-forensics-service/internal/domain"
)

// SourceFile is a discovered log file with its recognized channel.
type SourceFile struct {
	Path    string
	Channel domain.Channel
}

// Discover scans dir (non-recursively) for CSV/JSON files whose names match
// a known channel convention. Results are sorted by path so ingestion order
// is stable across runs.
func Discover(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	var sources []SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		channel, ok := channelForFilename(entry.Name())
		if !ok {
			continue
		}
		sources = append(sources, SourceFile{
			Path:    filepath.Join(dir, entry.Name()),
			Channel: channel,
		})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

func channelForFilename(name string) (domain.Channel, bool) {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	if ext != ".csv" && ext != ".json" {
		return "", false
	}

	base := strings.TrimSuffix(lower, ext)
	switch {
	case strings.HasPrefix(base, "sms"):
		return domain.ChannelSMS, true
	case strings.Contains(base, "call") || strings.Contains(base, "cdr"):
		return domain.ChannelCall, true
	case strings.Contains(base, "email") || strings.Contains(base, "mail"):
		return domain.ChannelEmail, true
	}
	return "", false
}
