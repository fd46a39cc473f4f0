package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tracewell/comm-forensics-service/internal/domain"
)

// RawRecord is one row of a source file: a mapping of column names to scalar
// values, tagged with the channel the file was recognized as.
type RawRecord struct {
	Channel domain.Channel
	Index   int
	File    string
	Fields  map[string]string
}

// Reader reads discovered source files into raw records, assigning a global
// ingestion index across files.
type Reader struct {
	log       *zap.Logger
	nextIndex int
}

// NewReader creates a new reader
func NewReader(log *zap.Logger) *Reader {
	return &Reader{log: log}
}

// ReadAll reads every source file in order and returns the combined records.
func (r *Reader) ReadAll(sources []SourceFile) ([]RawRecord, error) {
	var records []RawRecord
	for _, src := range sources {
		recs, err := r.ReadFile(src)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// ReadFile reads one source file. Malformed rows are skipped with a warning;
// an unreadable or structurally broken file is an error.
func (r *Reader) ReadFile(src SourceFile) ([]RawRecord, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Path, err)
	}

	var records []RawRecord
	if strings.EqualFold(filepath.Ext(src.Path), ".json") {
		records, err = r.parseJSON(src, data)
	} else {
		records, err = r.parseCSV(src, data)
	}
	if err != nil {
		return nil, err
	}

	r.log.Info("Loaded source file",
		zap.String("file", src.Path),
		zap.String("channel", string(src.Channel)),
		zap.Int("records", len(records)))

	return records, nil
}

func (r *Reader) parseCSV(src SourceFile, data []byte) ([]RawRecord, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s as CSV: %w", src.Path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var records []RawRecord
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for i, col := range header {
			col = strings.TrimSpace(col)
			if col == "" || i >= len(row) {
				continue
			}
			fields[col] = strings.TrimSpace(row[i])
		}
		if len(fields) == 0 {
			r.log.Warn("Skipping empty row",
				zap.String("file", src.Path),
				zap.Int("index", r.nextIndex))
			continue
		}
		records = append(records, RawRecord{
			Channel: src.Channel,
			Index:   r.nextIndex,
			File:    src.Path,
			Fields:  fields,
		})
		r.nextIndex++
	}
	return records, nil
}

func (r *Reader) parseJSON(src SourceFile, data []byte) ([]RawRecord, error) {
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s as JSON array: %w", src.Path, err)
	}

	var records []RawRecord
	for _, row := range rows {
		fields := make(map[string]string, len(row))
		for key, val := range row {
			if s, ok := stringifyScalar(val); ok {
				fields[key] = s
			}
		}
		if len(fields) == 0 {
			continue
		}
		records = append(records, RawRecord{
			Channel: src.Channel,
			Index:   r.nextIndex,
			File:    src.Path,
			Fields:  fields,
		})
		r.nextIndex++
	}
	return records, nil
}

// sniffDelimiter inspects the header line for the delimiter, preferring
// comma, then semicolon, then tab.
func sniffDelimiter(data []byte) rune {
	firstLine := string(data)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	switch {
	case strings.ContainsRune(firstLine, ','):
		return ','
	case strings.ContainsRune(firstLine, ';'):
		return ';'
	case strings.ContainsRune(firstLine, '\t'):
		return '\t'
	}
	return ','
}

func stringifyScalar(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", false
	}
	return "", false
}
