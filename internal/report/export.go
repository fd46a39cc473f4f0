package report

import (
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tracewell/comm-forensics-service/internal/domain"
)

//go:embed summary-v1.schema.json
var summarySchemaJSON string

var (
	summarySchemaOnce sync.Once
	summarySchema     *jsonschema.Schema
	summarySchemaErr  error
)

func compiledSummarySchema() (*jsonschema.Schema, error) {
	summarySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("summary-v1.schema.json", strings.NewReader(summarySchemaJSON)); err != nil {
			summarySchemaErr = err
			return
		}
		summarySchema, summarySchemaErr = compiler.Compile("summary-v1.schema.json")
	})
	return summarySchema, summarySchemaErr
}

// MarshalSummary serializes the summary and checks it against the embedded
// summary-v1 schema. A violation means the assembler produced an invalid
// artifact and fails the export.
func MarshalSummary(summary *Summary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	schema, err := compiledSummarySchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary schema: %w", err)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("failed to decode summary for validation: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("summary failed schema validation: %w", err)
	}

	return data, nil
}

// WriteSummaryJSON writes the schema-validated summary to path.
func WriteSummaryJSON(path string, summary *Summary) error {
	data, err := MarshalSummary(summary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}

const timestampLayout = "2006-01-02 15:04:05"

// WriteTimelineCSV writes the ordered timeline as flat rows.
func WriteTimelineCSV(path string, events []domain.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"timestamp", "id", "channel", "direction", "origin", "destination", "duration_seconds", "tags", "content"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write timeline header: %w", err)
	}

	for i := range events {
		e := &events[i]
		tags := make([]string, len(e.Tags))
		for j, tag := range e.Tags {
			tags[j] = string(tag)
		}
		row := []string{
			e.Timestamp.Format(timestampLayout),
			e.ID,
			string(e.Channel),
			string(e.Direction),
			e.Origin,
			e.Destination,
			strconv.Itoa(e.DurationSeconds),
			strings.Join(tags, ";"),
			e.ContentSummary,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write timeline row %d: %w", i, err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteContactsCSV writes the per-contact aggregates.
func WriteContactsCSV(path string, contacts []domain.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"contact", "total_events", "sms_count", "call_count", "email_count", "total_call_seconds", "tags_seen", "first_seen", "last_seen"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write contacts header: %w", err)
	}

	for i := range contacts {
		c := &contacts[i]
		tags := make([]string, len(c.TagsSeen))
		for j, tag := range c.TagsSeen {
			tags[j] = string(tag)
		}
		row := []string{
			c.Identity,
			strconv.Itoa(c.TotalEvents),
			strconv.Itoa(c.EventsByChannel[domain.ChannelSMS]),
			strconv.Itoa(c.EventsByChannel[domain.ChannelCall]),
			strconv.Itoa(c.EventsByChannel[domain.ChannelEmail]),
			strconv.Itoa(c.TotalCallSeconds),
			strings.Join(tags, ";"),
			c.FirstSeen.Format(timestampLayout),
			c.LastSeen.Format(timestampLayout),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write contact row %d: %w", i, err)
		}
	}

	w.Flush()
	return w.Error()
}
