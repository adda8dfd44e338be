// Package tabular parses CSV and JSON work item exports into raw rows.
//
// The parsers are deliberately schema-free: every cell is a string and
// column order is preserved, because downstream mapping and normalization
// own all interpretation. Input is a bounded in-memory batch, not a stream.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hopperhq/hopper/internal/types"
)

// Format identifies a supported input format.
type Format string

// Supported input formats.
const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// DetectFormat guesses the format from a file extension. Unknown
// extensions default to CSV, the most common export shape.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

// ReadFile parses a file into raw rows using the format implied by its
// extension.
func ReadFile(path string) ([]types.RawRow, error) {
	f, err := os.Open(path) // #nosec G304 - user-provided file path is intentional
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, DetectFormat(path))
}

// Read parses rows from r in the given format.
func Read(r io.Reader, format Format) ([]types.RawRow, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatJSONL:
		return ReadJSONL(r)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// ReadCSV parses a CSV document whose first record is the header row.
// Short records are padded with empty cells; extra cells beyond the
// header are dropped.
func ReadCSV(r io.Reader) ([]types.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged exports
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []types.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", len(rows)+2, err)
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			} else {
				fields[col] = ""
			}
		}
		rows = append(rows, types.RawRow{Columns: header, Fields: fields})
	}
	return rows, nil
}

// ReadJSON parses a JSON array of flat objects. Object key order is
// preserved as the row's column order; non-string values are rendered
// with their JSON representation.
func ReadJSON(r io.Reader) ([]types.RawRow, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON input: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("JSON input must be an array of objects")
	}

	var rows []types.RawRow
	for dec.More() {
		row, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("reading JSON row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading JSON input: %w", err)
	}
	return rows, nil
}

// ReadJSONL parses JSON Lines input: one flat object per line, blank
// lines skipped.
func ReadJSONL(r io.Reader) ([]types.RawRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var rows []types.RawRow
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, fmt.Errorf("line %d: not a JSON object", lineNum)
		}
		row, err := decodeFields(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSONL input: %w", err)
	}
	return rows, nil
}

// decodeObject consumes one object from the decoder, including its
// opening brace.
func decodeObject(dec *json.Decoder) (types.RawRow, error) {
	tok, err := dec.Token()
	if err != nil {
		return types.RawRow{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return types.RawRow{}, fmt.Errorf("expected an object")
	}
	return decodeFields(dec)
}

// decodeFields walks an object's key/value tokens so key order survives
// (a plain map[string]any unmarshal would lose it).
func decodeFields(dec *json.Decoder) (types.RawRow, error) {
	row := types.RawRow{Fields: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return types.RawRow{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return types.RawRow{}, fmt.Errorf("unexpected key token %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return types.RawRow{}, err
		}

		if _, exists := row.Fields[key]; !exists {
			row.Columns = append(row.Columns, key)
		}
		row.Fields[key] = cellString(value)
	}
	// Closing brace
	if _, err := dec.Token(); err != nil {
		return types.RawRow{}, err
	}
	return row, nil
}

// cellString renders a JSON value as a cell. Strings lose their quotes,
// null becomes empty, and everything else keeps its JSON text (numbers,
// booleans, nested structures a mapping can still ignore).
func cellString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}
