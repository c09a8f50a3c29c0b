// Package models defines the records exchanged on the sheetpipe wire.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RecordType is the first element of every record line.
type RecordType string

const (
	// RecordWorkbook opens the records of one workbook file.
	RecordWorkbook RecordType = "w"
	// RecordSheet opens the cells of one sheet.
	RecordSheet RecordType = "s"
	// RecordCell carries one cell value.
	RecordCell RecordType = "c"
	// RecordError reports a reader failure.
	RecordError RecordType = "err"

	// RecordOpen acknowledges create_workbook with the output path.
	RecordOpen RecordType = "open"
	// RecordClose acknowledges that the workbook was saved.
	RecordClose RecordType = "close"
	// RecordUnknownMethod reports a command outside the method table.
	RecordUnknownMethod RecordType = "unknown method"
	// RecordCommandError reports a command that failed.
	RecordCommandError RecordType = "error"
)

// Record is one line of output: [type] or [type, payload].
type Record struct {
	Type    RecordType
	Payload any
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Payload == nil {
		return json.Marshal([]any{r.Type})
	}
	return json.Marshal([]any{r.Type, r.Payload})
}

// UnmarshalJSON decodes a record line. The payload is kept as json.RawMessage.
func (r *Record) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) == 0 || len(parts) > 2 {
		return fmt.Errorf("record: expected 1 or 2 elements, got %d", len(parts))
	}
	var typ string
	if err := json.Unmarshal(parts[0], &typ); err != nil {
		return fmt.Errorf("record type: %w", err)
	}
	r.Type, r.Payload = RecordType(typ), nil
	if len(parts) == 2 {
		r.Payload = parts[1]
	}
	return nil
}

// ErrorInfo is the payload of an "err" record.
// Only the context fields relevant to the failing step are set.
type ErrorInfo struct {
	// ID names the failing step, e.g. "open_workbook_failed".
	ID string `json:"id"`
	// File is set for workbook-level failures.
	File string `json:"file,omitempty"`
	// SheetName is set when the sheet was selected by name.
	SheetName string `json:"sheet_name,omitempty"`
	// SheetIndex is set when the sheet was selected by index.
	SheetIndex *int `json:"sheet_index,omitempty"`
	// Row and Column locate a failing cell (0-based).
	Row    *int `json:"row,omitempty"`
	Column *int `json:"column,omitempty"`
	// Exception is the kind of error.
	Exception string `json:"exception"`
	// Details is the error message.
	Details string `json:"details"`
}

// Error ids used in ErrorInfo.ID.
const (
	ErrIDOpenWorkbook = "open_workbook_failed"
	ErrIDLoadSheet    = "load_sheet_failed"
	ErrIDDumpSheet    = "dump_sheet_failed"
	ErrIDFileNotFound = "file_not_found"
)

// Command is one writer input line: [method, args...].
type Command struct {
	Method string
	Args   []json.RawMessage
}

// UnmarshalJSON decodes a command line.
func (c *Command) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return fmt.Errorf("command: expected a JSON array")
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	if len(parts) == 0 {
		return fmt.Errorf("command: empty array")
	}
	if err := json.Unmarshal(parts[0], &c.Method); err != nil {
		return fmt.Errorf("command method: %w", err)
	}
	c.Args = parts[1:]
	return nil
}

// MethodCall is the payload of "unknown method" records.
type MethodCall struct {
	MethodName string            `json:"method_name"`
	Args       []json.RawMessage `json:"args"`
}

// MethodFailure is the payload of "error" records.
type MethodFailure struct {
	MethodName string            `json:"method_name"`
	Args       []json.RawMessage `json:"args"`
	Details    string            `json:"details"`
}
