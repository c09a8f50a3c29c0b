package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func errMissing(name string) error {
	return fmt.Errorf("missing argument %q", name)
}

// arg decodes args[i] into v. A missing or null argument leaves v unchanged.
func arg(args []json.RawMessage, i int, v any) error {
	if i >= len(args) || isNull(args[i]) {
		return nil
	}
	if err := json.Unmarshal(args[i], v); err != nil {
		return fmt.Errorf("argument %d: %w", i+1, err)
	}
	return nil
}

// indexArg decodes a required non-negative integer argument.
func indexArg(args []json.RawMessage, i int, name string) (int, error) {
	if i >= len(args) || isNull(args[i]) {
		return 0, errMissing(name)
	}
	var n int
	if err := json.Unmarshal(args[i], &n); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: %d is negative", name, n)
	}
	return n, nil
}

// cellArgs decodes the leading cell position of write. The position is
// either an A1 address or a row and a column; rest holds the remaining
// arguments. Row -1 means "next row" and a missing column is 0.
func cellArgs(args []json.RawMessage) (row, col int, rest []json.RawMessage, err error) {
	if len(args) == 0 {
		return 0, 0, nil, errMissing("row")
	}
	if first := bytes.TrimSpace(args[0]); len(first) > 0 && first[0] == '"' {
		var addr string
		if err := json.Unmarshal(first, &addr); err != nil {
			return 0, 0, nil, err
		}
		r, c, err := parseCell(addr)
		if err != nil {
			return 0, 0, nil, err
		}
		return r, c, args[1:], nil
	}
	if err := json.Unmarshal(args[0], &row); err != nil {
		return 0, 0, nil, fmt.Errorf("row: %w", err)
	}
	if row < -1 {
		return 0, 0, nil, fmt.Errorf("row: %d is out of range", row)
	}
	if err := arg(args, 1, &col); err != nil {
		return 0, 0, nil, err
	}
	if col < 0 {
		return 0, 0, nil, fmt.Errorf("col: %d is negative", col)
	}
	if len(args) > 2 {
		rest = args[2:]
	}
	return row, col, rest, nil
}

// parseCell returns the 0-based position of an A1 address.
func parseCell(addr string) (row, col int, err error) {
	c, r, err := excelize.CellNameToCoordinates(strings.ReplaceAll(strings.TrimSpace(addr), "$", ""))
	if err != nil {
		return 0, 0, err
	}
	return r - 1, c - 1, nil
}

func cellName(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row+1, col+1)
	}
	return name
}

// decodeValue decodes command data. Integral numbers become int64, other
// numbers float64, {"$date": epochMillis} a local time.Time, and arrays
// []any. Any other object is rejected.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return convertValue(v)
}

func convertValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool:
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		return x.Float64()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			cv, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		ms, ok := x["$date"]
		if !ok || len(x) != 1 {
			return nil, errors.New(`objects other than {"$date": epochMillis} are not values`)
		}
		n, ok := ms.(json.Number)
		if !ok {
			return nil, errors.New("$date: expected milliseconds since the epoch")
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("$date: %w", err)
		}
		return time.UnixMilli(int64(math.Round(f))), nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}
