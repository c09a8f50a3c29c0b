package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestFormatUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Format
	}{
		{
			name: "font",
			in:   `{"font":{"name":"Arial","size":11,"bold":true,"underline":true},"color":"red"}`,
			want: Format{Font: &Font{Name: "Arial", Size: 11, Bold: true, Underline: UnderlineSingle}, Color: "red"},
		},
		{
			name: "underline style",
			in:   `{"font":{"underline":"double accounting"}}`,
			want: Format{Font: &Font{Underline: UnderlineDoubleAccounting}},
		},
		{
			name: "number format code",
			in:   `{"numberFormat":"0.00%"}`,
			want: Format{NumberFormat: NumberFormat{Code: "0.00%"}},
		},
		{
			name: "number format id",
			in:   `{"numberFormat":14}`,
			want: Format{NumberFormat: NumberFormat{ID: 14, Builtin: true}},
		},
		{
			name: "fill string",
			in:   `{"fill":"#FFEE00"}`,
			want: Format{Fill: &Fill{Pattern: 1, BackgroundColor: "#FFEE00"}},
		},
		{
			name: "fill object",
			in:   `{"fill":{"pattern":4,"color":"blue","foregroundColor":"white"}}`,
			want: Format{Fill: &Fill{Pattern: 4, BackgroundColor: "blue", ForegroundColor: "white"}},
		},
		{
			name: "borders all sides",
			in:   `{"borders":2}`,
			want: Format{Borders: &Borders{Border: Border{Style: ptr(BorderStyle(2))}}},
		},
		{
			name: "borders per side",
			in:   `{"borders":{"style":"thin","color":"black","bottom":{"style":"double","color":"red"},"left":0}}`,
			want: Format{Borders: &Borders{
				Border: Border{Style: ptr(BorderStyle(1)), Color: "black"},
				Bottom: &Border{Style: ptr(BorderStyle(6)), Color: "red"},
				Left:   &Border{Style: ptr(BorderStyle(0))},
			}},
		},
		{
			name: "alignment and protection",
			in:   `{"alignment":"center middle","textWrap":true,"rotation":-45,"locked":false}`,
			want: Format{Alignment: "center middle", TextWrap: true, Rotation: ptr(-45), Locked: ptr(false)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Format
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Format mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatUnmarshalErrors(t *testing.T) {
	for _, in := range []string{
		`{"font":{"underline":"wavy"}}`,
		`{"fill":{"pattern":19}}`,
		`{"borders":"zigzag"}`,
		`{"borders":{"top":14}}`,
		`{"numberFormat":true}`,
	} {
		var f Format
		if err := json.Unmarshal([]byte(in), &f); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	f := Format{Color: "red", Alignment: "left  middle top"}
	if got := f.FontColor(); got != "red" {
		t.Errorf("FontColor() = %q, want red", got)
	}
	f.Font = &Font{Color: "blue"}
	if got := f.FontColor(); got != "blue" {
		t.Errorf("FontColor() = %q, want blue", got)
	}
	if diff := cmp.Diff([]string{"left", "vcenter", "top"}, f.Alignments()); diff != "" {
		t.Errorf("Alignments() mismatch (-want +got):\n%s", diff)
	}
}

func TestBordersResolve(t *testing.T) {
	b := Borders{
		Border: Border{Style: ptr(BorderStyle(1)), Color: "black"},
		Top:    &Border{Color: "red"},
		Left:   &Border{Style: ptr(BorderStyle(0))},
		Bottom: &Border{Style: ptr(BorderStyle(5))},
	}
	tests := []struct {
		side  Side
		style BorderStyle
		color string
		ok    bool
	}{
		{SideTop, 1, "red", true},
		{SideLeft, 0, "black", false},
		{SideRight, 1, "black", true},
		{SideBottom, 5, "black", true},
	}
	for _, tt := range tests {
		style, color, ok := b.Resolve(tt.side)
		if style != tt.style || color != tt.color || ok != tt.ok {
			t.Errorf("Resolve(%s) = %v, %q, %v, want %v, %q, %v", tt.side, style, color, ok, tt.style, tt.color, tt.ok)
		}
	}
	if got := BorderStyle(13).String(); got != "slantDashDot" {
		t.Errorf("String() = %q, want slantDashDot", got)
	}
}

func TestFormatRef(t *testing.T) {
	tests := []struct {
		in   string
		want FormatRef
	}{
		{`null`, FormatRef{}},
		{`"header"`, FormatRef{Name: "header"}},
		{`{"font":{"italic":true}}`, FormatRef{Inline: &Format{Font: &Font{Italic: true}}}},
	}
	for _, tt := range tests {
		var got FormatRef
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Unmarshal(%s) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
	var ref FormatRef
	if err := json.Unmarshal([]byte(`12`), &ref); err == nil {
		t.Error("Unmarshal(12) succeeded, want error")
	}
}

func TestSheetRefAndSelection(t *testing.T) {
	var refs []SheetRef
	if err := json.Unmarshal([]byte(`[2,"Data"]`), &refs); err != nil {
		t.Fatal(err)
	}
	want := []SheetRef{{Index: 2}, {Name: "Data", ByName: true}}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("SheetRef mismatch (-want +got):\n%s", diff)
	}
	if refs[0].String() != "2" || refs[1].String() != "Data" {
		t.Errorf("String() = %q, %q", refs[0], refs[1])
	}

	var settings SheetSettings
	in := `{"hidden":true,"selection":{"top":1,"left":2,"bottom":3,"right":4}}`
	if err := json.Unmarshal([]byte(in), &settings); err != nil {
		t.Fatal(err)
	}
	wantSettings := SheetSettings{Hidden: true, Selection: &Selection{Top: 1, Left: 2, Bottom: 3, Right: 4}}
	if diff := cmp.Diff(wantSettings, settings); diff != "" {
		t.Errorf("SheetSettings mismatch (-want +got):\n%s", diff)
	}
	var sel Selection
	if err := json.Unmarshal([]byte(`"B2:C3"`), &sel); err != nil || sel.Range != "B2:C3" {
		t.Errorf("Selection = %+v, %v, want B2:C3", sel, err)
	}
}

func TestRecordJSON(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"close", Record{Type: RecordClose}, `["close"]`},
		{"open", Record{Type: RecordOpen, Payload: "/tmp/x.xlsx"}, `["open","/tmp/x.xlsx"]`},
		{
			"date cell",
			Record{Type: RecordCell, Payload: Cell{R: 1, C: 0, A: "A2", V: DateValue{Time: time.Date(2024, 3, 5, 13, 4, 5, 0, time.UTC)}}},
			`["c",{"r":1,"c":0,"a":"A2","v":["date",2024,3,5,13,4,5]}]`,
		},
		{
			"error cell",
			Record{Type: RecordCell, Payload: Cell{A: "A1", V: ErrorValue("#DIV/0!")}},
			`["c",{"r":0,"c":0,"a":"A1","v":["error","#DIV/0!"]}]`,
		},
		{
			"error",
			Record{Type: RecordError, Payload: ErrorInfo{ID: ErrIDLoadSheet, SheetIndex: ptr(0), Exception: "UnknownSheet", Details: "d"}},
			`["err",{"id":"load_sheet_failed","sheet_index":0,"exception":"UnknownSheet","details":"d"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.rec)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}

	var rec Record
	if err := json.Unmarshal([]byte(`["s",{"index":0}]`), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Type != RecordSheet || string(rec.Payload.(json.RawMessage)) != `{"index":0}` {
		t.Errorf("Unmarshal() = %+v", rec)
	}
	if err := json.Unmarshal([]byte(`[]`), &rec); err == nil {
		t.Error("Unmarshal([]) succeeded, want error")
	}
}

func TestCommandUnmarshal(t *testing.T) {
	var cmd Command
	if err := json.Unmarshal([]byte(`["write", 0, 1, "x"]`), &cmd); err != nil {
		t.Fatal(err)
	}
	if cmd.Method != "write" || len(cmd.Args) != 3 || string(cmd.Args[2]) != `"x"` {
		t.Errorf("Command = %+v", cmd)
	}
	for _, in := range []string{`{"method":"x"}`, `[]`, `[1]`} {
		if err := json.Unmarshal([]byte(in), &cmd); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}
