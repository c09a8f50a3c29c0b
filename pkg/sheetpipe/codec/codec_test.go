package codec

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
	"github.com/xuri/excelize/v2"
)

func mustFormat(t *testing.T, s string) models.Format {
	t.Helper()
	var f models.Format
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		t.Fatalf("decode format %s: %v", s, err)
	}
	return f
}

func TestParseModule(t *testing.T) {
	tests := []struct {
		in      string
		want    Module
		wantErr bool
	}{
		{"", ModuleExcelize, false},
		{"excelize", ModuleExcelize, false},
		{" Tealeg ", ModuleTealeg, false},
		{"xlwt", "", true},
	}
	for _, tt := range tests {
		got, err := ParseModule(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseModule(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownModule) {
			t.Errorf("ParseModule(%q) error = %v, want ErrUnknownModule", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseModule(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want cellRange
		str  string
	}{
		{"A1:C3", cellRange{0, 0, 2, 2}, "A1:C3"},
		{"C3:A1", cellRange{0, 0, 2, 2}, "A1:C3"},
		{"$B$2", cellRange{1, 1, 1, 1}, "B2"},
		{"AA10:AB11", cellRange{9, 26, 10, 27}, "AA10:AB11"},
	}
	for _, tt := range tests {
		got, err := parseRange(tt.in)
		if err != nil {
			t.Errorf("parseRange(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRange(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got.String() != tt.str {
			t.Errorf("parseRange(%q).String() = %q, want %q", tt.in, got.String(), tt.str)
		}
	}
	if _, err := parseRange("nope"); err == nil {
		t.Error("parseRange(nope) succeeded, want error")
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"#ff0000", "FF0000", false},
		{"00ff00", "00FF00", false},
		{"Navy", "000080", false},
		{"orange", "FF6600", false},
		{"#fff", "", true},
		{"#gg0000", "", true},
	}
	for _, tt := range tests {
		got, err := normalizeColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("normalizeColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextRotation(t *testing.T) {
	tests := []struct {
		in, want int
		wantErr  bool
	}{
		{0, 0, false},
		{45, 45, false},
		{90, 90, false},
		{-45, 135, false},
		{-90, 180, false},
		{270, 255, false},
		{91, 0, true},
		{-91, 0, true},
	}
	for _, tt := range tests {
		got, err := textRotation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("textRotation(%d) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("textRotation(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		in   string
		want alignment
	}{
		{"left", alignment{horizontal: "left"}},
		{"center_across middle", alignment{horizontal: "centerContinuous", vertical: "center"}},
		{"right vjustify", alignment{horizontal: "right", vertical: "justify"}},
		{"top bottom", alignment{vertical: "bottom"}},
	}
	for _, tt := range tests {
		got, err := parseAlignment(models.Format{Alignment: tt.in}.Alignments())
		if err != nil {
			t.Errorf("parseAlignment(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAlignment(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if _, err := parseAlignment([]string{"sideways"}); err == nil {
		t.Error("parseAlignment(sideways) succeeded, want error")
	}
}

func TestExcelizeStyle(t *testing.T) {
	f := mustFormat(t, `{
		"font": {"name": "Arial", "size": 11, "bold": true, "underline": "double accounting", "superscript": true},
		"color": "red",
		"numberFormat": "#,##0.00",
		"locked": false,
		"alignment": "center middle",
		"textWrap": true,
		"rotation": -30,
		"fill": {"pattern": 1, "color": "#FFFF00"},
		"borders": {"style": "thin", "color": "black", "bottom": {"style": 6}}
	}`)
	got, err := excelizeStyle(f, "")
	if err != nil {
		t.Fatalf("excelizeStyle failed: %v", err)
	}
	code := "#,##0.00"
	want := &excelize.Style{
		Font: &excelize.Font{
			Family: "Arial", Size: 11, Bold: true, Underline: "doubleAccounting",
			VertAlign: "superscript", Color: "FF0000",
		},
		CustomNumFmt: &code,
		Protection:   &excelize.Protection{Locked: false},
		Alignment: &excelize.Alignment{
			Horizontal: "center", Vertical: "center", WrapText: true, TextRotation: 120,
		},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 6},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("excelizeStyle mismatch (-want +got):\n%s", diff)
	}
}

func TestExcelizeStyleDate(t *testing.T) {
	got, err := excelizeStyle(models.Format{}, "dd/mm/yyyy")
	if err != nil {
		t.Fatalf("excelizeStyle failed: %v", err)
	}
	if got.CustomNumFmt == nil || *got.CustomNumFmt != "dd/mm/yyyy" {
		t.Errorf("CustomNumFmt = %v, want dd/mm/yyyy", got.CustomNumFmt)
	}

	got, err = excelizeStyle(mustFormat(t, `{"numberFormat": 22}`), "dd/mm/yyyy")
	if err != nil {
		t.Fatalf("excelizeStyle failed: %v", err)
	}
	if got.NumFmt != 22 || got.CustomNumFmt != nil {
		t.Errorf("NumFmt = %d, CustomNumFmt = %v, want builtin 22", got.NumFmt, got.CustomNumFmt)
	}
}

func TestExcelizeFill(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want excelize.Fill
	}{
		{"solid background", `{"fill": "#FFFF00"}`, excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}}},
		{"solid foreground", `{"fill": {"pattern": 1, "foregroundColor": "#00FF00"}}`, excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00FF00"}}},
		{"solid both", `{"fill": {"pattern": 1, "color": "#FFFF00", "foregroundColor": "#0000FF"}}`, excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0000FF"}}},
		{"pattern background only", `{"fill": {"pattern": 3, "color": "#FF0000"}}`, excelize.Fill{Type: "pattern", Pattern: 3, Color: []string{"FF0000"}}},
		{"pattern both", `{"fill": {"pattern": 3, "color": "#FF0000", "foregroundColor": "#000080"}}`, excelize.Fill{Type: "pattern", Pattern: 3, Color: []string{"000080"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := excelizeStyle(mustFormat(t, tt.in), "")
			if err != nil {
				t.Fatalf("excelizeStyle failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Fill); diff != "" {
				t.Errorf("Fill mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExcelizeStyleErrors(t *testing.T) {
	for _, s := range []string{
		`{"color": "mauve"}`,
		`{"alignment": "sideways"}`,
		`{"rotation": 100}`,
		`{"fill": "#12"}`,
	} {
		if _, err := excelizeStyle(mustFormat(t, s), ""); err == nil {
			t.Errorf("excelizeStyle(%s) succeeded, want error", s)
		}
	}
}

func TestTealegStyle(t *testing.T) {
	f := mustFormat(t, `{
		"font": {"bold": true, "size": 14, "underline": "double", "strikeout": true},
		"numberFormat": 4,
		"hidden": true,
		"alignment": "right top",
		"fill": {"pattern": 2, "backgroundColor": "white", "foregroundColor": "#000080"},
		"borders": {"left": "dashed", "right": {"style": 2, "color": "#00FF00"}}
	}`)
	tf, ignored, err := tealegStyle(f)
	if err != nil {
		t.Fatalf("tealegStyle failed: %v", err)
	}
	st := tf.style
	if !st.Font.Bold || !st.Font.Underline || !st.Font.Strike || st.Font.Size != 14 {
		t.Errorf("Font = %+v, want bold underlined struck size 14", st.Font)
	}
	if tf.numFmt != "#,##0.00" {
		t.Errorf("numFmt = %q, want %q", tf.numFmt, "#,##0.00")
	}
	if st.Alignment.Horizontal != "right" || st.Alignment.Vertical != "top" {
		t.Errorf("Alignment = %+v, want right/top", st.Alignment)
	}
	if st.Fill.PatternType != "mediumGray" || st.Fill.FgColor != "FF000080" || st.Fill.BgColor != "FFFFFFFF" {
		t.Errorf("Fill = %+v", st.Fill)
	}
	if st.Border.Left != "dashed" || st.Border.Right != "medium" || st.Border.RightColor != "FF00FF00" {
		t.Errorf("Border = %+v", st.Border)
	}
	if diff := cmp.Diff([]string{"underline style double", "protection"}, ignored); diff != "" {
		t.Errorf("ignored mismatch (-want +got):\n%s", diff)
	}

	solid, _, err := tealegStyle(mustFormat(t, `{"fill": "yellow"}`))
	if err != nil {
		t.Fatalf("tealegStyle failed: %v", err)
	}
	if solid.style.Fill.PatternType != "solid" || solid.style.Fill.FgColor != "FFFFFF00" {
		t.Errorf("solid Fill = %+v", solid.style.Fill)
	}
	solid, _, err = tealegStyle(mustFormat(t, `{"fill": {"pattern": 1, "color": "yellow", "foregroundColor": "#0000FF"}}`))
	if err != nil {
		t.Fatalf("tealegStyle failed: %v", err)
	}
	if solid.style.Fill.PatternType != "solid" || solid.style.Fill.FgColor != "FF0000FF" {
		t.Errorf("solid Fill with foreground = %+v, want FgColor FF0000FF", solid.style.Fill)
	}
	solid, _, err = tealegStyle(mustFormat(t, `{"fill": {"pattern": 1, "foregroundColor": "#00FF00"}}`))
	if err != nil {
		t.Fatalf("tealegStyle failed: %v", err)
	}
	if solid.style.Fill.FgColor != "FF00FF00" {
		t.Errorf("solid Fill with only foreground = %+v, want FgColor FF00FF00", solid.style.Fill)
	}

	if _, _, err := tealegStyle(mustFormat(t, `{"numberFormat": 99}`)); err == nil {
		t.Error("tealegStyle with unknown builtin id succeeded, want error")
	}
}

func TestExcelizeCodec(t *testing.T) {
	c, err := New(ModuleExcelize, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.AddSheet("x"); !errors.Is(err, ErrNoWorkbook) {
		t.Fatalf("AddSheet before CreateWorkbook error = %v, want ErrNoWorkbook", err)
	}
	if err := c.CreateWorkbook(models.WorkbookOptions{
		DefaultDateFormat: "yyyy-mm-dd",
		Properties:        &models.Properties{Title: "Report", Author: "alice", Company: "ACME"},
	}); err != nil {
		t.Fatalf("CreateWorkbook failed: %v", err)
	}
	if err := c.Write(0, 0, "x", ""); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("Write before AddSheet error = %v, want ErrNoSheet", err)
	}

	name, err := c.AddSheet("Data")
	if err != nil || name != "Data" {
		t.Fatalf("AddSheet = %q, %v", name, err)
	}
	if name, err := c.AddSheet(""); err != nil || name != "Sheet2" {
		t.Fatalf("AddSheet(\"\") = %q, %v, want Sheet2", name, err)
	}
	if _, err := c.AddSheet("data"); err == nil {
		t.Fatal("AddSheet with duplicate name succeeded, want error")
	}
	if err := c.ActivateSheet(models.SheetRef{Name: "Data", ByName: true}); err != nil {
		t.Fatalf("ActivateSheet failed: %v", err)
	}
	if err := c.ActivateSheet(models.SheetRef{Index: 5}); !errors.Is(err, ErrUnknownSheet) {
		t.Fatalf("ActivateSheet(5) error = %v, want ErrUnknownSheet", err)
	}

	if err := c.AddFormat("bold", mustFormat(t, `{"font": {"bold": true}, "numberFormat": "0.00"}`)); err != nil {
		t.Fatalf("AddFormat failed: %v", err)
	}
	if err := c.Write(0, 0, "hello", ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(0, 1, int64(42), "bold"); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(0, 2, "=B1*2", ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(1, 0, time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local), ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(1, 1, true, ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(1, 2, 1.5, "missing"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Write with unknown format error = %v, want ErrUnknownFormat", err)
	}
	if err := c.MergeRange("A4:C5", "merged", "bold"); err != nil {
		t.Fatalf("MergeRange failed: %v", err)
	}
	height, width := 30.0, 25.0
	if err := c.SetRow(0, models.RowSettings{Height: &height}); err != nil {
		t.Fatalf("SetRow failed: %v", err)
	}
	if err := c.SetColumn(1, models.ColumnSettings{Width: &width, Options: &models.LineOptions{Level: 1}}); err != nil {
		t.Fatalf("SetColumn failed: %v", err)
	}
	ref := models.SheetRef{Name: "Sheet2", ByName: true}
	if err := c.SetSheetSettings(&ref, models.SheetSettings{Hidden: true, Selection: &models.Selection{Range: "B2:C3"}}); err != nil {
		t.Fatalf("SetSheetSettings failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open written file: %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{"Data", "Sheet2"}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}
	values := map[string]string{"A1": "hello", "B1": "42.00", "A2": "2024-03-05", "B2": "TRUE", "A4": "merged"}
	for cell, want := range values {
		got, err := f.GetCellValue("Data", cell)
		if err != nil {
			t.Errorf("GetCellValue(%s) failed: %v", cell, err)
			continue
		}
		if got != want {
			t.Errorf("GetCellValue(%s) = %q, want %q", cell, got, want)
		}
	}
	if got, _ := f.GetCellFormula("Data", "C1"); got != "B1*2" {
		t.Errorf("GetCellFormula(C1) = %q, want %q", got, "B1*2")
	}
	merges, err := f.GetMergeCells("Data")
	if err != nil || len(merges) != 1 {
		t.Fatalf("GetMergeCells = %v, %v", merges, err)
	}
	if merges[0].GetStartAxis() != "A4" || merges[0].GetEndAxis() != "C5" {
		t.Errorf("merge = %s:%s, want A4:C5", merges[0].GetStartAxis(), merges[0].GetEndAxis())
	}
	if got, _ := f.GetRowHeight("Data", 1); got != 30 {
		t.Errorf("GetRowHeight(1) = %v, want 30", got)
	}
	if got, _ := f.GetColWidth("Data", "B"); got != 25 {
		t.Errorf("GetColWidth(B) = %v, want 25", got)
	}
	styleID, err := f.GetCellStyle("Data", "B1")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Errorf("B1 font = %+v, want bold", style.Font)
	}
	if visible, _ := f.GetSheetVisible("Sheet2"); visible {
		t.Error("Sheet2 is visible, want hidden")
	}
	props, err := f.GetDocProps()
	if err != nil {
		t.Fatal(err)
	}
	if props.Title != "Report" || props.Creator != "alice" {
		t.Errorf("doc props = %+v", props)
	}
}

func TestTealegCodec(t *testing.T) {
	c, err := New(ModuleTealeg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c.CreateWorkbook(models.WorkbookOptions{}); err != nil {
		t.Fatalf("CreateWorkbook failed: %v", err)
	}
	if _, err := c.AddSheet("First"); err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	if err := c.AddFormat("money", mustFormat(t, `{"numberFormat": "0.00", "font": {"italic": true}}`)); err != nil {
		t.Fatalf("AddFormat failed: %v", err)
	}
	if err := c.Write(0, 0, "name", ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(0, 1, int64(7), ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(1, 1, 2.5, "money"); err != nil {
		t.Fatal(err)
	}
	if err := c.MergeRange("A3:B3", "wide", ""); err != nil {
		t.Fatalf("MergeRange failed: %v", err)
	}
	err = c.SetSheetSettings(nil, models.SheetSettings{RightToLeft: true})
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("SetSheetSettings(rightToLeft) error = %v, want ErrNotSupported", err)
	}
	width := 20.0
	if err := c.SetColumn(0, models.ColumnSettings{Width: &width}); err != nil {
		t.Errorf("SetColumn(width) failed: %v", err)
	}
	err = c.SetColumn(0, models.ColumnSettings{Format: models.FormatRef{Name: "money"}})
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("SetColumn(format) error = %v, want ErrNotSupported", err)
	}

	path := filepath.Join(t.TempDir(), "tealeg.xlsx")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open written file: %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{"First"}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}
	values := map[string]string{"A1": "name", "B1": "7", "B2": "2.50", "A3": "wide"}
	for cell, want := range values {
		got, err := f.GetCellValue("First", cell)
		if err != nil {
			t.Errorf("GetCellValue(%s) failed: %v", cell, err)
			continue
		}
		if got != want {
			t.Errorf("GetCellValue(%s) = %q, want %q", cell, got, want)
		}
	}
	merges, err := f.GetMergeCells("First")
	if err != nil || len(merges) != 1 {
		t.Fatalf("GetMergeCells = %v, %v", merges, err)
	}
}
