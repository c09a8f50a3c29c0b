package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/config"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(config.EnvPath, path)
	return path
}

func TestWriteThenRead(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	stdin := strings.Join([]string{
		`["add_sheet","Data"]`,
		`["write",0,0,[["a","b"],[1,2],[3,4]]]`,
		`["nope"]`,
	}, "\n")
	got, err := execute(t, stdin, "write", "-o", path)
	if err != nil {
		t.Fatalf("write error = %v", err)
	}
	want := `["open","` + path + `"]` + "\n" +
		`["unknown method",{"method_name":"nope","args":[]}]` + "\n" +
		`["close"]` + "\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("write output mismatch (-want +got):\n%s", diff)
	}

	got, err = execute(t, "", "read", "--rows", "2", path)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	wantLines := []string{
		`["s",{"index":0,"name":"Data","rows":3,"columns":2,"visibility":0}]`,
		`["c",{"r":0,"c":0,"a":"A1","v":"a"}]`,
		`["c",{"r":0,"c":1,"a":"B1","v":"b"}]`,
		`["c",{"r":1,"c":0,"a":"A2","v":1}]`,
		`["c",{"r":1,"c":1,"a":"B2","v":2}]`,
	}
	if len(lines) != 1+len(wantLines) {
		t.Fatalf("read output has %d lines, want %d:\n%s", len(lines), 1+len(wantLines), got)
	}
	if !strings.HasPrefix(lines[0], `["w",{"file":"`+path+`","sheets":["Data"]`) {
		t.Errorf("workbook record = %s", lines[0])
	}
	if diff := cmp.Diff(wantLines, lines[1:]); diff != "" {
		t.Errorf("read output mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfigDefaults(t *testing.T) {
	cfgPath := isolateConfig(t)
	if err := os.WriteFile(cfgPath, []byte("[read]\nmax_rows = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if _, err := execute(t, `["write",0,0,[["a"],["b"],["c"]]]`, "write", "-o", path); err != nil {
		t.Fatalf("write error = %v", err)
	}

	got, err := execute(t, "", "read", path)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if n := strings.Count(got, `["c",`); n != 1 {
		t.Errorf("cells = %d, want 1 from config max_rows:\n%s", n, got)
	}

	got, err = execute(t, "", "read", "-r", "0", path)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if n := strings.Count(got, `["c",`); n != 3 {
		t.Errorf("cells = %d, want 3 when the flag overrides config:\n%s", n, got)
	}
}

func TestCommandErrors(t *testing.T) {
	isolateConfig(t)
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"read without files", []string{"read"}, nil},
		{"bad charset", []string{"read", "--charset", "klingon", "x.xls"}, nil},
		{"negative rows", []string{"read", "-r", "-1", "x.xlsx"}, nil},
		{"xls output", []string{"write", "--format", "xls"}, sheetpipe.ErrUnsupportedFormat},
		{"bad module", []string{"write", "-m", "xlwt"}, nil},
		{"bad log level", []string{"--log-level", "loud", "read", "x.xlsx"}, nil},
		{"bad log format", []string{"--log-format", "xml", "read", "x.xlsx"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			if err == nil {
				t.Fatal("Execute() succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "INFO", "json")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("k", "v").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"k":"v"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("log output = %s", out)
	}
}
