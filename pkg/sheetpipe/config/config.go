// Package config loads the optional sheetpipe defaults file.
//
// The file is TOML:
//
//	log_level = "info"
//	log_format = "console"
//
//	[read]
//	charset = "windows-1252"
//	max_rows = 1000
//	jobs = 4
//
//	[write]
//	module = "excelize"
//	format = "xlsx"
//	default_date_format = "yyyy-mm-dd"
//
// Command line flags override every value.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "SHEETPIPE_CONFIG"

// Config is the content of the defaults file.
type Config struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	Read      Read   `toml:"read"`
	Write     Write  `toml:"write"`
}

// Read holds the defaults of the read command.
type Read struct {
	Charset string `toml:"charset"`
	MaxRows int    `toml:"max_rows"`
	Jobs    int    `toml:"jobs"`
}

// Write holds the defaults of the write command.
type Write struct {
	Module            string `toml:"module"`
	Format            string `toml:"format"`
	DefaultDateFormat string `toml:"default_date_format"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "console",
		Read: Read{
			Charset: "utf-8",
			Jobs:    1,
		},
		Write: Write{
			Module:            "excelize",
			Format:            "xlsx",
			DefaultDateFormat: "yyyy-mm-dd",
		},
	}
}

// Path returns the config file location: flag, then $SHEETPIPE_CONFIG, then
// $XDG_CONFIG_HOME/sheetpipe/config.toml, then
// ~/.config/sheetpipe/config.toml. It returns "" when no location applies.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sheetpipe", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sheetpipe", "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// Keys the file sets but Config does not know are returned in undecoded.
func Load(path string) (cfg Config, undecoded []string, err error) {
	cfg = Default()
	if path == "" {
		return cfg, nil, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil, nil
	}
	if err != nil {
		return Default(), nil, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		undecoded = append(undecoded, key.String())
	}
	if err := cfg.validate(); err != nil {
		return Default(), nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, undecoded, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format %q: want console or json", c.LogFormat)
	}
	if c.Read.MaxRows < 0 {
		return fmt.Errorf("read.max_rows %d is negative", c.Read.MaxRows)
	}
	if c.Read.Jobs < 0 {
		return fmt.Errorf("read.jobs %d is negative", c.Read.Jobs)
	}
	return nil
}
