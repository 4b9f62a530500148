package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var CONFIG_FILE = "cepheid.json"

// Config is the optional project file that sits next to the source.
// Missing keys default to empty strings.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// loadConfig reads dir/cepheid.json. A missing file yields a zero Config.
func loadConfig(dir string) (Config, error) {
	var cfg Config
	path := filepath.Join(dir, CONFIG_FILE)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Name != "" {
		if err := ValidateName(cfg.Name); err != nil {
			return cfg, fmt.Errorf("%s: invalid name %q: %w", path, cfg.Name, err)
		}
	}
	return cfg, nil
}

// Windows reserved names (case-insensitive)
var windowsReservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// ValidateName checks a project name. The name becomes a cache directory
// and the default executable name, so it must be a single path segment.
// Rules:
//   - ASCII lowercase letters, digits, underscore, dot and hyphen only
//   - No double underscores (__)
//   - No trailing underscore
//   - Not a Windows reserved name, with or without extension
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name %q is not a file name", name)
	}

	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			return fmt.Errorf("uppercase letter %q at position %d: names must be lowercase", r, i)
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			// valid
		case r == '_':
			if i > 0 && name[i-1] == '_' {
				return fmt.Errorf("double underscore at position %d", i)
			}
		case r == '/' || r == '\\':
			return fmt.Errorf("path separator at position %d: names are a single segment", i)
		default:
			return fmt.Errorf("invalid character %q at position %d in name", r, i)
		}
	}

	if strings.HasSuffix(name, "_") {
		return fmt.Errorf("name %q ends with underscore", name)
	}
	stem, _, _ := strings.Cut(name, ".")
	if windowsReservedNames[stem] {
		return fmt.Errorf("name %q is a Windows reserved name", name)
	}
	return nil
}
