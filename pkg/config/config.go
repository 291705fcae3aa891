// Package config loads the optional project-level btc.toml file: the
// formatter's line width and indent, additional import search paths,
// and the name a host binds its context type under. Absence of the
// file is not an error — Default() describes compiled-in behavior.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the decoded shape of btc.toml.
type Config struct {
	// ImportPaths lists additional directories for `import` forms (§6).
	// It is decoded only: the CLI builds its engine without a file
	// loader, so nothing reads it.
	ImportPaths []string `toml:"import_paths"`

	// ContextTypeBinding names a host context type binding (§4.5, §6).
	// It is decoded only: the CLI binds no host metadata provider, so
	// nothing reads it.
	ContextTypeBinding string `toml:"context_type_binding"`

	Format FormatConfig `toml:"format"`
}

// FormatConfig mirrors the C14 formatter's two knobs.
type FormatConfig struct {
	Width  int `toml:"width"`
	Indent int `toml:"indent"`
}

// Default returns the configuration the engine runs with when no
// btc.toml is present or a field is left unset.
func Default() Config {
	return Config{
		ContextTypeBinding: "Context",
		Format: FormatConfig{
			Width:  80,
			Indent: 2,
		},
	}
}

// FileName is the conventional name the CLI looks for in the working
// directory.
const FileName = "btc.toml"

// Load reads dir/btc.toml and merges it over Default(). A missing
// file is not an error; any other read or decode failure is.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
