package bf

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/wasm-gen/errors"
)

// MaxPages is the largest memory size a 32-bit module can declare.
const MaxPages = 65536

// Config controls the shape of the module Compile produces.
type Config struct {
	Imports Imports      `toml:"imports"`
	Memory  MemoryConfig `toml:"memory"`
	Export  ExportConfig `toml:"export"`
}

// Imports names the host functions the program calls.
type Imports struct {
	Module string `toml:"module"`
	Write  string `toml:"write"` // (i32) -> ()
	Read   string `toml:"read"`  // () -> i32
}

// MemoryConfig sizes the tape. Pages are 64 KiB each.
type MemoryConfig struct {
	Export   string `toml:"export"` // empty means the memory stays private
	Pages    uint32 `toml:"pages"`
	MaxPages uint32 `toml:"max-pages"` // 0 means no declared maximum
}

// ExportConfig names the exported entry point.
type ExportConfig struct {
	Run string `toml:"run"`
}

// DefaultConfig returns the io.write/io.read, one page, "run" layout.
func DefaultConfig() Config {
	return Config{
		Imports: Imports{Module: "io", Write: "write", Read: "read"},
		Memory:  MemoryConfig{Pages: 1},
		Export:  ExportConfig{Run: "run"},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Keys absent from the
// file keep their default.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("cannot read %s", path))
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.WithPath(err, path)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse error")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.InvalidInput(errors.PhaseConfig,
			"unknown keys: "+strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks names and memory limits.
func (c Config) Validate() error {
	names := []struct {
		key, value string
	}{
		{"imports.module", c.Imports.Module},
		{"imports.write", c.Imports.Write},
		{"imports.read", c.Imports.Read},
		{"export.run", c.Export.Run},
	}
	for _, n := range names {
		if n.value == "" {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(n.key).
				Detail("must not be empty").
				Build()
		}
	}

	if c.Memory.Pages == 0 || c.Memory.Pages > MaxPages {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("memory.pages").
			Value(c.Memory.Pages).
			Detail("must be between 1 and %d", MaxPages).
			Build()
	}
	if c.Memory.MaxPages != 0 && (c.Memory.MaxPages < c.Memory.Pages || c.Memory.MaxPages > MaxPages) {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("memory.max-pages").
			Value(c.Memory.MaxPages).
			Detail("must be between %d and %d", c.Memory.Pages, MaxPages).
			Build()
	}
	if c.Memory.Export != "" && c.Memory.Export == c.Export.Run {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("memory.export").
			Detail("duplicate export name %q", c.Export.Run).
			Build()
	}
	return nil
}
