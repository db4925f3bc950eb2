package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/unpack/internal/model"
)

const (
	// EnvMaxSize overrides the item size ceiling, in bytes.
	EnvMaxSize = "UNPACK_MAX_SIZE"

	// EnvMaxCount overrides the processed-item ceiling.
	EnvMaxCount = "UNPACK_MAX_COUNT"

	// DefaultHandlersFile is the mapping file consulted when the
	// settings file does not name one. Resolved relative to the
	// working directory.
	DefaultHandlersFile = ".unpack.handlers"
)

// settingsFileNames are probed in order in the working directory when
// no explicit --config path is given. YAML is preferred.
var settingsFileNames = []string{"unpack.yaml", "unpack.jsonc"}

// Settings is the fully resolved configuration for one run.
type Settings struct {
	// Limits are the resource ceilings applied per item / per run.
	Limits model.Limits

	// Decoders maps operation names to replacement decoder programs
	// (e.g. gzip -> pigz). Operations not listed use their defaults.
	Decoders map[string]string

	// HandlersFile is the path of the handler mapping file to load.
	HandlersFile string
}

// fileSettings mirrors the settings file on disk. All fields are
// optional; zero values mean "keep the previous layer's value".
// The same struct serves both YAML and JSONC parsing.
type fileSettings struct {
	// MaxSize is the item size ceiling in bytes.
	MaxSize int64 `yaml:"maxSize" json:"maxSize"`

	// MaxCount is the processed-item ceiling.
	MaxCount int `yaml:"maxCount" json:"maxCount"`

	// Decoders maps operation names to decoder program overrides.
	Decoders map[string]string `yaml:"decoders" json:"decoders"`

	// HandlersFile is the handler mapping file path.
	HandlersFile string `yaml:"handlersFile" json:"handlersFile"`
}

// Load resolves settings for a run. explicitPath, when non-empty,
// names the settings file to use (and its absence is then an error);
// otherwise the working directory is probed for unpack.yaml and
// unpack.jsonc, either of which may be absent.
func Load(explicitPath string) (*Settings, error) {
	s := &Settings{
		Limits:       model.DefaultLimits(),
		Decoders:     map[string]string{},
		HandlersFile: DefaultHandlersFile,
	}

	path, required := explicitPath, explicitPath != ""
	if !required {
		path = discoverSettingsFile()
	}
	if path != "" {
		fs, err := parseSettingsFile(path)
		if err != nil {
			if required || !os.IsNotExist(err) {
				return nil, err
			}
		} else {
			applyFile(s, fs)
		}
	}

	if err := applyEnv(s); err != nil {
		return nil, err
	}
	return s, nil
}

// discoverSettingsFile returns the first settings file present in the
// working directory, or "".
func discoverSettingsFile() string {
	for _, name := range settingsFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// parseSettingsFile reads and parses path, choosing the parser by
// file extension: .jsonc (and .json) go through comment stripping and
// encoding/json, everything else is treated as YAML.
func parseSettingsFile(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fs := &fileSettings{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json":
		if err := json.Unmarshal(jsonc.ToJSON(data), fs); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, fs); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return fs, nil
}

// applyFile overlays non-zero file values onto s.
func applyFile(s *Settings, fs *fileSettings) {
	if fs.MaxSize > 0 {
		s.Limits.MaxSize = fs.MaxSize
	}
	if fs.MaxCount > 0 {
		s.Limits.MaxCount = fs.MaxCount
	}
	for op, prog := range fs.Decoders {
		if prog != "" {
			s.Decoders[op] = prog
		}
	}
	if fs.HandlersFile != "" {
		s.HandlersFile = fs.HandlersFile
	}
}

// applyEnv overlays the environment limit overrides onto s. A set but
// unparsable value is a configuration error, not something to guess
// around.
func applyEnv(s *Settings) error {
	if v := os.Getenv(EnvMaxSize); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s=%q is not a positive byte count", EnvMaxSize, v)
		}
		s.Limits.MaxSize = n
	}
	if v := os.Getenv(EnvMaxCount); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s=%q is not a positive count", EnvMaxCount, v)
		}
		s.Limits.MaxCount = n
	}
	return nil
}
