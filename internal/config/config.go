package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// CurrentVersion is the only config schema version understood.
const CurrentVersion = 1

// DirName is the per-project directory holding config and snapshots.
const DirName = ".scardoc"

// EnvPrefix prefixes environment overrides, e.g. SCARDOC_LOGGING_LEVEL.
const EnvPrefix = "SCARDOC"

// Config represents the complete scardoc configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" toml:"version"`

	Source  SourceConfig  `json:"source" mapstructure:"source" toml:"source"`
	Parser  ParserConfig  `json:"parser" mapstructure:"parser" toml:"parser"`
	Dump    DumpConfig    `json:"dump" mapstructure:"dump" toml:"dump"`
	Merge   MergeConfig   `json:"merge" mapstructure:"merge" toml:"merge"`
	Output  OutputConfig  `json:"output" mapstructure:"output" toml:"output"`
	Storage StorageConfig `json:"storage" mapstructure:"storage" toml:"storage"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
}

// SourceConfig selects script files to parse
type SourceConfig struct {
	Extensions   []string `json:"extensions" mapstructure:"extensions" toml:"extensions"`
	Exclude      []string `json:"exclude" mapstructure:"exclude" toml:"exclude"`
	MarkerPrefix string   `json:"markerPrefix" mapstructure:"markerPrefix" toml:"markerPrefix"`
}

// ParserConfig tunes the annotation parser
type ParserConfig struct {
	StrictArgs bool `json:"strictArgs" mapstructure:"strictArgs" toml:"strictArgs"`
}

// DumpConfig tunes the dump importer
type DumpConfig struct {
	DuplicateFirstEnumValue bool `json:"duplicateFirstEnumValue" mapstructure:"duplicateFirstEnumValue" toml:"duplicateFirstEnumValue"`
}

// MergeConfig selects the fold mode
type MergeConfig struct {
	Cumulative bool `json:"cumulative" mapstructure:"cumulative" toml:"cumulative"`
}

// OutputConfig controls document rendering
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Indent string `json:"indent" mapstructure:"indent" toml:"indent"`
	Path   string `json:"path" mapstructure:"path" toml:"path"`
}

// StorageConfig locates the snapshot database
type StorageConfig struct {
	Path      string `json:"path" mapstructure:"path" toml:"path"`
	CacheSize int    `json:"cacheSize" mapstructure:"cacheSize" toml:"cacheSize"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level" toml:"level"`
	File       string `json:"file" mapstructure:"file" toml:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize" toml:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" toml:"maxBackups"`
}

// Output formats accepted for documents.
var OutputFormats = []string{"json", "yaml", "toml"}

var logLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Source: SourceConfig{
			Extensions:   []string{".scar"},
			Exclude:      []string{".git", DirName},
			MarkerPrefix: "--? ",
		},
		Output: OutputConfig{
			Format: "json",
			Indent: "  ",
			Path:   "scardoc.json",
		},
		Storage: StorageConfig{
			Path:      filepath.Join(DirName, "snapshots.db"),
			CacheSize: 32,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("source.extensions", d.Source.Extensions)
	v.SetDefault("source.exclude", d.Source.Exclude)
	v.SetDefault("source.markerPrefix", d.Source.MarkerPrefix)
	v.SetDefault("parser.strictArgs", d.Parser.StrictArgs)
	v.SetDefault("dump.duplicateFirstEnumValue", d.Dump.DuplicateFirstEnumValue)
	v.SetDefault("merge.cumulative", d.Merge.Cumulative)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.indent", d.Output.Indent)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.cacheSize", d.Storage.CacheSize)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration from <root>/.scardoc/config.{toml,json,yaml}
// and applies SCARDOC_* environment overrides. A missing file yields the
// defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(root, DirName))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	return &cfg, nil
}

// Path returns the config file written by Save.
func Path(root string) string {
	return filepath.Join(root, DirName, "config.toml")
}

// Save writes the configuration to .scardoc/config.toml
func (c *Config) Save(root string) error {
	if err := os.MkdirAll(filepath.Join(root, DirName), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(Path(root), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if len(c.Source.Extensions) == 0 {
		return &ConfigError{Field: "source.extensions", Message: "at least one extension is required"}
	}
	for _, ext := range c.Source.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{Field: "source.extensions", Message: fmt.Sprintf("extension %q must start with '.'", ext)}
		}
	}
	if strings.TrimSpace(c.Source.MarkerPrefix) == "" {
		return &ConfigError{Field: "source.markerPrefix", Message: "marker prefix cannot be empty"}
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return &ConfigError{Field: "output.format", Message: fmt.Sprintf("unknown format %q", c.Output.Format)}
	}
	if c.Storage.CacheSize < 1 {
		return &ConfigError{Field: "storage.cacheSize", Message: "must be positive"}
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "cannot be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
