package internal

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/autotag/internal/extract"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Vault     VaultConfig       `yaml:"vault"`
	Extractor ExtractorConfig   `yaml:"extractor"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Watch     WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Extractor.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel      slog.Level `yaml:"log_level"`
	// LogFile, when set, receives the JSON log of serve and watch instead
	// of stderr. The file is rotated at LogMaxSizeMB.
	LogFile       string     `yaml:"log_file"`
	LogMaxSizeMB  int        `yaml:"log_max_size_mb"`
	LogMaxBackups int        `yaml:"log_max_backups"`
	HTTP          HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogMaxSizeMB, validation.Min(0)),
		validation.Field(&c.LogMaxBackups, validation.Min(0)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig locates the documents and the tag output inside the vault.
type VaultConfig struct {
	Path        string   `yaml:"path"`
	// KeywordsDir holds tag documents; snapshots live in its .meta child.
	KeywordsDir string   `yaml:"keywords_dir"`
	// IgnoreDirs are directory names whose documents are never tagged.
	IgnoreDirs  []string `yaml:"ignore_dirs"`
}

// MetaDir returns the snapshot directory relative to the vault.
func (c *VaultConfig) MetaDir() string {
	return path.Join(c.keywordsDir(), ".meta")
}

// SkipDirs lists the directory names the watcher never descends into.
func (c *VaultConfig) SkipDirs() []string {
	return append([]string{path.Base(c.keywordsDir())}, c.IgnoreDirs...)
}

func (c *VaultConfig) keywordsDir() string {
	return path.Clean(filepath.ToSlash(c.KeywordsDir))
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.KeywordsDir, validation.Required, validation.By(func(any) error {
			kd := c.keywordsDir()
			if kd == "." || kd == ".." || strings.HasPrefix(kd, "../") || path.IsAbs(kd) {
				return fmt.Errorf("must be a subdirectory of the vault")
			}
			return nil
		})),
	)
}

// ExtractorConfig holds keyword extraction parameters.
type ExtractorConfig struct {
	Language        string  `yaml:"language"`
	MaxPhraseLength int     `yaml:"max_phrase_length"`
	DedupThreshold  float64 `yaml:"dedup_threshold"`
	DedupAlgorithm  string  `yaml:"dedup_algorithm"`
	WindowSize      int     `yaml:"window_size"`
	TopRatio        float64 `yaml:"top_ratio"`
	MinTop          int     `yaml:"min_top"`
	MaxTop          int     `yaml:"max_top"`
}

// Validate validates the extractor configuration.
func (c *ExtractorConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Language, validation.Required, validation.In("en", "english")),
		validation.Field(&c.MaxPhraseLength, validation.Required, validation.Min(1)),
		validation.Field(&c.DedupThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.DedupAlgorithm, validation.Required,
			validation.In(string(extract.Jaro), string(extract.Levenshtein))),
		validation.Field(&c.WindowSize, validation.Required, validation.Min(1)),
		validation.Field(&c.TopRatio, validation.Required, validation.Min(0.0)),
		validation.Field(&c.MinTop, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxTop, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.MinTop > c.MaxTop {
		return fmt.Errorf("extractor: min_top %d exceeds max_top %d", c.MinTop, c.MaxTop)
	}
	return nil
}

// Params returns the extraction parameters. TopN is set per document.
func (c *ExtractorConfig) Params() extract.Params {
	return extract.Params{
		Language:        c.Language,
		MaxPhraseLength: c.MaxPhraseLength,
		DedupThreshold:  c.DedupThreshold,
		DedupAlgorithm:  extract.Algorithm(c.DedupAlgorithm),
		WindowSize:      c.WindowSize,
	}
}

// Sizing returns how many keywords a document gets for its length.
func (c *ExtractorConfig) Sizing() extract.Sizing {
	return extract.Sizing{Ratio: c.TopRatio, Min: c.MinTop, Max: c.MaxTop}
}

// SQLiteConfig holds SQLite index configuration. An empty path disables the
// index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the index is configured.
func (c *SQLiteConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	params := extract.DefaultParams()
	sizing := extract.DefaultSizing()
	return &Config{
		App: ApplicationConfig{
			LogLevel:      slog.LevelInfo,
			LogMaxSizeMB:  10,
			LogMaxBackups: 3,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:        ".",
			KeywordsDir: "keywords",
			IgnoreDirs:  []string{".git", ".obsidian", ".trash"},
		},
		Extractor: ExtractorConfig{
			Language:        params.Language,
			MaxPhraseLength: params.MaxPhraseLength,
			DedupThreshold:  params.DedupThreshold,
			DedupAlgorithm:  string(params.DedupAlgorithm),
			WindowSize:      params.WindowSize,
			TopRatio:        sizing.Ratio,
			MinTop:          sizing.Min,
			MaxTop:          sizing.Max,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
