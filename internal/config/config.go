package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/assets"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "toolbox.json"

	DefaultPort        = 3000
	DefaultHost        = "localhost"
	DefaultAssetsDir   = "public"
	DefaultAssetsURL   = "/assets/"
	DefaultAdminPrefix = "/admin"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config represents toolbox.json.
type Config struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`

	Assets AssetsConfig `json:"assets"`
	Admin  AdminConfig  `json:"admin"`

	// Options are free-form values read through Site.Option.
	Options map[string]string `json:"options,omitempty"`

	// Resources are declared on every page, in order.
	Resources []assets.Declaration `json:"resources,omitempty"`

	Storage StorageConfig `json:"storage"`
	Server  ServerConfig  `json:"server"`
	Log     LogConfig     `json:"log"`

	configPath string
}

// AssetsConfig locates the asset files.
type AssetsConfig struct {
	// Dir is the directory holding the asset files, relative to the config.
	Dir string `json:"dir,omitempty"`

	// URL is the URL prefix the files are served under. It may be absolute
	// (a CDN) or a path on this server.
	URL string `json:"url,omitempty"`

	// Minify prefers ".min" variants when they exist.
	Minify bool `json:"minify,omitempty"`

	// Manifest is an optional build manifest used instead of the
	// filesystem to decide whether a minified file exists.
	Manifest string `json:"manifest,omitempty"`
}

// AdminConfig decides which requests are administrative.
type AdminConfig struct {
	Prefix string `json:"prefix,omitempty"`
}

// StorageConfig configures remote asset storage.
type StorageConfig struct {
	S3 *S3Config `json:"s3,omitempty"`
}

// S3Config points at a bucket holding the built assets.
type S3Config struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`
}

// ServerConfig configures `toolbox serve`.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// LogConfig configures the slog handler built by the CLI.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Assets: AssetsConfig{
			Dir: DefaultAssetsDir,
			URL: DefaultAssetsURL,
		},
		Admin: AdminConfig{
			Prefix: DefaultAdminPrefix,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads toolbox.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("T100").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("T101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		te := errors.New("T101").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntaxErr):
			te.WithOffset(path, data, syntaxErr.Offset)
		case stderrors.As(err, &typeErr):
			te.WithOffset(path, data, typeErr.Offset)
		}
		return nil, te
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("T101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("T101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Assets.Dir == "" {
		c.Assets.Dir = DefaultAssetsDir
	}
	if c.Assets.URL == "" {
		c.Assets.URL = DefaultAssetsURL
	}
	if c.Admin.Prefix == "" {
		c.Admin.Prefix = DefaultAdminPrefix
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("T102").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("T102").
			WithDetail("log.format must be \"text\" or \"json\", got " + strconv.Quote(c.Log.Format))
	}
	if c.Storage.S3 != nil && c.Storage.S3.Bucket == "" {
		return errors.New("T102").
			WithDetail("storage.s3.bucket is required when storage.s3 is set")
	}
	seen := make(map[string]bool, len(c.Resources))
	for _, r := range c.Resources {
		if r.ID == "" {
			return errors.New("T102").
				WithResource("", r.File).
				WithDetail("resource for " + strconv.Quote(r.File) + " has no id")
		}
		if seen[r.ID] {
			return errors.New("T102").
				WithResource(r.ID, r.File).
				WithDetail("resource id " + strconv.Quote(r.ID) + " is declared twice")
		}
		seen[r.ID] = true
		if assets.KindOf(r.File) == assets.KindUnknown {
			return errors.New("T111").
				WithResource(r.ID, r.File).
				WithSuggestion("Declare only .js and .css files as resources")
		}
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.New("T102").
			WithDetail("unknown log level " + strconv.Quote(name)).
			WithSuggestion("Use debug, info, warn or error")
	}
	return level, nil
}

// AssetsPath returns the absolute path of the asset directory.
func (c *Config) AssetsPath() string {
	return c.resolve(c.Assets.Dir)
}

// ManifestPath returns the absolute path of the build manifest, or "".
func (c *Config) ManifestPath() string {
	if c.Assets.Manifest == "" {
		return ""
	}
	return c.resolve(c.Assets.Manifest)
}

// IsRemoteURL reports whether assets are served from another origin.
func (c *Config) IsRemoteURL() bool {
	return strings.Contains(c.Assets.URL, "://")
}

// ServerAddress returns host:port for the HTTP server.
func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory holding
// toolbox.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("T100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the working directory or the
// nearest parent holding toolbox.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
