package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CatalogConfig identifies the upstream catalog repository.
type CatalogConfig struct {
	RepoOwner  string `toml:"repo_owner"`
	RepoName   string `toml:"repo_name"`
	BaseBranch string `toml:"base_branch"` // empty = upstream default branch
	BaseURL    string `toml:"base_url"`    // prefix of every self link
	ProjectID  string `toml:"project_id"`
}

// GitHubConfig holds GitHub API settings
type GitHubConfig struct {
	APIURL string `toml:"api_url"`
}

// StoreConfig describes the public object store datasets are read from
type StoreConfig struct {
	Endpoint     string `toml:"endpoint"`
	Region       string `toml:"region"`
	PublicBucket string `toml:"public_bucket"`
	Insecure     bool   `toml:"insecure"` // plain http, for local MinIO
}

// UIConfig holds terminal output settings
type UIConfig struct {
	Theme string `toml:"theme"` // "default" or "none"
}

// Config holds the deep-code configuration
type Config struct {
	WorkDir string        `toml:"work_dir"` // parent of per-publish clones
	Catalog CatalogConfig `toml:"catalog"`
	GitHub  GitHubConfig  `toml:"github"`
	Store   StoreConfig   `toml:"store"`
	UI      UIConfig      `toml:"ui"`
}

// Environment variables overriding config file settings
const (
	EnvWorkDir   = "DEEP_CODE_WORK_DIR"
	EnvGitHubAPI = "DEEP_CODE_GITHUB_API"
)

// Defaults
const (
	DefaultRepoOwner    = "ESA-EarthCODE"
	DefaultRepoName     = "open-science-catalog-metadata-testing"
	DefaultBaseURL      = "https://esa-earthcode.github.io/open-science-catalog-metadata"
	DefaultProjectID    = "deep-earth-system-data-lab"
	DefaultGitHubAPI    = "https://api.github.com"
	DefaultStoreBucket  = "deep-esdl-public"
	DefaultStoreRegion  = "eu-central-1"
	DefaultStoreAddress = "s3.eu-central-1.amazonaws.com"
	DefaultWorkDir      = "~/.deep-code/clones"
)

// Default returns the default configuration
func Default() Config {
	return Config{
		WorkDir: DefaultWorkDir,
		Catalog: CatalogConfig{
			RepoOwner: DefaultRepoOwner,
			RepoName:  DefaultRepoName,
			BaseURL:   DefaultBaseURL,
			ProjectID: DefaultProjectID,
		},
		GitHub: GitHubConfig{APIURL: DefaultGitHubAPI},
		Store: StoreConfig{
			Endpoint:     DefaultStoreAddress,
			Region:       DefaultStoreRegion,
			PublicBucket: DefaultStoreBucket,
		},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	// Allow ~ paths
	if path[0] == '~' {
		return nil
	}
	// Must be absolute
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "deep-code", "config.toml"), nil
}

// Load reads config from ~/.config/deep-code/config.toml
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return applyEnv(Default())
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path, falling back to defaults for unset values.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg)
		}
		return fallback(), fmt.Errorf("failed to read config file: %w", err)
	}

	// Decoding over the defaults keeps every key the file leaves out.
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return fallback(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(cfg)
}

// fallback is returned alongside load errors so callers can carry on.
func fallback() Config {
	cfg := Default()
	if dir, err := ExpandPath(cfg.WorkDir); err == nil {
		cfg.WorkDir = dir
	}
	return cfg
}

func applyEnv(cfg Config) (Config, error) {
	if v := os.Getenv(EnvWorkDir); v != "" {
		cfg.WorkDir = v
	}
	if v := os.Getenv(EnvGitHubAPI); v != "" {
		cfg.GitHub.APIURL = v
	}

	if err := cfg.Validate(); err != nil {
		return fallback(), err
	}

	expanded, err := ExpandPath(cfg.WorkDir)
	if err != nil {
		return fallback(), fmt.Errorf("expand work_dir: %w", err)
	}
	cfg.WorkDir = expanded

	return cfg, nil
}

// Validate checks the configuration for values deep-code cannot work with.
func (c *Config) Validate() error {
	if err := ValidatePath(c.WorkDir, "work_dir"); err != nil {
		return err
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir must not be empty")
	}
	if c.Catalog.RepoOwner == "" || c.Catalog.RepoName == "" {
		return fmt.Errorf("catalog.repo_owner and catalog.repo_name are required")
	}
	if c.Catalog.ProjectID == "" {
		return fmt.Errorf("catalog.project_id is required")
	}
	if err := validateHTTPURL(c.Catalog.BaseURL, "catalog.base_url"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.GitHub.APIURL, "github.api_url"); err != nil {
		return err
	}
	if c.Store.Endpoint == "" || c.Store.PublicBucket == "" {
		return fmt.Errorf("store.endpoint and store.public_bucket are required")
	}
	return validateEnum(c.UI.Theme, "ui.theme", ValidThemeNames)
}

func validateHTTPURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got: %q", field, raw)
	}
	return nil
}

const defaultConfig = `# deep-code configuration

# Parent directory of the temporary clones made while publishing.
# Every publish clones into its own subdirectory and removes it afterwards.
# Must be an absolute path or start with ~
# work_dir = "~/.deep-code/clones"

# The catalog repository pull requests are opened against.
[catalog]
repo_owner = "ESA-EarthCODE"
repo_name = "open-science-catalog-metadata-testing"
# base_branch = "main"   # default: the upstream default branch
base_url = "https://esa-earthcode.github.io/open-science-catalog-metadata"
project_id = "deep-earth-system-data-lab"

# [github]
# api_url = "https://api.github.com"   # GitHub Enterprise: https://host/api/v3

# Object store datasets are opened from. The public bucket is tried first
# (anonymous access), then the bucket named by S3_USER_STORAGE_BUCKET with
# S3_USER_STORAGE_KEY / S3_USER_STORAGE_SECRET.
[store]
endpoint = "s3.eu-central-1.amazonaws.com"
region = "eu-central-1"
public_bucket = "deep-esdl-public"
# insecure = false

# [ui]
# theme = "default"   # "none" disables colors
`

// DefaultConfig returns the commented default config file.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at ~/.config/deep-code/config.toml
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, InitAt(path, force)
}

// InitAt writes the default config file to path.
func InitAt(path string, force bool) error {
	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}
