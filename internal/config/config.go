package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the project file looked up in the working directory.
const DefaultPath = ".shipctl.yaml"

// Config represents the top-level structure of .shipctl.yaml
type Config struct {
	Frontend FrontendConfig `yaml:"frontend"`
	Dotnet   DotnetConfig   `yaml:"dotnet"`
	Azure    AzureConfig    `yaml:"azure"`
	SFTP     SFTPConfig     `yaml:"sftp"`
}

// FrontendConfig locates the webpack project
type FrontendConfig struct {
	Dir      string `yaml:"dir"`       // Project folder (default "frontend")
	BuildDir string `yaml:"build_dir"` // Output folder inside Dir (default "build")
}

// DotnetConfig locates the dotnet solution
type DotnetConfig struct {
	SolutionDir string `yaml:"solution_dir"` // Empty = locate the first *.sln
	ReleaseDir  string `yaml:"release_dir"`  // Folder inside the solution dir (default "release")
}

// AzureConfig holds non-secret defaults for `deploy azure-storage`
type AzureConfig struct {
	Destination string `yaml:"destination"`
	Source      string `yaml:"source"`
	Recursive   bool   `yaml:"recursive"`
}

// SFTPConfig holds defaults for `deploy sftp`
type SFTPConfig struct {
	Host      string `yaml:"host"` // SSH alias from ~/.ssh/config
	RemoteDir string `yaml:"remote_dir"`
}

// Default returns the configuration used when no project file exists
func Default() *Config {
	return &Config{
		Frontend: FrontendConfig{Dir: "frontend", BuildDir: "build"},
		Dotnet:   DotnetConfig{ReleaseDir: "release"},
	}
}

// ParseConfig parses YAML content on top of the defaults
func ParseConfig(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads the project file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.Frontend.Dir == "" {
		return fmt.Errorf("frontend.dir must not be empty")
	}
	if err := relativeDir("frontend.build_dir", c.Frontend.BuildDir); err != nil {
		return err
	}
	if err := relativeDir("dotnet.release_dir", c.Dotnet.ReleaseDir); err != nil {
		return err
	}
	if c.Azure.Destination != "" {
		u, err := url.Parse(c.Azure.Destination)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("azure.destination must be an absolute container URL, got %q", c.Azure.Destination)
		}
	}
	if c.SFTP.RemoteDir != "" && !strings.HasPrefix(c.SFTP.RemoteDir, "/") {
		return fmt.Errorf("sftp.remote_dir must be absolute, got %q", c.SFTP.RemoteDir)
	}
	return nil
}

// relativeDir rejects names that would escape their parent directory
func relativeDir(field, dir string) error {
	if dir == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if filepath.IsAbs(dir) || strings.HasPrefix(filepath.Clean(dir), "..") {
		return fmt.Errorf("%s must be a relative path inside its project, got %q", field, dir)
	}
	return nil
}
