package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the repository configuration, stored as TOML at
// .metadata/config.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
}

// CoreConfig carries the structural repository settings.
type CoreConfig struct {
	RepositoryFormatVersion int  `toml:"repositoryformatversion"`
	Bare                    bool `toml:"bare"`
}

// UserConfig identifies the committer and, optionally, a signing key.
type UserConfig struct {
	Name       string `toml:"name,omitempty"`
	Email      string `toml:"email,omitempty"`
	SigningKey string `toml:"signingkey,omitempty"`
}

// DefaultConfig returns the configuration Init writes: format version 0,
// not bare, no identity.
func DefaultConfig() *Config {
	return &Config{}
}

func (r *Repository) configPath() string {
	return filepath.Join(r.MetaDir, "config")
}

// ReadConfig loads the configuration from disk. A missing file yields the
// defaults; a malformed file is an error.
func (r *Repository) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically replaces the configuration on disk and refreshes
// r.Config.
func (r *Repository) WriteConfig(cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	tmp, err := os.CreateTemp(r.MetaDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	r.Config = cfg
	return nil
}

// Identity formats the configured user as "Name <email>". Either part
// missing yields ErrNoIdentity.
func (c *Config) Identity() (string, error) {
	name := strings.TrimSpace(c.User.Name)
	email := strings.TrimSpace(c.User.Email)
	if name == "" || email == "" {
		return "", ErrNoIdentity
	}
	return fmt.Sprintf("%s <%s>", name, email), nil
}

// Get returns the value of a dotted key such as "user.name". Unknown
// keys are errors; unset string keys return "".
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "core.repositoryformatversion":
		return strconv.Itoa(c.Core.RepositoryFormatVersion), nil
	case "core.bare":
		return strconv.FormatBool(c.Core.Bare), nil
	case "user.name":
		return c.User.Name, nil
	case "user.email":
		return c.User.Email, nil
	case "user.signingkey":
		return c.User.SigningKey, nil
	}
	return "", fmt.Errorf("config: unknown key %q", key)
}

// Set assigns a dotted key. Core values are parsed before assignment so a
// bad value never lands in the struct.
func (c *Config) Set(key, value string) error {
	switch key {
	case "core.repositoryformatversion":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Core.RepositoryFormatVersion = n
	case "core.bare":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Core.Bare = b
	case "user.name":
		c.User.Name = value
	case "user.email":
		c.User.Email = value
	case "user.signingkey":
		c.User.SigningKey = value
	default:
		return fmt.Errorf("config: unknown key %q", key)
	}
	return nil
}

// Unset clears a user key. Core keys are structural and cannot be unset.
func (c *Config) Unset(key string) error {
	switch key {
	case "user.name":
		c.User.Name = ""
	case "user.email":
		c.User.Email = ""
	case "user.signingkey":
		c.User.SigningKey = ""
	default:
		return fmt.Errorf("config: cannot unset key %q", key)
	}
	return nil
}

// List returns "key=value" lines, sorted. Core keys always appear; user
// keys appear only when set.
func (c *Config) List() []string {
	out := []string{
		"core.bare=" + strconv.FormatBool(c.Core.Bare),
		"core.repositoryformatversion=" + strconv.Itoa(c.Core.RepositoryFormatVersion),
	}
	if c.User.Name != "" {
		out = append(out, "user.name="+c.User.Name)
	}
	if c.User.Email != "" {
		out = append(out, "user.email="+c.User.Email)
	}
	if c.User.SigningKey != "" {
		out = append(out, "user.signingkey="+c.User.SigningKey)
	}
	sort.Strings(out)
	return out
}
