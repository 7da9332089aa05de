// Package config loads and resolves kvnav's TOML configuration file and
// CLI flags into a single connection + behavior configuration, per spec
// §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/kvnav/kvnav/internal/kverr"
	"github.com/kvnav/kvnav/internal/protect"
)

// Defaults is the `[defaults]` section of the config file.
type Defaults struct {
	Delimiters []string `mapstructure:"delimiters"`
	Theme      string   `mapstructure:"theme"`
}

// RuleSpec is one entry of a profile's `protected_namespaces` array.
type RuleSpec struct {
	Prefix string `mapstructure:"prefix"`
	Level  string `mapstructure:"level"`
}

// Profile is one `[profiles.<name>]` section of the config file.
type Profile struct {
	URL                 string     `mapstructure:"url"`
	Host                string     `mapstructure:"host"`
	Port                int        `mapstructure:"port"`
	Password            string     `mapstructure:"password"`
	PasswordEnv         string     `mapstructure:"password_env"`
	DB                  int        `mapstructure:"db"`
	Delimiters          []string   `mapstructure:"delimiters"`
	Readonly            bool       `mapstructure:"readonly"`
	ProtectedNamespaces []RuleSpec `mapstructure:"protected_namespaces"`
}

// File is the fully parsed config file.
type File struct {
	Defaults Defaults           `mapstructure:"defaults"`
	Profiles map[string]Profile `mapstructure:"profiles"`
}

// DefaultPath returns `<user-config-dir>/kvnav/config.toml`.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "kvnav", "config.toml")
}

// Load reads and parses the TOML config file at path. A missing file is
// not an error — it resolves to an empty File so CLI flags alone can
// drive the connection.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return &File{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	return &f, nil
}

// Flags carries the CLI-flag-derived inputs that participate in
// resolution, mirroring cmd/kvnav's cobra flag set.
type Flags struct {
	Positional string // URL or profile name
	Host       string
	Port       int
	Password   string
	DB         int
	Delimiters []string
	Profile    string
	Readonly   bool
}

// Connection is the fully resolved set of inputs needed to construct an
// adapter and an AppState.
type Connection struct {
	URL                 string // non-empty iff a redis://-style URL should be used
	Host                string
	Port                int
	Password            string
	DB                  int
	Delimiters          string
	Readonly            bool
	ProtectedNamespaces []protect.Namespace
}

// Resolve applies the precedence rules of spec §6:
//
//	connection string: positional URL > positional profile name > --profile > host/port flags
//	password: profile.password > env(profile.password_env) > --password > $REDIS_PASSWORD
func Resolve(f *File, flags Flags) (Connection, error) {
	var errs kverr.Errors

	conn := Connection{
		Host:       "127.0.0.1",
		Port:       6379,
		Delimiters: ":",
	}
	if len(flags.Delimiters) > 0 {
		conn.Delimiters = joinRunes(flags.Delimiters)
	} else if len(f.Defaults.Delimiters) > 0 {
		conn.Delimiters = joinRunes(f.Defaults.Delimiters)
	}

	var profile *Profile
	switch {
	case looksLikeURL(flags.Positional):
		conn.URL = flags.Positional
	case flags.Positional != "":
		if p, ok := f.Profiles[flags.Positional]; ok {
			profile = &p
		} else {
			errs = kverr.Append(errs, fmt.Errorf("config: unknown profile %q", flags.Positional))
		}
	case flags.Profile != "":
		if p, ok := f.Profiles[flags.Profile]; ok {
			profile = &p
		} else {
			errs = kverr.Append(errs, fmt.Errorf("config: unknown profile %q", flags.Profile))
		}
	}

	if profile != nil {
		if err := applyProfile(&conn, *profile); err != nil {
			errs = kverr.Append(errs, err)
		}
	}

	if conn.URL == "" && profile == nil {
		if flags.Host != "" {
			conn.Host = flags.Host
		}
		if flags.Port != 0 {
			conn.Port = flags.Port
		}
		if flags.DB != 0 {
			conn.DB = flags.DB
		}
	}

	conn.Password = resolvePassword(profile, flags.Password)
	conn.Readonly = conn.Readonly || flags.Readonly

	if len(errs) > 0 {
		return Connection{}, errs
	}
	return conn, nil
}

// applyProfile folds p's settings into conn. It continues past an invalid
// protected-namespace level rather than stopping at the first one, so
// Resolve can report every bad level in the profile at once alongside any
// unknown-profile error, instead of a single error per run.
func applyProfile(conn *Connection, p Profile) error {
	if p.URL != "" {
		conn.URL = p.URL
	} else {
		if p.Host != "" {
			conn.Host = p.Host
		}
		if p.Port != 0 {
			conn.Port = p.Port
		}
		conn.DB = p.DB
	}
	if len(p.Delimiters) > 0 {
		conn.Delimiters = joinRunes(p.Delimiters)
	}
	conn.Readonly = p.Readonly

	var errs kverr.Errors
	for _, r := range p.ProtectedNamespaces {
		level, err := parseLevel(r.Level)
		if err != nil {
			errs = kverr.Append(errs, fmt.Errorf("config: protected_namespaces %q: %w", r.Prefix, err))
			continue
		}
		conn.ProtectedNamespaces = append(conn.ProtectedNamespaces, protect.Namespace{
			Prefix: r.Prefix,
			Level:  level,
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func resolvePassword(profile *Profile, flagPassword string) string {
	if profile != nil {
		if profile.Password != "" {
			return profile.Password
		}
		if profile.PasswordEnv != "" {
			if v := os.Getenv(profile.PasswordEnv); v != "" {
				return v
			}
		}
	}
	if flagPassword != "" {
		return flagPassword
	}
	return os.Getenv("REDIS_PASSWORD")
}

func parseLevel(s string) (protect.Level, error) {
	switch s {
	case "warn":
		return protect.Warn, nil
	case "confirm":
		return protect.Confirm, nil
	case "block":
		return protect.Block, nil
	default:
		return protect.Warn, fmt.Errorf("invalid level %q (want warn, confirm, or block)", s)
	}
}

func looksLikeURL(s string) bool {
	return len(s) >= 8 && (s[:8] == "redis://" || (len(s) >= 9 && s[:9] == "rediss://"))
}

func joinRunes(delims []string) string {
	out := ""
	for _, d := range delims {
		out += d
	}
	return out
}
