// Package ephcfg locates ephemeris data files and loads tool
// configuration.
//
// A Resolver searches an ordered path list for named files.  The list
// comes from an explicit configuration, the SE_EPHE_PATH environment
// variable, or a built-in default.  File names follow the Swiss
// Ephemeris conventions: sepl_18.se1 holds the planets for the 18th
// Julian century block, semo_18.se1 the Moon, seas_18.se1 the
// asteroids, and de440.eph a JPL development ephemeris.
package ephcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/stotz/sweph/ephem"
	"github.com/stotz/sweph/internal/apperr"
)

// EnvPath is the environment variable naming the ephemeris search path.
const EnvPath = "SE_EPHE_PATH"

// DefaultPaths is the search list used when neither an explicit path
// nor SE_EPHE_PATH is set.
func DefaultPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".sweph", "ephe"))
	}
	return append(paths, "/usr/share/sweph/ephe")
}

// SplitPathList splits an SE_EPHE_PATH value.  A semicolon anywhere
// selects Windows semantics; otherwise the list splits on colons.
// Empty elements are dropped.
func SplitPathList(s string) []string {
	sep := ":"
	if strings.Contains(s, ";") {
		sep = ";"
	}
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SE1FileName returns the conventional file name holding a body for the
// Julian century block containing a year.  Blocks are 600 years wide
// starting at -5400; the name carries the block's first century.
func SE1FileName(b ephem.Body, year int) string {
	prefix := "sepl"
	if b == ephem.Moon {
		prefix = "semo"
	}
	c := centuryBlock(year)
	if c < 0 {
		return fmt.Sprintf("%sm%02d.se1", prefix, -c)
	}
	return fmt.Sprintf("%s_%02d.se1", prefix, c)
}

// AsteroidFileName is the SE1FileName scheme for the main-asteroid
// file.
func AsteroidFileName(year int) string {
	c := centuryBlock(year)
	if c < 0 {
		return fmt.Sprintf("seasm%02d.se1", -c)
	}
	return fmt.Sprintf("seas_%02d.se1", c)
}

func centuryBlock(year int) int {
	y := year
	if y < 0 {
		y -= 599
	}
	return y / 600 * 6
}

// JPLFileName returns the conventional name of a JPL development
// ephemeris.
func JPLFileName(deNumber int) string {
	return fmt.Sprintf("de%d.eph", deNumber)
}

// Resolver searches an ordered list of directories for data files.
type Resolver struct {
	Paths []string
}

// NewResolver builds a resolver from an explicit path list, falling
// back to SE_EPHE_PATH and then the defaults.
func NewResolver(explicit string) *Resolver {
	switch {
	case explicit != "":
		return &Resolver{Paths: SplitPathList(explicit)}
	case os.Getenv(EnvPath) != "":
		return &Resolver{Paths: SplitPathList(os.Getenv(EnvPath))}
	}
	return &Resolver{Paths: DefaultPaths()}
}

// Locate returns the full path of the first directory holding name.
func (r *Resolver) Locate(name string) (string, error) {
	for _, dir := range r.Paths {
		full := filepath.Join(dir, name)
		if st, err := os.Stat(full); err == nil && !st.IsDir() {
			return full, nil
		}
	}
	return "", fmt.Errorf("ephcfg: %s in %s: %w",
		name, strings.Join(r.Paths, string(os.PathListSeparator)), apperr.ErrFileNotFound)
}

// Exists reports whether name is present on the search path.
func (r *Resolver) Exists(name string) bool {
	_, err := r.Locate(name)
	return err == nil
}

// List returns the files on the search path matching a glob pattern,
// in path order.  Directories listed twice contribute once.
func (r *Resolver) List(pattern string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, dir := range r.Paths {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// Config is the optional YAML tool configuration.
type Config struct {
	EphePath      string `yaml:"ephe_path"`
	JPLFile       string `yaml:"jpl_file"`
	DefaultSystem string `yaml:"default_system"`
	LogLevel      string `yaml:"log_level"`
}

// Validate checks field values, not file existence.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.DefaultSystem,
			validation.Length(1, 1).Error("must be a single house system code")),
		validation.Field(&c.LogLevel,
			validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return fmt.Errorf("ephcfg: %v: %w", err, apperr.ErrConfigurationInvalid)
	}
	return nil
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("ephcfg: %s: %w", path, apperr.ErrFileNotFound)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("ephcfg: %s: %v: %w", path, err, apperr.ErrConfigurationInvalid)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
