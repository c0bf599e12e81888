// Package config reads a project's nova.json configuration (§6
// [EXPANDED] C12): the compilation target name and the compiler-version
// constraint the project was written against. It is intentionally
// small — no module graph, no dependency resolution — since those
// concerns belong to the package manager, an external collaborator
// (§1 Non-goals).
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/mod/semver"
)

// Config is the decoded shape of nova.json.
type Config struct {
	// Target names the project's compilation target; Validate requires
	// it to be non-empty.
	Target string `json:"target"`

	// CompilerVersion is the minimum compiler version the project
	// declares it was written against, as a plain semver with no
	// operator prefix, e.g. "v0.4.0".
	CompilerVersion string `json:"compilerVersion"`

	// DumpFormat selects internal/dump's output ("markdown" or "html");
	// empty means no dump is produced unless -dump overrides it.
	DumpFormat string `json:"dumpFormat"`
}

// Load decodes a nova.json document from r and validates it.
func Load(r io.Reader) (*Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode nova.json: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports whether c is well-formed: a non-empty target and a
// syntactically valid semver constraint.
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("config: target must not be empty")
	}
	switch c.DumpFormat {
	case "", "markdown", "html":
	default:
		return fmt.Errorf("config: dumpFormat %q must be \"markdown\" or \"html\"", c.DumpFormat)
	}
	if c.CompilerVersion == "" {
		return nil
	}
	v := c.CompilerVersion
	if !semver.IsValid(v) {
		return fmt.Errorf("config: compilerVersion %q is not a valid semver", v)
	}
	return nil
}

// Satisfies reports whether actual (a semver like "v0.4.2") meets c's
// declared CompilerVersion constraint, read as a minimum version.
func (c *Config) Satisfies(actual string) bool {
	if c.CompilerVersion == "" {
		return true
	}
	return semver.Compare(actual, c.CompilerVersion) >= 0
}
