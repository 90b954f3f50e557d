package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// LookupKey is the key of a registry response for dni.
	LookupKey(dni string) string
	// ArtifactKey is the key of rendered bytes.
	ArtifactKey(dni string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts is everything that changes the rendered bytes.
type ArtifactKeyOpts struct {
	Kind   string  `json:"kind"`
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	// Content is a hash of the lookup the artifact was drawn from.
	Content      string `json:"content,omitempty"`
	Source       string `json:"source,omitempty"`
	Detailed     bool   `json:"detailed,omitempty"`
	Unclassified bool   `json:"unclassified,omitempty"`
	AutoWidth    bool   `json:"auto_width,omitempty"`
	NoTree       bool   `json:"no_tree,omitempty"`
	// Day is the render date (yyyy-mm-dd). Documents print it, so an
	// artifact from yesterday is a different artifact.
	Day string `json:"day"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LookupKey keeps the DNI readable so entries can be found by hand.
func (DefaultKeyer) LookupKey(dni string) string {
	return "lookup:" + strings.TrimSpace(dni)
}

// ArtifactKey hashes the options.
func (DefaultKeyer) ArtifactKey(dni string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", strings.TrimSpace(dni), opts)
}

// Hash is the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey is "kind:" followed by the hash of the JSON-encoded parts.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
