// Package tempid generates deterministic placeholder company identifiers
// for aliases that no resolution tier could match.
package tempid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"strings"
)

// Identifier scheme constants. These are frozen: changing any of them
// breaks determinism for placeholder ids generated by earlier runs.
//   - digest: HMAC-SHA256 over the normalized alias, keyed by the salt
//   - encoding: first 10 digest bytes in Crockford base32, upper case
//   - namespace: "TMP-" prefix, which no real canonical id format uses
const (
	// Namespace marks every generated id
	Namespace = "TMP-"

	digestPrefixLen = 10

	crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

	minSaltLen = 8
)

// Define static errors
var (
	ErrSaltTooShort = errors.New("temp id salt must be at least 8 characters")
)

//nolint:gochecknoglobals // Fixed encoding shared by all generators
var encoding = base32.NewEncoding(crockfordAlphabet).WithPadding(base32.NoPadding)

// Config holds temp id generator settings
type Config struct {
	// Salt keys the alias digest. It is a secret: two deployments with
	// different salts generate disjoint placeholder id spaces.
	Salt string `yaml:"salt"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Salt) < minSaltLen {
		return ErrSaltTooShort
	}

	return nil
}

// Generator produces deterministic placeholder ids
type Generator struct {
	salt []byte
}

// NewGenerator creates a generator from a validated config
func NewGenerator(config *Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Generator{salt: []byte(config.Salt)}, nil
}

// Generate returns the placeholder id for an alias. The same alias and
// salt always yield the same id, across processes and runs.
func (g *Generator) Generate(alias string) string {
	mac := hmac.New(sha256.New, g.salt)
	mac.Write([]byte(Normalize(alias)))
	digest := mac.Sum(nil)

	return Namespace + encoding.EncodeToString(digest[:digestPrefixLen])
}

// IsTempID reports whether an identifier belongs to the placeholder
// namespace. Placeholder ids must never flow back into the mapping cache.
func IsTempID(id string) bool {
	return strings.HasPrefix(strings.TrimSpace(id), Namespace)
}
