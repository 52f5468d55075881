package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a policy YAML file. Unknown fields fail immediately so a typo
// cannot silently fall back to a default threshold.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("validate policy %s: %w", path, err)
	}

	return &p, nil
}

// LoadOrDefault loads the policy at path, or the shipped defaults when the
// path is empty.
func LoadOrDefault(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Hash generates a SHA256 hash of the policy from canonical JSON.
// Struct (not map) marshalling keeps the field order deterministic.
func Hash(p *Policy) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
