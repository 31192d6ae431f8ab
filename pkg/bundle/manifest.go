// Package bundle authenticates exported proof bundles: a manifest plus the
// evidence files it references, carried either as a plain directory or as a
// tar.gz archive. Verification recomputes every file hash, checks the
// optional manifest signature, and reports tampering as structured findings.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ManifestName is the fixed manifest filename inside a bundle.
const ManifestName = "manifest.json"

// FormatVersion is the bundle format written by Export. Readers accept any
// manifest whose version satisfies formatConstraint.
const FormatVersion = "1.0.0"

const formatConstraintExpr = "^1"

// Project identifies the project a bundle was exported for.
type Project struct {
	Name string `json:"name"`
}

// FileEntry is one content-addressed file reference in the manifest.
type FileEntry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Manifest is the bundle index: file list with hashes, metadata, and an
// optional signature over the canonical manifest bytes. It is produced once
// at export time and read-only afterwards.
type Manifest struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Version   string      `json:"version,omitempty"`
	Project   Project     `json:"project"`
	Files     []FileEntry `json:"files"`
	Verdict   string      `json:"verdict"`
	Signature string      `json:"signature,omitempty"`
}

// manifestSchema is validated before the manifest is used structurally.
// Unknown extra properties are tolerated for forward compatibility.
const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "timestamp", "project", "files", "verdict"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "timestamp": {"type": "string", "minLength": 1},
    "version": {"type": "string"},
    "project": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string", "minLength": 1}}
    },
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path", "hash", "size"],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "hash": {"type": "string", "minLength": 1},
          "size": {"type": "integer", "minimum": 0}
        }
      }
    },
    "verdict": {"type": "string"},
    "signature": {"type": "string"}
  }
}`

var (
	compiledSchema   *jsonschema.Schema
	formatConstraint *semver.Constraints
)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchema)); err != nil {
		panic(fmt.Sprintf("bundle: add manifest schema: %v", err))
	}
	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		panic(fmt.Sprintf("bundle: compile manifest schema: %v", err))
	}
	compiledSchema = schema

	constraint, err := semver.NewConstraint(formatConstraintExpr)
	if err != nil {
		panic(fmt.Sprintf("bundle: parse format constraint: %v", err))
	}
	formatConstraint = constraint
}

// ParseManifest decodes and validates raw manifest bytes.
func ParseManifest(raw []byte) (*Manifest, error) {
	var generic any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("bundle: manifest is not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("bundle: manifest schema violation: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("bundle: decode manifest: %w", err)
	}

	if m.Version != "" {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return nil, fmt.Errorf("bundle: manifest version %q: %w", m.Version, err)
		}
		if !formatConstraint.Check(v) {
			return nil, fmt.Errorf("bundle: unsupported manifest format version %s (need %s)", m.Version, formatConstraintExpr)
		}
	}
	return &m, nil
}

// normalizeHash strips an optional algorithm prefix and lowercases the
// digest so recorded and recomputed hashes compare byte-for-byte.
func normalizeHash(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.TrimPrefix(h, "sha256:")
}
