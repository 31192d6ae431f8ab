package bundle

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ExportOptions describes the bundle to produce.
type ExportOptions struct {
	// ProjectName is recorded in the manifest's project metadata.
	ProjectName string

	// Verdict is the proof verdict the bundle evidences.
	Verdict string

	// Files maps bundle-relative paths to file content.
	Files map[string][]byte

	// Sign, when non-nil, signs the canonical manifest bytes and embeds
	// the signature base64-encoded.
	Sign Signer

	// ID overrides the generated bundle ID. Empty generates a UUID.
	ID string

	// Clock overrides the export timestamp source.
	Clock func() time.Time
}

// buildManifest hashes every file and assembles the signed manifest.
func buildManifest(opts ExportOptions) (*Manifest, error) {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}

	paths := make([]string, 0, len(opts.Files))
	for path := range opts.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	manifest := &Manifest{
		ID:        id,
		Timestamp: clock().UTC().Format(time.RFC3339),
		Version:   FormatVersion,
		Project:   Project{Name: opts.ProjectName},
		Files:     make([]FileEntry, 0, len(paths)),
		Verdict:   opts.Verdict,
	}
	for _, path := range paths {
		data := opts.Files[path]
		sum := sha256.Sum256(data)
		manifest.Files = append(manifest.Files, FileEntry{
			Path: path,
			Hash: hex.EncodeToString(sum[:]),
			Size: int64(len(data)),
		})
	}

	if opts.Sign != nil {
		unsigned, err := json.Marshal(manifest)
		if err != nil {
			return nil, fmt.Errorf("bundle: encode manifest: %w", err)
		}
		payload, err := canonicalPayload(unsigned)
		if err != nil {
			return nil, err
		}
		sig, err := opts.Sign(payload)
		if err != nil {
			return nil, fmt.Errorf("bundle: sign manifest: %w", err)
		}
		manifest.Signature = base64.StdEncoding.EncodeToString(sig)
	}
	return manifest, nil
}

// ExportDirectory writes the bundle as a plain directory under root.
func ExportDirectory(opts ExportOptions, root string) (*Manifest, error) {
	manifest, err := buildManifest(opts)
	if err != nil {
		return nil, err
	}

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode manifest: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("bundle: create bundle directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestName), manifestBytes, 0o644); err != nil {
		return nil, fmt.Errorf("bundle: write manifest: %w", err)
	}

	for _, entry := range manifest.Files {
		dest := filepath.Join(root, filepath.FromSlash(entry.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("bundle: create %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, opts.Files[entry.Path], 0o644); err != nil {
			return nil, fmt.Errorf("bundle: write %s: %w", entry.Path, err)
		}
	}
	return manifest, nil
}

// ExportArchive writes the bundle as a deterministic tar.gz archive:
// manifest first, then files in sorted path order, all entries with epoch
// mtimes and fixed ownership so identical input yields identical bytes.
func ExportArchive(opts ExportOptions, outPath string) (*Manifest, error) {
	manifest, err := buildManifest(opts)
	if err != nil {
		return nil, err
	}

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode manifest: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("bundle: create archive: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	if err := writeEntry(tw, ManifestName, manifestBytes); err != nil {
		return nil, err
	}
	for _, entry := range manifest.Files {
		if err := writeEntry(tw, entry.Path, opts.Files[entry.Path]); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0o644,
		ModTime: time.Unix(0, 0),
		Uid:     0,
		Gid:     0,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("bundle: write header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("bundle: write data %s: %w", name, err)
	}
	return nil
}
