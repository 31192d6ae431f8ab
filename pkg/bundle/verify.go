package bundle

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Error codes surfaced in Result.Errors. These are findings, not Go errors:
// a bad signature or a tampered file still yields a complete report.
const (
	ErrCodeSignatureInvalid = "SIGNATURE_INVALID"
	ErrCodeSignatureMissing = "SIGNATURE_MISSING"
)

// ErrUnsupportedEncoding is returned for bundle paths that are neither a
// directory nor a tar.gz archive.
var ErrUnsupportedEncoding = errors.New("bundle: unsupported bundle encoding")

// Result is the outcome of bundle verification. Valid is true iff every
// referenced file is present with a matching hash and the signature, where
// evaluated, checked out.
type Result struct {
	Valid           bool            `json:"valid"`
	SignatureStatus SignatureStatus `json:"signatureValid"`
	FilesIntact     bool            `json:"filesIntact"`
	ModifiedFiles   []string        `json:"modifiedFiles"`
	MissingFiles    []string        `json:"missingFiles"`
	Errors          []string        `json:"errors"`
	Manifest        *Manifest       `json:"manifest,omitempty"`
}

// Verifier authenticates proof bundles.
type Verifier struct {
	logger *slog.Logger
	// workers bounds the parallel hash pool; 0 selects GOMAXPROCS.
	workers int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger attaches a logger for verification progress.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// WithWorkers bounds the parallel hashing pool.
func WithWorkers(n int) Option {
	return func(v *Verifier) { v.workers = n }
}

// NewVerifier creates a bundle verifier.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify authenticates the bundle at path. Both encodings - a directory or
// a tar.gz archive - produce identical semantics. key is optional: empty
// means the signature is not evaluated.
//
// The result depends only on the manifest, the byte content of the
// referenced files, and the key. Findings (tampered files, bad signatures)
// land in the Result; the returned error is reserved for being unable to
// obtain evidence at all.
func (v *Verifier) Verify(ctx context.Context, path, key string) (Result, error) {
	result := Result{
		ModifiedFiles: []string{},
		MissingFiles:  []string{},
		Errors:        []string{},
	}

	src, err := openSource(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, err
	}

	manifestRaw, err := src.manifest()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("manifest unreadable/invalid: %v", err))
		return result, nil
	}
	manifest, err := ParseManifest(manifestRaw)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("manifest unreadable/invalid: %v", err))
		return result, nil
	}
	result.Manifest = manifest
	v.logger.Debug("manifest loaded", "bundle", path, "files", len(manifest.Files))

	if err := v.checkFiles(ctx, src, manifest, &result); err != nil {
		return result, err
	}

	v.checkSignature(manifestRaw, manifest, key, &result)

	result.FilesIntact = len(result.ModifiedFiles) == 0 && len(result.MissingFiles) == 0
	result.Valid = result.FilesIntact && result.SignatureStatus != SignatureInvalid
	return result, nil
}

// checkFiles recomputes every file hash in parallel. Aggregation is
// order-independent: findings are collected under a mutex and sorted, so
// worker scheduling cannot change the result.
func (v *Verifier) checkFiles(ctx context.Context, src source, manifest *Manifest, result *Result) error {
	workers := v.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, entry := range manifest.Files {
		entry := entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, exists, err := src.file(entry.Path)
			if err != nil {
				return fmt.Errorf("bundle: read %s: %w", entry.Path, err)
			}

			if !exists {
				mu.Lock()
				result.MissingFiles = append(result.MissingFiles, entry.Path)
				mu.Unlock()
				return nil
			}

			sum := sha256.Sum256(data)
			if hex.EncodeToString(sum[:]) != normalizeHash(entry.Hash) {
				mu.Lock()
				result.ModifiedFiles = append(result.ModifiedFiles, entry.Path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Strings(result.ModifiedFiles)
	sort.Strings(result.MissingFiles)
	for _, p := range result.ModifiedFiles {
		result.Errors = append(result.Errors, fmt.Sprintf("file modified: %s", p))
	}
	for _, p := range result.MissingFiles {
		result.Errors = append(result.Errors, fmt.Sprintf("file missing: %s", p))
	}
	return nil
}

// checkSignature evaluates the manifest signature only when both a
// signature and a key are present. A key with no signature is fail-closed:
// the caller demanded authentication the bundle cannot provide.
func (v *Verifier) checkSignature(manifestRaw []byte, manifest *Manifest, key string, result *Result) {
	switch {
	case key == "":
		result.SignatureStatus = SignatureNotEvaluated
	case manifest.Signature == "":
		result.SignatureStatus = SignatureInvalid
		result.Errors = append(result.Errors, ErrCodeSignatureMissing)
	default:
		status, err := verifySignature(manifestRaw, manifest.Signature, key)
		result.SignatureStatus = status
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		if status == SignatureInvalid {
			result.Errors = append(result.Errors, ErrCodeSignatureInvalid)
		}
	}
}

// source abstracts the two bundle encodings into one directory-shaped read
// interface.
type source interface {
	manifest() ([]byte, error)
	file(path string) (data []byte, exists bool, err error)
}

func openSource(path string) (source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	if info.IsDir() {
		return &dirSource{root: path}, nil
	}
	if isArchivePath(path) {
		return openArchive(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, path)
}

func isArchivePath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")
}

// dirSource reads a bundle laid out as a plain directory.
type dirSource struct {
	root string
}

func (d *dirSource) manifest() ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, ManifestName))
}

func (d *dirSource) file(path string) ([]byte, bool, error) {
	// Manifest paths are relative; anything escaping the bundle root is
	// treated as missing rather than followed.
	if !filepath.IsLocal(path) {
		return nil, false, nil
	}
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// archiveSource holds a fully extracted tar.gz bundle in memory.
type archiveSource struct {
	files map[string][]byte
}

func openArchive(path string) (*archiveSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: open archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("bundle: gzip reader: %w", err)
	}
	defer gr.Close()

	src := &archiveSource{files: make(map[string][]byte)}
	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bundle: tar read: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("bundle: read %s: %w", hdr.Name, err)
		}
		src.files[filepath.ToSlash(hdr.Name)] = data
	}
	return src, nil
}

func (a *archiveSource) manifest() ([]byte, error) {
	data, ok := a.files[ManifestName]
	if !ok {
		return nil, fmt.Errorf("bundle: %s not found in archive", ManifestName)
	}
	return data, nil
}

func (a *archiveSource) file(path string) ([]byte, bool, error) {
	data, ok := a.files[path]
	return data, ok, nil
}
