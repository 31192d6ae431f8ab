package main

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/isl-gate/trustcore/pkg/bundle"
)

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output archive path (.tar.gz); mutually exclusive with -dir")
	dir := fs.String("dir", "", "output directory path; mutually exclusive with -out")
	project := fs.String("project", "", "project name recorded in the manifest")
	verdictName := fs.String("verdict", "", "proof verdict recorded in the manifest")
	secret := fs.String("sign-secret", "", "HMAC secret to sign the manifest with")
	keyFile := fs.String("sign-key-file", "", "ed25519 private key (PKCS#8 PEM) to sign the manifest with")
	fs.Parse(args)

	if (*out == "") == (*dir == "") {
		fmt.Fprintln(os.Stderr, "Usage: islgate export (-out bundle.tar.gz | -dir bundle/) [flags] <files...>")
		return 1
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "islgate: no files to export")
		return 1
	}

	files := make(map[string][]byte, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
			return 1
		}
		files[filepath.ToSlash(filepath.Clean(path))] = data
	}

	signer, err := resolveSigner(*secret, *keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}

	opts := bundle.ExportOptions{
		ProjectName: *project,
		Verdict:     *verdictName,
		Files:       files,
		Sign:        signer,
	}

	var manifest *bundle.Manifest
	if *out != "" {
		manifest, err = bundle.ExportArchive(opts, *out)
	} else {
		manifest, err = bundle.ExportDirectory(opts, *dir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}

	fmt.Printf("exported bundle %s (%d files)\n", manifest.ID, len(manifest.Files))
	return 0
}

func resolveSigner(secret, keyFile string) (bundle.Signer, error) {
	if secret != "" && keyFile != "" {
		return nil, fmt.Errorf("choose one of -sign-secret and -sign-key-file")
	}
	if secret != "" {
		return bundle.SignerHMAC(secret), nil
	}
	if keyFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	block, _ := pem.Decode([]byte(strings.TrimSpace(string(data))))
	if block == nil {
		return nil, fmt.Errorf("signing key is not PEM")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signing key is not ed25519")
	}
	return bundle.SignerEd25519(priv), nil
}
