package bundle

import (
	"bytes"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"

	"github.com/gowebpki/jcs"
)

// SignatureStatus is the tri-state outcome of signature verification.
// "Not evaluated" is distinct from "checked and passed": a caller that
// never presented a key must not read absence as success.
type SignatureStatus int8

const (
	SignatureNotEvaluated SignatureStatus = iota
	SignatureValid
	SignatureInvalid
)

// String implements fmt.Stringer.
func (s SignatureStatus) String() string {
	switch s {
	case SignatureValid:
		return "valid"
	case SignatureInvalid:
		return "invalid"
	default:
		return "not evaluated"
	}
}

// MarshalJSON encodes the tri-state as true/false/null on the wire.
func (s SignatureStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case SignatureValid:
		return []byte("true"), nil
	case SignatureInvalid:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the true/false/null wire form.
func (s *SignatureStatus) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*s = SignatureValid
	case "false":
		*s = SignatureInvalid
	case "null":
		*s = SignatureNotEvaluated
	default:
		return fmt.Errorf("bundle: invalid signature status %q", data)
	}
	return nil
}

// canonicalPayload returns the RFC 8785 canonical bytes of the manifest
// with the signature field removed. Both signing and verification compute
// over exactly these bytes.
func canonicalPayload(manifestRaw []byte) ([]byte, error) {
	var generic map[string]any
	decoder := json.NewDecoder(bytes.NewReader(manifestRaw))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("bundle: decode manifest for signing: %w", err)
	}
	delete(generic, "signature")

	intermediate, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("bundle: re-encode manifest for signing: %w", err)
	}
	canonical, err := jcs.Transform(intermediate)
	if err != nil {
		return nil, fmt.Errorf("bundle: canonicalize manifest: %w", err)
	}
	return canonical, nil
}

// parsePublicKey tries to read key material as an ed25519 public key,
// accepting PEM (PKIX "PUBLIC KEY" block) or 32 raw bytes in hex. Any key
// that is neither is treated as an HMAC shared secret by the caller.
func parsePublicKey(key string) (ed25519.PublicKey, bool) {
	if block, _ := pem.Decode([]byte(key)); block != nil && block.Type == "PUBLIC KEY" {
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, false
		}
		pub, ok := parsed.(ed25519.PublicKey)
		return pub, ok
	}

	if raw, err := hex.DecodeString(key); err == nil && len(raw) == ed25519.PublicKeySize {
		return ed25519.PublicKey(raw), true
	}
	return nil, false
}

// decodeSignature accepts base64 or hex encoded signatures.
func decodeSignature(sig string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(sig); err == nil {
		return data, nil
	}
	if data, err := hex.DecodeString(sig); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("bundle: signature is neither base64 nor hex")
}

// verifySignature checks the manifest signature against the supplied
// credential. The credential shape selects the scheme: parseable ed25519
// public keys verify asymmetrically, anything else is an HMAC-SHA256
// shared secret. Comparisons are constant-time.
func verifySignature(manifestRaw []byte, signature, key string) (SignatureStatus, error) {
	payload, err := canonicalPayload(manifestRaw)
	if err != nil {
		return SignatureInvalid, err
	}

	sigBytes, err := decodeSignature(signature)
	if err != nil {
		return SignatureInvalid, nil
	}

	if pub, ok := parsePublicKey(key); ok {
		if ed25519.Verify(pub, payload, sigBytes) {
			return SignatureValid, nil
		}
		return SignatureInvalid, nil
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	if hmac.Equal(mac.Sum(nil), sigBytes) {
		return SignatureValid, nil
	}
	return SignatureInvalid, nil
}

// Signer produces a signature over canonical manifest bytes. Export accepts
// one by dependency injection so key custody stays outside this package.
type Signer func(payload []byte) ([]byte, error)

// SignerHMAC signs with an HMAC-SHA256 shared secret.
func SignerHMAC(secret string) Signer {
	return func(payload []byte) ([]byte, error) {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(payload)
		return mac.Sum(nil), nil
	}
}

// SignerEd25519 signs with an ed25519 private key.
func SignerEd25519(priv ed25519.PrivateKey) Signer {
	return func(payload []byte) ([]byte, error) {
		return ed25519.Sign(priv, payload), nil
	}
}
