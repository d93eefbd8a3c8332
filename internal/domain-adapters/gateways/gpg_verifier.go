package gateways

import (
	"context"
	"fmt"
	"strings"

	"github.com/ochairo/wheelsize/internal/external-adapters/gpg"
)

// gpgVerifier wraps the OpenPGP adapter for archive signature checks
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a new GPG verifier gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{
		verifier: gpg.NewVerifier(),
	}
}

// ImportKeys loads public keys from a local keyring file or an http(s) URL
func (g *gpgVerifier) ImportKeys(ctx context.Context, source string) error {
	var err error
	if isRemote(source) {
		err = g.verifier.ImportKeysFromURL(ctx, source)
	} else {
		err = g.verifier.ImportKeyFromFile(source)
	}
	if err != nil {
		return fmt.Errorf("failed to import GPG keys: %w", err)
	}
	return nil
}

// VerifySignature checks a detached signature (local file or URL) over filePath
func (g *gpgVerifier) VerifySignature(ctx context.Context, filePath, signature string) error {
	var err error
	if isRemote(signature) {
		err = g.verifier.VerifySignature(ctx, filePath, signature)
	} else {
		err = g.verifier.VerifySignatureFromFile(filePath, signature)
	}
	if err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// KeyCount returns the number of keys loaded
func (g *gpgVerifier) KeyCount() int {
	return g.verifier.GetKeyringSize()
}

// isRemote reports whether source is an http(s) URL
func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
