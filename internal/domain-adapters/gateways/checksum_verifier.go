package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// checksumVerifier computes and checks SHA-256 digests of archives
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum compares a file's SHA-256 with the expected hex digest.
// The comparison ignores case and surrounding whitespace, and also accepts
// "sha256:<hex>" and "sha256=<hex>" forms.
func (v *checksumVerifier) VerifyChecksum(ctx context.Context, filePath, expectedSum string) error {
	expected := normalizeDigest(expectedSum)
	if expected == "" {
		return fmt.Errorf("expected checksum is empty")
	}

	actual, err := v.digest(ctx, filePath)
	if err != nil {
		return err
	}

	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// CalculateChecksum calculates the SHA-256 checksum of a file
func (v *checksumVerifier) CalculateChecksum(filePath string) (string, error) {
	return v.digest(context.Background(), filePath)
}

func (v *checksumVerifier) digest(ctx context.Context, filePath string) (string, error) {
	//nolint:gosec // G304: File path is the archive under analysis
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, &contextReader{ctx: ctx, r: f}); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func normalizeDigest(sum string) string {
	sum = strings.ToLower(strings.TrimSpace(sum))
	sum = strings.TrimPrefix(sum, "sha256:")
	sum = strings.TrimPrefix(sum, "sha256=")
	return sum
}

// contextReader stops a long copy once the context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
