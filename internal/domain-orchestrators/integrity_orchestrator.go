package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ochairo/wheelsize/internal/domain/interfaces"
)

// ChecksumVerifier checks a file against an expected SHA-256 digest
type ChecksumVerifier interface {
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
}

// SignatureVerifier checks detached OpenPGP signatures
type SignatureVerifier interface {
	ImportKeys(ctx context.Context, source string) error
	VerifySignature(ctx context.Context, filePath, signature string) error
}

// ErrIntegrity marks every integrity gate failure
var ErrIntegrity = errors.New("integrity check failed")

// IntegrityOptions selects the checks run before analysis. Empty fields skip
// the corresponding check.
type IntegrityOptions struct {
	SHA256    string
	Signature string // file path or URL of a detached signature
	Keyring   string // local public keyring
	KeyURL    string // published KEYS file
}

// Enabled reports whether any check was requested
func (o IntegrityOptions) Enabled() bool {
	return o.SHA256 != "" || o.Signature != "" || o.Keyring != "" || o.KeyURL != ""
}

// IntegrityResult records which checks passed
type IntegrityResult struct {
	ChecksumVerified  bool
	SignatureVerified bool
	Duration          time.Duration
}

// IntegrityOrchestrator verifies an archive before it is analyzed
type IntegrityOrchestrator struct {
	checksums  ChecksumVerifier
	signatures SignatureVerifier
	logger     interfaces.Logger
}

// NewIntegrityOrchestrator creates a new integrity orchestrator
func NewIntegrityOrchestrator(checksums ChecksumVerifier, signatures SignatureVerifier, logger interfaces.Logger) *IntegrityOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &IntegrityOrchestrator{
		checksums:  checksums,
		signatures: signatures,
		logger:     logger,
	}
}

// VerifyArchive runs the requested checks in order: checksum, then signature.
// The first failure is returned wrapped in ErrIntegrity.
func (o *IntegrityOrchestrator) VerifyArchive(ctx context.Context, path string, opts IntegrityOptions) (*IntegrityResult, error) {
	startTime := time.Now()
	result := &IntegrityResult{}

	if opts.Signature == "" && (opts.Keyring != "" || opts.KeyURL != "") {
		return result, fmt.Errorf("%w: a keyring was given without a signature", ErrIntegrity)
	}
	if opts.Signature != "" && opts.Keyring == "" && opts.KeyURL == "" {
		return result, fmt.Errorf("%w: a signature needs a keyring or key URL", ErrIntegrity)
	}

	if opts.SHA256 != "" {
		if err := o.checksums.VerifyChecksum(ctx, path, opts.SHA256); err != nil {
			return result, fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
		result.ChecksumVerified = true
		o.logger.Info("checksum verified", interfaces.F("archive", path))
	}

	if opts.Signature != "" {
		for _, source := range []string{opts.Keyring, opts.KeyURL} {
			if source == "" {
				continue
			}
			if err := o.signatures.ImportKeys(ctx, source); err != nil {
				return result, fmt.Errorf("%w: %w", ErrIntegrity, err)
			}
		}
		if err := o.signatures.VerifySignature(ctx, path, opts.Signature); err != nil {
			return result, fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
		result.SignatureVerified = true
		o.logger.Info("signature verified", interfaces.F("archive", path))
	}

	result.Duration = time.Since(startTime)
	return result, nil
}
