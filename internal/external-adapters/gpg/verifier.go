// Package gpg checks detached OpenPGP signatures over downloaded archives.
package gpg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const (
	armorSignatureHeader = "-----BEGIN PGP SIGNATURE---"
	maxKeyringBytes      = 10 * 1024 * 1024
	maxSignatureBytes    = 10 * 1024
)

// Verifier holds a keyring and checks detached signatures against it.
// ProtonMail's go-crypto is a maintained fork of golang.org/x/crypto/openpgp.
type Verifier struct {
	keyring    openpgp.EntityList
	httpClient *http.Client
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{
		keyring: make(openpgp.EntityList, 0),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ImportKeysFromURL imports every public key in a published KEYS file
func (v *Verifier) ImportKeysFromURL(ctx context.Context, keysURL string) error {
	data, err := v.fetch(ctx, keysURL, maxKeyringBytes)
	if err != nil {
		return fmt.Errorf("failed to download KEYS file: %w", err)
	}

	entities, err := readKeyRing(data)
	if err != nil {
		return fmt.Errorf("failed to parse KEYS file: %w", err)
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// ImportKeyFromFile imports public keys from an armored or binary keyring file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is user-provided for GPG key import
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}

	entities, err := readKeyRing(data)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// VerifySignature verifies filePath against a detached signature served at sigURL
func (v *Verifier) VerifySignature(ctx context.Context, filePath, sigURL string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no GPG keys imported")
	}

	sig, err := v.fetch(ctx, sigURL, maxSignatureBytes)
	if err != nil {
		return fmt.Errorf("failed to download signature: %w", err)
	}

	return v.check(filePath, sig)
}

// VerifySignatureFromFile verifies filePath against a detached signature on disk
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no GPG keys imported")
	}

	//nolint:gosec // G304: sigPath is user-provided for GPG verification
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature file: %w", err)
	}

	return v.check(filePath, sig)
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}

func (v *Verifier) check(filePath string, sig []byte) error {
	// Detached signatures are well under a kilobyte; anything tiny is junk
	if len(sig) < 10 {
		return fmt.Errorf("signature too small to be a valid OpenPGP signature")
	}

	//nolint:gosec // G304: filePath is the archive being verified
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	if bytes.HasPrefix(sig, []byte(armorSignatureHeader)) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, f, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, f, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

func (v *Verifier) fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// readKeyRing tries the armored form first, then binary
func readKeyRing(data []byte) (openpgp.EntityList, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found")
	}
	return entities, nil
}
