package gpg

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// signingFixture holds a fresh key pair, an archive, and its signature
type signingFixture struct {
	dir     string
	keyPath string
	archive string
	sigPath string
	armored []byte
	binary  []byte
}

func newSigningFixture(t *testing.T) *signingFixture {
	t.Helper()
	dir := t.TempDir()

	entity, err := openpgp.NewEntity("wheelsize test", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("NewEntity() error = %v", err)
	}

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode() error = %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("armor close error = %v", err)
	}

	content := []byte("PK\x03\x04 pretend wheel contents")
	var armored, binary bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&armored, entity, bytes.NewReader(content), nil); err != nil {
		t.Fatalf("ArmoredDetachSign() error = %v", err)
	}
	if err := openpgp.DetachSign(&binary, entity, bytes.NewReader(content), nil); err != nil {
		t.Fatalf("DetachSign() error = %v", err)
	}

	f := &signingFixture{
		dir:     dir,
		keyPath: filepath.Join(dir, "KEYS.asc"),
		archive: filepath.Join(dir, "pkg-1.0-py3-none-any.whl"),
		sigPath: filepath.Join(dir, "pkg-1.0-py3-none-any.whl.asc"),
		armored: armored.Bytes(),
		binary:  binary.Bytes(),
	}
	for path, data := range map[string][]byte{
		f.keyPath: pub.Bytes(),
		f.archive: content,
		f.sigPath: f.armored,
	} {
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return f
}

func TestVerifier_VerifySignatureFromFile(t *testing.T) {
	f := newSigningFixture(t)

	v := NewVerifier()
	if err := v.ImportKeyFromFile(f.keyPath); err != nil {
		t.Fatalf("ImportKeyFromFile() error = %v", err)
	}
	if v.GetKeyringSize() != 1 {
		t.Fatalf("GetKeyringSize() = %d, want 1", v.GetKeyringSize())
	}

	t.Run("armored", func(t *testing.T) {
		if err := v.VerifySignatureFromFile(f.archive, f.sigPath); err != nil {
			t.Errorf("VerifySignatureFromFile() error = %v", err)
		}
	})

	t.Run("binary", func(t *testing.T) {
		sig := filepath.Join(f.dir, "binary.sig")
		if err := os.WriteFile(sig, f.binary, 0600); err != nil {
			t.Fatal(err)
		}
		if err := v.VerifySignatureFromFile(f.archive, sig); err != nil {
			t.Errorf("VerifySignatureFromFile() error = %v", err)
		}
	})

	t.Run("tampered archive", func(t *testing.T) {
		if err := os.WriteFile(f.archive, []byte("tampered"), 0600); err != nil {
			t.Fatal(err)
		}
		err := v.VerifySignatureFromFile(f.archive, f.sigPath)
		if err == nil || !strings.Contains(err.Error(), "signature verification failed") {
			t.Errorf("expected verification failure, got %v", err)
		}
	})
}

func TestVerifier_VerifySignature_URL(t *testing.T) {
	f := newSigningFixture(t)
	keys, err := os.ReadFile(f.keyPath)
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/KEYS":
			_, _ = w.Write(keys)
		case "/pkg.whl.asc":
			_, _ = w.Write(f.armored)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	v := NewVerifier()
	if err := v.ImportKeysFromURL(context.Background(), server.URL+"/KEYS"); err != nil {
		t.Fatalf("ImportKeysFromURL() error = %v", err)
	}
	if err := v.VerifySignature(context.Background(), f.archive, server.URL+"/pkg.whl.asc"); err != nil {
		t.Errorf("VerifySignature() error = %v", err)
	}

	err = v.VerifySignature(context.Background(), f.archive, server.URL+"/missing.asc")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestVerifier_ImportKeyFromFile_Errors(t *testing.T) {
	v := NewVerifier()

	err := v.ImportKeyFromFile("/nonexistent/key.asc")
	if err == nil || !strings.Contains(err.Error(), "failed to open key file") {
		t.Errorf("expected open error, got %v", err)
	}

	junk := filepath.Join(t.TempDir(), "junk.asc")
	if err := os.WriteFile(junk, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}
	err = v.ImportKeyFromFile(junk)
	if err == nil || !strings.Contains(err.Error(), "failed to read key") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestVerifier_NoKeysImported(t *testing.T) {
	v := NewVerifier()

	if err := v.VerifySignatureFromFile("a", "b"); err == nil {
		t.Error("expected error with empty keyring")
	}
	if err := v.VerifySignature(context.Background(), "a", "http://127.0.0.1:1/x.asc"); err == nil {
		t.Error("expected error with empty keyring")
	}
}

func TestVerifier_SignatureTooSmall(t *testing.T) {
	f := newSigningFixture(t)
	v := NewVerifier()
	if err := v.ImportKeyFromFile(f.keyPath); err != nil {
		t.Fatal(err)
	}

	tiny := filepath.Join(f.dir, "tiny.sig")
	if err := os.WriteFile(tiny, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := v.VerifySignatureFromFile(f.archive, tiny); err == nil {
		t.Error("expected error for truncated signature")
	}
}
