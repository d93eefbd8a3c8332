package jsonreport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// Encode returns the RFC 8785 (JCS) canonical JSON form of the report, so
// two runs over the same archive produce identical bytes.
// JCS reads numbers as IEEE doubles; byte counts stay exact below 2^53.
func Encode(report *entities.Report) ([]byte, error) {
	raw, err := json.Marshal(NewDocument(report))
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return canonical, nil
}

// EncodeIndent returns the canonical form re-indented for humans. Key order
// and values are those of Encode.
func EncodeIndent(report *entities.Report) ([]byte, error) {
	canonical, err := Encode(report)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, canonical, "", "  "); err != nil {
		return nil, fmt.Errorf("indent report: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Digest is the sha256 hex digest of the canonical encoding
func Digest(report *entities.Report) (string, error) {
	canonical, err := Encode(report)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
