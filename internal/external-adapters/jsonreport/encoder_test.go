package jsonreport

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gowebpki/jcs"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/services"
)

func sampleReport(reverse bool) *entities.Report {
	entries := []entities.ArchiveEntry{
		{Name: "pkg/__init__.py", UncompressedSize: 120, CompressedSize: 80, Kind: entities.KindSource},
		{Name: "pkg/_C.so", UncompressedSize: 1000, CompressedSize: 400, Kind: entities.KindSharedObject},
		{Name: "pkg/_ops.so", UncompressedSize: 500, CompressedSize: 250, Kind: entities.KindSharedObject},
		{Name: "pkg-1.0.dist-info/RECORD", UncompressedSize: 30, CompressedSize: 20, Kind: entities.KindOther},
	}
	records := []entities.SharedObjectRecord{
		{
			Name: "pkg/_C.so", UncompressedSize: 1000, CompressedSize: 400,
			Detected: []entities.ArchitectureTag{"8.0", "9.0a"},
			Mode:     entities.AttributionExact,
			Attributions: []entities.AttributionEntry{
				{Tag: "9.0a", Bytes: 600}, {Tag: "8.0", Bytes: 300}, {Tag: "unknown", Bytes: 100},
			},
		},
		{
			Name: "pkg/_ops.so", UncompressedSize: 500, CompressedSize: 250,
			Detected: []entities.ArchitectureTag{"7.5"},
			Mode:     entities.AttributionApproximate,
			Attributions: []entities.AttributionEntry{
				{Tag: "7.5", Bytes: 500},
			},
		},
	}
	if reverse {
		records[0], records[1] = records[1], records[0]
	}
	return services.NewReportService().Aggregate(entities.ArchiveMeta{
		Name:   "pkg-1.0-cp311-cp311-linux_x86_64.whl",
		SHA256: strings.Repeat("ab", 32),
	}, entries, records)
}

func TestEncode_Deterministic(t *testing.T) {
	first, err := Encode(sampleReport(false))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := Encode(sampleReport(true))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("encodings differ:\n%s\n%s", first, second)
	}

	// Already canonical: a second pass is a no-op
	again, err := jcs.Transform(first)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again) {
		t.Error("Encode() output is not in canonical form")
	}
	if !bytes.HasPrefix(first, []byte(`{"approximate":true,"architectures":[`)) {
		t.Errorf("unexpected key order: %.60s", first)
	}
}

func TestEncode_Content(t *testing.T) {
	data, err := Encode(sampleReport(false))
	if err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if doc.Totals.Grand != 1650 || doc.Totals.Source+doc.Totals.SharedObjects+doc.Totals.Other != doc.Totals.Grand {
		t.Errorf("totals = %+v", doc.Totals)
	}
	wantTags := []string{"7.5", "8.0", "9.0a", "unknown"}
	if len(doc.Architectures) != len(wantTags) {
		t.Fatalf("architectures = %+v", doc.Architectures)
	}
	for i, a := range doc.Architectures {
		if a.Tag != wantTags[i] {
			t.Errorf("architectures[%d] = %s, want %s", i, a.Tag, wantTags[i])
		}
	}
	if doc.Architectures[0].Label != "sm_7.5" || doc.Architectures[3].Label != "unknown" {
		t.Errorf("labels = %s, %s", doc.Architectures[0].Label, doc.Architectures[3].Label)
	}
	if doc.SharedObjects[0].Name != "pkg/_C.so" || doc.SharedObjects[1].Mode != "approximate" {
		t.Errorf("shared objects = %+v", doc.SharedObjects)
	}
}

func TestEncode_EmptyArraysNotNull(t *testing.T) {
	report := services.NewReportService().Aggregate(entities.ArchiveMeta{Name: "pure.whl"},
		[]entities.ArchiveEntry{{Name: "pure/__init__.py", UncompressedSize: 5, Kind: entities.KindSource}}, nil)

	data, err := Encode(report)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("null")) {
		t.Errorf("encoding contains null: %s", data)
	}
	if err := Validate(data); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid, err := EncodeIndent(sampleReport(false))
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(valid); err != nil {
		t.Errorf("Validate() on encoder output error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"unknown mode", func(d *Document) { d.SharedObjects[0].Mode = "guessed" }},
		{"bad tag", func(d *Document) { d.Architectures[0].Tag = "sm_80" }},
		{"bad digest", func(d *Document) { d.Archive.SHA256 = "xyz" }},
		{"wrong version", func(d *Document) { d.SchemaVersion = "0" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(sampleReport(false))
			tt.mutate(&doc)
			data, err := json.Marshal(doc)
			if err != nil {
				t.Fatal(err)
			}
			if err := Validate(data); err == nil {
				t.Error("Validate() accepted an invalid document")
			}
		})
	}

	if err := Validate([]byte(`{"schema_version":"1"}`)); err == nil {
		t.Error("Validate() accepted a document with missing fields")
	}
}

func TestDigest(t *testing.T) {
	a, err := Digest(sampleReport(false))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Digest(sampleReport(true))
	if err != nil {
		t.Fatal(err)
	}
	if a != b || len(a) != 64 {
		t.Errorf("Digest() = %s / %s, want equal sha256 hex", a, b)
	}

	other := sampleReport(false)
	other.ArchiveName = "renamed.whl"
	c, err := Digest(other)
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Error("Digest() ignored a content change")
	}
}

func TestEncodeIndent_SameContent(t *testing.T) {
	compact, err := Encode(sampleReport(false))
	if err != nil {
		t.Fatal(err)
	}
	indented, err := EncodeIndent(sampleReport(false))
	if err != nil {
		t.Fatal(err)
	}
	recanon, err := jcs.Transform(bytes.TrimSpace(indented))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(compact, recanon) {
		t.Error("EncodeIndent() changed the content")
	}
}
