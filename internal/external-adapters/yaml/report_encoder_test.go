package yaml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

func testReport() *entities.Report {
	return &entities.Report{
		ArchiveName:       "pkg-1.0-cp311-cp311-linux_x86_64.whl",
		ArchiveSHA256:     strings.Repeat("0f", 32),
		EntryCount:        3,
		SourceFileCount:   1,
		SourceTotal:       100,
		SharedObjectTotal: 1000,
		OtherTotal:        10,
		GrandTotal:        1110,
		ArchitectureSummary: []entities.AttributionEntry{
			{Tag: "8.0", Bytes: 400},
			{Tag: "9.0a", Bytes: 600},
		},
		SharedObjects: []entities.SharedObjectRecord{
			{
				Name:             "pkg/_C.so",
				UncompressedSize: 1000,
				CompressedSize:   700,
				Detected:         []entities.ArchitectureTag{"8.0", "9.0a"},
				Mode:             entities.AttributionExact,
				Attributions: []entities.AttributionEntry{
					{Tag: "8.0", Bytes: 400},
					{Tag: "9.0a", Bytes: 600},
				},
			},
		},
	}
}

func TestReportEncoder_Encode(t *testing.T) {
	out, err := NewReportEncoder().Encode(testReport())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	text := string(out)
	for _, want := range []string{
		"name: pkg-1.0-cp311-cp311-linux_x86_64.whl",
		"grand: 1110",
		"approximate: false",
		"attribution: exact",
		"detected: [\"8.0\", 9.0a]",
		"gencode: 9.0a",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	// Quoted tags must decode back to strings, not floats
	var decoded yamlReport
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Architectures[0].Gencode != "8.0" {
		t.Errorf("gencode = %q, want 8.0", decoded.Architectures[0].Gencode)
	}
}

func TestReportEncoder_Stable(t *testing.T) {
	enc := NewReportEncoder()
	a, err := enc.Encode(testReport())
	if err != nil {
		t.Fatal(err)
	}
	b, err := enc.Encode(testReport())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Encode() is not stable across calls")
	}
}

func TestReportEncoder_NoGencodeData(t *testing.T) {
	report := testReport()
	report.SharedObjects[0].Mode = entities.AttributionNone
	report.SharedObjects[0].Attributions = nil
	report.ArchitectureSummary = nil

	out, err := NewReportEncoder().Encode(report)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "gencodes:") {
		t.Errorf("object without gencode data should omit gencodes:\n%s", out)
	}
	if !strings.Contains(string(out), "architectures: []") {
		t.Errorf("empty summary should encode as []:\n%s", out)
	}
}

func TestReportEncoder_Nil(t *testing.T) {
	if _, err := NewReportEncoder().Encode(nil); err == nil {
		t.Error("Encode(nil) should fail")
	}
}
