package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"example.com/dltgate/internal/rules"
)

func sampleReport() rules.AcceptanceReport {
	var rep rules.AcceptanceReport
	rep.Findings = []rules.Diagnostic{
		{
			Ts:            time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			File:          "drive.dlt",
			MessageIndex:  4,
			Offset:        "0x40",
			ApplicationID: "APP1",
			ContextID:     "CTX1",
			RuleId:        "dlt.counter.continuity",
			Severity:      rules.WARN,
			Message:       "message counter gap: counter 7 after 5 (expected 6)",
			Refs:          []string{"PRS_Dlt_00319"},
		},
		{
			Ts:       time.Date(2026, 3, 14, 9, 26, 54, 0, time.UTC),
			File:     "drive.dlt",
			RuleId:   "dlt.file.truncated",
			Severity: rules.ERROR,
			Message:  "file ends in the middle of a record",
		},
	}
	rep.Summary.Total = 2
	rep.Summary.Errors = 1
	rep.Summary.Warnings = 1
	rep.Summary.Pass = false
	return rep
}

func TestAcceptanceJSONRoundTrip(t *testing.T) {
	rep := sampleReport()
	path := filepath.Join(t.TempDir(), "acceptance.json")
	if err := SaveAcceptanceJSON(rep, path); err != nil {
		t.Fatalf("SaveAcceptanceJSON: %v", err)
	}
	got, err := LoadAcceptanceJSON(path)
	if err != nil {
		t.Fatalf("LoadAcceptanceJSON: %v", err)
	}
	if got.Summary != rep.Summary {
		t.Errorf("Summary = %+v, want %+v", got.Summary, rep.Summary)
	}
	if len(got.Findings) != 2 || got.Findings[0].RuleId != "dlt.counter.continuity" {
		t.Errorf("Findings = %+v", got.Findings)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "acceptance.json" {
		t.Errorf("save left extra files: %v", entries)
	}
}

func TestSaveAcceptancePDF(t *testing.T) {
	cases := []struct {
		name string
		opts PDFOptions
	}{
		{"default", PDFOptions{}},
		{"turkish", PDFOptions{Language: LangTurkish}},
		{"with manifest qr", PDFOptions{ManifestHash: "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "report.pdf")
			if err := SaveAcceptancePDFOptions(sampleReport(), tc.opts, out); err != nil {
				t.Fatalf("SaveAcceptancePDFOptions: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if info.Size() == 0 {
				t.Error("empty pdf written")
			}
		})
	}
}

func TestSaveAcceptancePDFEmptyFindings(t *testing.T) {
	var rep rules.AcceptanceReport
	rep.Summary.Pass = true
	out := filepath.Join(t.TempDir(), "report.pdf")
	if err := SaveAcceptancePDF(rep, out); err != nil {
		t.Fatalf("SaveAcceptancePDF: %v", err)
	}
}

func TestManifestHashToQR(t *testing.T) {
	digest := strings.Repeat("ab12cd34", 8)
	png, err := ManifestHashToQR(digest, 64)
	if err != nil {
		t.Fatalf("ManifestHashToQR: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty png")
	}
	// Copy-paste artifacts are tolerated as long as the digest is whole.
	if _, err := ManifestHashToQR(" "+strings.ToUpper(digest)+"\n", 64); err != nil {
		t.Errorf("normalized digest rejected: %v", err)
	}
	if _, err := ManifestHashToQR("ab12cd34", 64); err == nil {
		t.Error("short hash accepted")
	}
	if _, err := ManifestHashToQR("zz--", 64); err == nil {
		t.Error("hash without hex digits accepted")
	}
}

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"", LangEnglish, false},
		{"en", LangEnglish, false},
		{"TR", LangTurkish, false},
		{"turkish", LangTurkish, false},
		{"de", LangEnglish, true},
	}
	for _, tc := range cases {
		got, err := ParseLanguage(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLanguage(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLanguage(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
