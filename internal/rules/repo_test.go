package rules

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func packArchive(t *testing.T, rp RulePack) string {
	t.Helper()
	b, err := json.Marshal(rp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("rulepack.json")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := f.Write(b); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pack.rpkg.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestRepositoryInstallListLoad(t *testing.T) {
	repo, err := OpenRepository(t.TempDir())
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}

	rp := DefaultRulePack("dlt-v1")
	rp.RulePackId = "acme-dlt"
	rp.Version = "1.2.0"
	archive := packArchive(t, rp)

	if _, err := repo.InstallPackage(archive, false); err == nil {
		t.Fatal("unsigned package installed without allow-unsigned")
	}
	installed, err := repo.InstallPackage(archive, true)
	if err != nil {
		t.Fatalf("InstallPackage: %v", err)
	}
	if installed.Signed {
		t.Error("package reported as signed")
	}
	if installed.RulePack.RulePackId != "acme-dlt" {
		t.Errorf("RulePackId = %q", installed.RulePack.RulePackId)
	}

	list, err := repo.ListInstalled()
	if err != nil {
		t.Fatalf("ListInstalled: %v", err)
	}
	if len(list) != 1 || list[0].RulePack.Version != "1.2.0" {
		t.Fatalf("ListInstalled = %+v", list)
	}

	if _, _, err := repo.Load("acme-dlt", "1.2.0", false); err == nil {
		t.Fatal("unsigned pack loaded without allow-unsigned")
	}
	got, source, err := repo.Load("acme-dlt", "1.2.0", true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !source.Unsigned || !source.FromRepository {
		t.Errorf("source = %+v", source)
	}
	if len(got.Rules) != len(rp.Rules) {
		t.Errorf("got %d rules, want %d", len(got.Rules), len(rp.Rules))
	}
}

func TestRepositoryDefaultsAndRemove(t *testing.T) {
	repo, err := OpenRepository(t.TempDir())
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}

	for _, version := range []string{"1.0.0", "1.10.0", "1.2.0"} {
		rp := DefaultRulePack("dlt-v1")
		rp.RulePackId = "acme-dlt"
		rp.Version = version
		if _, err := repo.InstallPackage(packArchive(t, rp), true); err != nil {
			t.Fatalf("install %s: %v", version, err)
		}
	}

	latest, err := repo.latestVersionFor("acme-dlt")
	if err != nil {
		t.Fatalf("latestVersionFor: %v", err)
	}
	if latest != "1.10.0" {
		t.Errorf("latest = %q, want 1.10.0", latest)
	}

	ref := RulePackRef{RulePackId: "acme-dlt", Version: "1.2.0"}
	if err := repo.SetDefaultForProfile("dlt-v1", ref); err != nil {
		t.Fatalf("SetDefaultForProfile: %v", err)
	}
	got, ok, err := repo.DefaultForProfile("dlt-v1")
	if err != nil || !ok || got != ref {
		t.Fatalf("DefaultForProfile = %+v %v %v", got, ok, err)
	}

	// Removing the default also drops the profile mapping.
	if err := repo.Remove("acme-dlt", "1.2.0"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := repo.DefaultForProfile("dlt-v1"); ok {
		t.Error("default mapping survived removal")
	}
}

func TestResolveWithRepository(t *testing.T) {
	repo, err := OpenRepository(t.TempDir())
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}

	// No default configured falls back to the built-in pack.
	rp, source, err := ResolveWithRepository(repo, RulePackRequest{Profile: "dlt-v1"})
	if err != nil {
		t.Fatalf("resolve fallback: %v", err)
	}
	if source.FromRepository {
		t.Error("fallback pack claimed repository origin")
	}
	if rp.RulePackId != "dlt-core" {
		t.Errorf("RulePackId = %q", rp.RulePackId)
	}

	installed := DefaultRulePack("dlt-v1")
	installed.RulePackId = "acme-dlt"
	installed.Version = "2.0.0"
	if _, err := repo.InstallPackage(packArchive(t, installed), true); err != nil {
		t.Fatalf("install: %v", err)
	}

	// Id without version resolves to the latest installed version.
	rp, source, err = ResolveWithRepository(repo, RulePackRequest{
		RulePackId: "acme-dlt", AllowUnsigned: true,
	})
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if rp.Version != "2.0.0" || !source.FromRepository {
		t.Errorf("got %+v, %+v", rp.Version, source)
	}

	if _, _, err := ResolveWithRepository(repo, RulePackRequest{RulePackId: "missing"}); err == nil {
		t.Fatal("missing pack resolved")
	}
}

func TestValidateRulePack(t *testing.T) {
	valid := func() RulePack {
		rp := DefaultRulePack("dlt-v1")
		rp.RulePackId = "acme-dlt"
		return rp
	}
	cases := []struct {
		name   string
		mutate func(*RulePack)
		want   string
	}{
		{"builtin pack is valid", func(rp *RulePack) {}, ""},
		{"missing id", func(rp *RulePack) { rp.RulePackId = "" }, "missing rulePackId"},
		{"missing profile", func(rp *RulePack) { rp.Profile = "" }, "missing profile"},
		{"garbage version", func(rp *RulePack) { rp.Version = "v1.beta" }, "not dotted numeric"},
		{"no rules", func(rp *RulePack) { rp.Rules = nil }, "no rules"},
		{"duplicate rule ids", func(rp *RulePack) {
			rp.Rules = append(rp.Rules, rp.Rules[0])
		}, "duplicate rule id"},
		{"missing check function", func(rp *RulePack) {
			rp.Rules[2].CheckFunc = ""
		}, "missing checkFunction"},
		{"unknown severity", func(rp *RulePack) {
			rp.Rules[0].Severity = "FATAL"
		}, "unknown severity"},
		{"unknown scope", func(rp *RulePack) {
			rp.Rules[0].Scope = "ecu"
		}, "unknown scope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rp := valid()
			tc.mutate(&rp)
			err := ValidateRulePack(rp)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("ValidateRulePack: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestInstallRejectsMalformedPack(t *testing.T) {
	repo, err := OpenRepository(t.TempDir())
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	rp := DefaultRulePack("dlt-v1")
	rp.RulePackId = "acme-dlt"
	rp.Rules = append(rp.Rules, rp.Rules[0])
	if _, err := repo.InstallPackage(packArchive(t, rp), true); err == nil {
		t.Fatal("pack with duplicate rule ids installed")
	}
	if list, err := repo.ListInstalled(); err != nil || len(list) != 0 {
		t.Fatalf("ListInstalled = %+v, %v", list, err)
	}
}

func TestResolveFromPathValidatesPack(t *testing.T) {
	rp := DefaultRulePack("dlt-v1")
	rp.Rules[0].Severity = "LOUD"
	b, err := json.Marshal(rp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pack.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ResolveRulePack(RulePackRequest{Path: path}); err == nil {
		t.Fatal("malformed pack resolved")
	}
}
