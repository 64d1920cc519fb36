package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"example.com/dltgate/internal/rules"
)

// SaveAcceptanceJSON writes an acceptance report as indented JSON. The
// file is written to a temp name and renamed into place so a crashed
// run never leaves a half-written report behind.
func SaveAcceptanceJSON(rep rules.AcceptanceReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode acceptance report: %w", err)
	}
	b = append(b, '\n')
	tmp, err := os.CreateTemp(filepath.Dir(out), ".acceptance-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// LoadAcceptanceJSON reads an acceptance report produced by SaveAcceptanceJSON.
func LoadAcceptanceJSON(path string) (rules.AcceptanceReport, error) {
	var rep rules.AcceptanceReport
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		return rep, fmt.Errorf("parse acceptance report %s: %w", filepath.Base(path), err)
	}
	return rep, nil
}
