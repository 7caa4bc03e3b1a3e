package export

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"x5a-fwcrack/internal/search"
)

// ManifestName is the manifest file name inside the output directory.
const ManifestName = "manifest.json"

// Manifest describes one export run.
type Manifest struct {
	RunID      string          `json:"run_id"`
	Created    time.Time       `json:"created"`
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	TargetHex  string          `json:"target_hex"`
	Candidates []ManifestEntry `json:"candidates"`
}

// ManifestEntry represents one candidate in the output manifest.
type ManifestEntry struct {
	Index   int      `json:"index"`
	Formula string   `json:"formula"`
	Values  string   `json:"values"`
	Aliases []string `json:"aliases,omitempty"`
	Size    int      `json:"size"`
	File    string   `json:"file"`
	Image   string   `json:"image,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// WriteManifest writes the manifest for cands and their export results.
func WriteManifest(path string, cfg Config, cands []search.Candidate, results []Result) error {
	m := Manifest{
		RunID:      uuid.NewString(),
		Created:    time.Now().UTC(),
		Source:     cfg.Source,
		Target:     string(cfg.Target),
		TargetHex:  hex.EncodeToString(cfg.Target),
		Candidates: make([]ManifestEntry, len(cands)),
	}
	for i, c := range cands {
		f := c.Formula()
		e := ManifestEntry{
			Index:   i,
			Formula: f.String(),
			Values:  f.Values(),
			Size:    len(c.Data),
		}
		for _, a := range c.Formulas[1:] {
			e.Aliases = append(e.Aliases, a.String())
		}
		if i < len(results) {
			e.File = results[i].File
			e.Image = results[i].Image
			e.Error = results[i].Error
		}
		m.Candidates[i] = e
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "export: manifest")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "export: write %s", path)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrapf(err, "export: read %s", path)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "export: parse %s", path)
	}
	return m, nil
}
