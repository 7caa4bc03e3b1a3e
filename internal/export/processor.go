// Package export writes search candidates to an output directory: one raw
// payload per candidate, optional byte map images and a manifest.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"x5a-fwcrack/internal/search"
	"x5a-fwcrack/internal/visualize"
)

// Config holds all shared settings for an export run.
type Config struct {
	OutputDir  string
	Source     string // input file, recorded in the manifest
	Target     []byte
	Visualize  bool
	ImageWidth int
	Workers    int
	Log        log.Interface
}

// Result holds the outcome of writing one candidate.
type Result struct {
	Index   int
	Formula string
	File    string
	Image   string
	Success bool
	Error   string
}

// Run writes every candidate using a worker pool, then the manifest.
// Per-candidate failures are reported in the results; the returned error
// covers the output directory and the manifest.
func Run(cfg Config, cands []search.Candidate) ([]Result, error) {
	if cfg.Log == nil {
		cfg.Log = log.Log
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "export: create %s", cfg.OutputDir)
	}

	total := len(cands)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					cfg.Log.WithFields(log.Fields{
						"written": p,
						"total":   total,
						"rate":    fmt.Sprintf("%.1f/s", float64(p)/time.Since(start).Seconds()),
					}).Info("exporting candidates")
				}
			}
		}
	}()

	// Worker pool
	idxChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				results[idx] = writeCandidate(cfg, idx, cands[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range cands {
		idxChan <- i
	}
	close(idxChan)

	wg.Wait()
	close(done)

	for _, r := range results {
		if !r.Success {
			cfg.Log.WithField("candidate", r.Index).Warn(r.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, ManifestName)
	if err := WriteManifest(manifestPath, cfg, cands, results); err != nil {
		return results, err
	}
	cfg.Log.WithFields(log.Fields{
		"manifest":   manifestPath,
		"candidates": total,
	}).Debug("export finished")

	return results, nil
}

func writeCandidate(cfg Config, idx int, c search.Candidate) Result {
	res := Result{
		Index:   idx,
		Formula: c.Formula().String(),
		File:    fmt.Sprintf("candidate-%03d.bin", idx),
	}

	if err := os.WriteFile(filepath.Join(cfg.OutputDir, res.File), c.Data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Visualize {
		res.Image = fmt.Sprintf("candidate-%03d.webp", idx)
		img := visualize.ByteMap(c.Data, visualize.DefaultWidth)
		img = visualize.Scale(img, cfg.ImageWidth)
		if err := visualize.Save(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
			res.Error = fmt.Sprintf("byte map: %v", err)
			return res
		}
	}

	res.Success = true
	return res
}
