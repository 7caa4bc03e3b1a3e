package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"x5a-fwcrack/internal/config"
	"x5a-fwcrack/internal/export"
	"x5a-fwcrack/internal/report"
	"x5a-fwcrack/internal/search"
	"x5a-fwcrack/internal/x5a"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <X5A_FILE>",
		Short: "Try every cipher formula and keep those revealing the target text",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
	f := cmd.Flags()
	f.StringP("target", "t", "", "Plaintext fragment expected in the firmware")
	f.String("target-hex", "", "Target fragment as hex bytes")
	f.StringP("config", "c", "", "Path to config.json file")
	f.IntP("workers", "j", 0, "Number of worker goroutines (default: NumCPU)")
	f.IntP("limit", "n", 0, "Stop after this many candidates")
	f.String("timeout", "", "Give up after this duration, e.g. 30s")
	f.StringP("out", "o", "", "Export candidates to this directory")
	f.Bool("visualize", false, "Write a byte map image per exported candidate")
	f.String("progress", "bar", "Progress output: bar, dots or none")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	var cfg config.Config
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	var fl config.Flags
	fl.Target, _ = flags.GetString("target")
	fl.TargetHex, _ = flags.GetString("target-hex")
	fl.Workers, _ = flags.GetInt("workers")
	fl.Limit, _ = flags.GetInt("limit")
	fl.Timeout, _ = flags.GetString("timeout")
	fl.OutputDir, _ = flags.GetString("out")
	fl.Visualize, _ = flags.GetBool("visualize")
	cfg.Resolve(fl)

	pattern, err := cfg.Pattern()
	if err != nil {
		return err
	}
	timeout, err := cfg.SearchTimeout()
	if err != nil {
		return err
	}
	mode, _ := flags.GetString("progress")
	progress, err := newProgress(mode, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	f, err := x5a.ReadFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	report.Summary(out, f)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.WithFields(log.Fields{
		"target":  fmt.Sprintf("%q", pattern),
		"workers": cfg.Workers,
		"limit":   cfg.Limit,
	}).Debug("starting search")

	start := time.Now()
	cands, err := search.Search(ctx, f.Encrypted(), f.Keys[:], pattern, search.Options{
		Workers:  cfg.Workers,
		Limit:    cfg.Limit,
		Progress: progress,
	})
	progress.Finish()
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return err
		}
		log.WithError(err).Warn("search stopped early, results are partial")
	}
	log.WithFields(log.Fields{
		"candidates": len(cands),
		"elapsed":    time.Since(start).Round(time.Millisecond).String(),
	}).Info("search finished")

	report.Candidates(out, cands, cfg.PreviewLen)
	if len(cands) == 0 {
		color.New(color.FgYellow).Fprintln(out, "target not found under any formula")
		return nil
	}

	if cfg.OutputDir == "" {
		return nil
	}
	results, err := export.Run(export.Config{
		OutputDir:  cfg.OutputDir,
		Source:     args[0],
		Target:     pattern,
		Visualize:  cfg.Visualize,
		ImageWidth: cfg.ImageWidth,
		Workers:    cfg.Workers,
		Log:        log.Log,
	}, cands)
	if err != nil {
		return err
	}

	written := 0
	for _, r := range results {
		if r.Success {
			written++
		}
	}
	color.New(color.FgGreen).Fprintf(out, "exported %d/%d candidates to %s\n", written, len(results), cfg.OutputDir)
	if written < len(results) {
		return errors.Errorf("%d candidates failed to export", len(results)-written)
	}
	return nil
}

// progress is a search.Reporter with a terminal step.
type progress interface {
	search.Reporter
	Finish()
}

func newProgress(mode string, w io.Writer) (progress, error) {
	switch mode {
	case "bar":
		return &barProgress{w: w}, nil
	case "dots":
		return &dotProgress{Reporter: search.Dots(w), w: w}, nil
	case "none":
		return noProgress{}, nil
	default:
		return nil, errors.Errorf("unknown progress mode %q", mode)
	}
}

type barProgress struct {
	w   io.Writer
	bar *pb.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = pb.New(total).SetWriter(p.w).Start()
}

func (p *barProgress) Attempt(search.Attempt) {
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}

type dotProgress struct {
	search.Reporter
	w io.Writer
}

func (p *dotProgress) Finish() { fmt.Fprintln(p.w) }

type noProgress struct{}

func (noProgress) Attempt(search.Attempt) {}
func (noProgress) Finish()                {}
