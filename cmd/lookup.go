package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/songview/internal/formatter"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Lookup resolves the query given as arguments and prints exactly one JSON line.
//
// Failures are printed as {"error": ...} and never change the exit status, so a calling
// process always has one parseable line to read.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))

	var result models.PreviewLookupResult
	if query == "" {
		result = models.LookupError(fmt.Errorf("%w: query", shared.ErrMissingArgument))
	} else {
		r.logger.Debug("looking up preview", "query", query)
		result = r.lookupEngine(ctx, cmd.Bool("cache")).Lookup(ctx, query)
	}

	line, err := result.MarshalLine()
	if err != nil {
		r.logger.Error("failed to encode lookup result", "error", err)
		line = []byte(`{"error":"failed to encode result"}` + "\n")
	}

	if _, err := r.output.Write(line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// LookupBatch resolves every non-empty line of --file and writes one result per query.
func (r *Runner) LookupBatch(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	format := cmd.String("format")
	if format != "jsonl" && format != "json" && format != "csv" {
		return fmt.Errorf("%w: unsupported format %q (use jsonl or csv)", shared.ErrInvalidArgument, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	queries, err := readQueries(f)
	if err != nil {
		return fmt.Errorf("failed to read query file: %w", err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("%w: no queries in %s", shared.ErrInvalidInput, path)
	}

	opts := tasks.BulkLookupOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = r.config.Lookup.Workers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = r.config.Lookup.RateLimit
	}

	r.logger.Info("looking up previews", "queries", len(queries), "workers", opts.NumWorkers, "rate", opts.RateLimit)

	engine := r.lookupEngine(ctx, cmd.Bool("cache"))
	prog := make(chan tasks.ProgressUpdate, len(queries))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	result, err := engine.BulkLookup(ctx, prog, queries, opts)
	close(prog)
	<-done
	if err != nil {
		return fmt.Errorf("bulk lookup failed: %w", err)
	}

	r.logger.Info("lookup complete",
		"matched", result.Matched, "no_match", result.NoMatch, "failed", result.Failed, "cached", result.CacheHits)

	out := r.output
	if dest := cmd.String("output"); dest != "" {
		file, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if format == "csv" {
		data, err := formatter.LookupsToCSV(result)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	return formatter.WriteLookupLines(out, result)
}

// readQueries returns the trimmed non-empty lines of rd. Lines starting with # are comments.
func readQueries(rd io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	return queries, scanner.Err()
}
