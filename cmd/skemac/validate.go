package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/compiler"
	"github.com/reoring/skemac/httpapi"
	"github.com/reoring/skemac/jsonschema"
)

type fileResult struct {
	File   string          `json:"file"`
	Valid  bool            `json:"valid"`
	Issues []httpapi.Issue `json:"issues"`
}

func validate(c *cli.Context) error {
	logger := newLogger(c)
	files := c.Args().Slice()
	if len(files) == 0 {
		files = []string{"-"}
	}
	output := c.String("output")
	if output != "table" && output != "json" {
		return cli.Exit(fmt.Sprintf("unknown output %q", output), 2)
	}

	opts, err := compileOptions(c, logger)
	if err != nil {
		return err
	}
	s, err := jsonschema.ReadFile(c.String("schema"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("load schema: %v", err), 2)
	}
	v, err := compiler.Compile(s, opts)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	opt := skemac.ParseOpt{
		Strictness: skemac.Strictness{OnDuplicateKey: skemac.Error},
		CollectAll: c.Bool("collect-all"),
		FailFast:   c.Bool("fail-fast"),
	}
	results := make([]fileResult, len(files))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(max(c.Int("concurrency"), 1))
	for i, file := range files {
		g.Go(func() error {
			iss, err := validateFile(ctx, v, file, c.App.Reader, opt)
			if err != nil {
				return err
			}
			results[i] = fileResult{File: file, Valid: len(iss) == 0, Issues: httpapi.NewIssues(iss)}
			level.Debug(logger).Log("msg", "validated", "file", file, "issues", len(iss))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if output == "json" {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		renderTable(c.App.Writer, results)
	}
	for _, r := range results {
		if !r.Valid {
			return cli.Exit("validation failed", 1)
		}
	}
	return nil
}

// validateFile returns the issues of one document. Decoding problems are
// reported as issues; only I/O failures are errors.
func validateFile(ctx context.Context, v *compiler.Validator, file string, stdin io.Reader, opt skemac.ParseOpt) (skemac.Issues, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	err = v.ValidateFrom(ctx, skemac.JSONReader(bytes.NewReader(data)), opt)
	if err == nil {
		return nil, nil
	}
	if iss, ok := skemac.AsIssues(err); ok {
		return iss, nil
	}
	return nil, err
}

func renderTable(w io.Writer, results []fileResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Path", "Code", "Message", "Rule"})
	for _, r := range results {
		if r.Valid {
			t.AppendRow(table.Row{r.File, "", "ok", "", ""})
			continue
		}
		for _, is := range r.Issues {
			t.AppendRow(table.Row{r.File, is.Path, is.Code, is.Message, is.Rule})
		}
	}
	t.Render()
}

func init() {
	commands = append(commands, &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "validate JSON documents against a schema",
		ArgsUsage: "[file ...] (- or none reads stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "schema document (JSON or YAML)",
				Required: true,
				EnvVars:  []string{"SKEMAC_SCHEMA"},
			},
			&cli.BoolFlag{
				Name:    "collect-all",
				Usage:   "report every violated rule",
				EnvVars: []string{"SKEMAC_COLLECT_ALL"},
			},
			&cli.BoolFlag{
				Name:    "fail-fast",
				Usage:   "stop at the first issue of each document",
				EnvVars: []string{"SKEMAC_FAIL_FAST"},
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"j"},
				Value:   runtime.GOMAXPROCS(0),
				Usage:   "documents validated in parallel",
				EnvVars: []string{"SKEMAC_CONCURRENCY"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "table",
				Usage:   "output format (table, json)",
				EnvVars: []string{"SKEMAC_OUTPUT"},
			},
		},
		Action: validate,
	})
}
