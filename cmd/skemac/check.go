package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/reoring/skemac/registry"
)

// check compiles schema documents without validating anything. With --schema
// it checks one file; with --schemas every document of the directory.
func check(c *cli.Context) error {
	logger := newLogger(c)
	opts, err := compileOptions(c, logger)
	if err != nil {
		return err
	}

	var (
		loader registry.Loader
		names  []string
	)
	switch {
	case c.String("schema") != "":
		path := c.String("schema")
		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		mem := registry.NewMemLoader()
		mem.Put(path, data)
		loader, names = mem, []string{path}
	case c.String("schemas") != "":
		dir := registry.DirLoader{Dir: c.String("schemas")}
		if names, err = dir.Names(); err != nil {
			return cli.Exit(err.Error(), 2)
		}
		loader = dir
	default:
		return cli.Exit("one of --schema or --schemas is required", 2)
	}

	reg, err := registry.New(loader, registry.Config{Size: len(names) + 1, Options: opts}, logger, nil)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Schema", "Status", "Digest"})
	failed := 0
	for _, name := range names {
		e, err := reg.Get(c.Context, name)
		if err != nil {
			failed++
			t.AppendRow(table.Row{name, err.Error(), ""})
			continue
		}
		t.AppendRow(table.Row{name, "ok", e.DigestHex()[:16]})
	}
	t.Render()
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d schemas failed to compile", failed, len(names)), 1)
	}
	return nil
}

func init() {
	commands = append(commands, &cli.Command{
		Name:  "check",
		Usage: "compile schema documents and report errors",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "schema document (JSON or YAML)",
				EnvVars: []string{"SKEMAC_SCHEMA"},
			},
			&cli.StringFlag{
				Name:    "schemas",
				Usage:   "directory of schema documents",
				EnvVars: []string{"SKEMAC_SCHEMAS"},
			},
		},
		Action: check,
	})
}
