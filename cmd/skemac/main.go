package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/urfave/cli/v2"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/compiler"
	"github.com/reoring/skemac/i18n"
)

const (
	AppName    = "skemac"
	AppVersion = "0.1.0"
)

var commands = []*cli.Command{}

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      AppName,
		Usage:     "compile JSON Schema documents and validate JSON against them",
		Version:   AppVersion,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "enable debug logging",
				EnvVars: []string{"SKEMAC_VERBOSE"},
			},
			&cli.StringFlag{
				Name:    "lang",
				Value:   "en",
				Usage:   "language of default messages (en, ja)",
				EnvVars: []string{"SKEMAC_LANG"},
			},
			&cli.StringFlag{
				Name:    "messages",
				Usage:   "YAML or JSON file with custom messages by field and keyword",
				EnvVars: []string{"SKEMAC_MESSAGES"},
			},
			&cli.BoolFlag{
				Name:    "trace",
				Usage:   "log compile and validation trace events (implies --verbose)",
				EnvVars: []string{"SKEMAC_TRACE"},
			},
		},
		Commands: slices.Clone(commands),
	}
}

func newLogger(c *cli.Context) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(c.App.ErrWriter))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if c.Bool("verbose") || c.Bool("trace") {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

// compileOptions builds compiler options from the global flags.
func compileOptions(c *cli.Context, logger log.Logger) (compiler.Options, error) {
	opts := compiler.Options{Translator: i18n.Dictionary(c.String("lang"))}
	if path := c.String("messages"); path != "" {
		table, err := i18n.ReadTable(path)
		if err != nil {
			return opts, cli.Exit(fmt.Sprintf("load messages: %v", err), 2)
		}
		opts.Messages = table
	}
	if c.Bool("trace") {
		opts.Tracer = skemac.LogTracer(logger)
	}
	return opts, nil
}
