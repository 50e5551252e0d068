package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/reoring/skemac/httpapi"
	"github.com/reoring/skemac/registry"
)

func serve(c *cli.Context) error {
	logger := newLogger(c)
	opts, err := compileOptions(c, logger)
	if err != nil {
		return err
	}
	dir := c.String("schemas")
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return cli.Exit("--schemas must name a directory", 2)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg, err := registry.New(registry.DirLoader{Dir: dir}, registry.Config{Size: c.Int("cache-size"), Options: opts}, logger, promReg)
	if err != nil {
		return err
	}

	cfg := httpapi.DefaultConfig()
	cfg.Addr = c.String("addr")
	cfg.ParseOpt.MaxBytes = c.Int64("max-bytes")
	srv := httpapi.NewServer(cfg, reg, promReg, promReg, logger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	level.Info(logger).Log("msg", "serving schemas", "dir", dir)
	return srv.Run(ctx)
}

func init() {
	commands = append(commands, &cli.Command{
		Name:  "serve",
		Usage: "serve validation of JSON documents over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Usage:   "listen address",
				EnvVars: []string{"SKEMAC_ADDR"},
			},
			&cli.StringFlag{
				Name:     "schemas",
				Usage:    "directory of schema documents",
				Required: true,
				EnvVars:  []string{"SKEMAC_SCHEMAS"},
			},
			&cli.IntFlag{
				Name:    "cache-size",
				Value:   registry.DefaultSize,
				Usage:   "compiled schemas kept in memory",
				EnvVars: []string{"SKEMAC_CACHE_SIZE"},
			},
			&cli.Int64Flag{
				Name:    "max-bytes",
				Value:   1 << 20,
				Usage:   "maximum request body size",
				EnvVars: []string{"SKEMAC_MAX_BYTES"},
			},
		},
		Action: serve,
	})
}
