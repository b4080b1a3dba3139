package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"epss-viewer/internal/api"
	"epss-viewer/internal/config"
	"epss-viewer/internal/cvss"
	"epss-viewer/internal/epss"
	"epss-viewer/internal/flags"
	"epss-viewer/internal/logging"
	"epss-viewer/internal/nvd"
	"epss-viewer/internal/render"
	"epss-viewer/internal/viewer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ro, err := flags.Parse(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "epss-viewer: %v\n", err)
		return 2
	}

	cfg, err := config.Load(ro.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epss-viewer: %v\n", err)
		return 2
	}
	applyFlags(&cfg, ro)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epss-viewer: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	v := viewer.New(epss.NewClient(cfg.EPSS.APIURL, cfg.EPSS.Timeout, logger))

	if ro.Serve {
		if err := serve(v, cfg.Server.Listen, logger); err != nil {
			logger.Error("server stopped", zap.Error(err))
			return 1
		}
		return 0
	}
	return query(v, cfg, ro, render.New(os.Stdout, cfg.Render), logger)
}

func applyFlags(cfg *config.Config, ro flags.RunOptions) {
	if ro.Listen != "" {
		cfg.Server.Listen = ro.Listen
	}
	if ro.LogLevel != "" {
		cfg.LogLevel = ro.LogLevel
	}
	if ro.NvdAPIKey != "" {
		cfg.NVD.APIKey = ro.NvdAPIKey
	}
	if ro.NoColor {
		cfg.Render.Color = "never"
	}
	if ro.Width > 0 {
		cfg.Render.Width = ro.Width
	}
}

// query runs the add / select / calculate sequence of one session.
func query(v *viewer.Viewer, cfg config.Config, ro flags.RunOptions, out *render.Renderer, logger *zap.Logger) int {
	var ids []string
	for _, arg := range ro.Identifiers {
		var ok bool
		if ids, ok = v.AddIdentifier(ids, arg); !ok {
			_ = out.Message(fmt.Sprintf("%s (%q)", viewer.MsgInvalidCVE, arg))
		}
	}

	date := ro.Date
	if date == "" {
		date = viewer.Today(time.Now())
	}

	payload, err := v.Calculate(ids, ro.Selected, date)
	if err != nil {
		_ = out.Error(err)
		return 1
	}
	if err := out.Payload(payload); err != nil {
		logger.Error("write output", zap.Error(err))
		return 1
	}

	vector := ro.Vector
	if vector == "" && ro.FetchCVSS {
		client := nvd.NewClient(cfg.NVD.APIURL, cfg.NVD.APIKey, cfg.NVD.Timeout, logger)
		vector, err = client.FetchCVSSV3Vector(ids[ro.Selected])
		if err != nil {
			logger.Warn("nvd fetch failed", zap.String("cve", ids[ro.Selected]), zap.Error(err))
			return 0
		}
		if vector == "" {
			_ = out.Message("No CVSS v3 vector published for " + ids[ro.Selected])
			return 0
		}
	}
	if vector == "" {
		return 0
	}

	scored, err := cvss.Contextualize(vector, payload.Score, ro.Opts)
	if err != nil {
		_ = out.Error(fmt.Errorf("contextual score: %w", err))
		return 1
	}
	_ = out.Contextual(scored)
	return 0
}

func serve(v *viewer.Viewer, listen string, logger *zap.Logger) error {
	app := api.NewApp(v, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", listen))
	return app.Listen(listen)
}
