// Package main provides the entry point for the Rent Preview image previewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"rent-preview/internal/app"
	"rent-preview/internal/config"
	previmage "rent-preview/internal/image"
	"rent-preview/internal/logging"
	"rent-preview/internal/version"
	"rent-preview/ui/mainwindow"
	"rent-preview/ui/prefs"
)

const appID = "app.rentpreview.viewer"

func main() {
	configPath := flag.String("config", "", "TOML configuration file (watched for changes)")
	index := flag.Int("index", 0, "index of the image shown first")
	maxDim := flag.Int("max-dimension", 4096, "downscale images whose longer side exceeds this, 0 to disable")
	verbose := flag.Bool("v", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] image|dir|url...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log := logging.Install(os.Stderr, *verbose)
	log.Info("starting", slog.String("version", version.Version))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", slog.String("path", *configPath), slog.Any("err", err))
			os.Exit(1)
		}
		cfg = loaded
	}

	locators, err := previmage.Locators(flag.Args())
	if err != nil {
		log.Error("failed to list images", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := fyneapp.NewWithID(appID)
	state := app.NewState(app.Options{
		Locators:     locators,
		InitialIndex: *index,
		Config:       cfg,
		OnClose:      cancel,
	})

	win := mainwindow.New(fyneApp, state, previmage.NewLoader(*maxDim), prefs.Load(prefs.DefaultPath()))

	if *configPath != "" {
		if reloader := setupHotReload(*configPath, state); reloader != nil {
			defer reloader.Stop()
		}
	}

	win.PreviewCanvas().Start(ctx)
	state.Show()
	win.ShowAndRun()
}

// setupHotReload applies configuration file changes to the previewer.
func setupHotReload(path string, state *app.State) *app.HotReloader {
	reloader, err := app.NewHotReloader(path)
	if err != nil {
		logging.Logger().Warn("hot reload unavailable", slog.Any("err", err))
		return nil
	}

	logging.Logger().Info("hot reload: watching config", slog.String("path", reloader.Path()))
	reloader.OnReload(state.SetConfig)
	reloader.Start()
	return reloader
}
