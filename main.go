package main

import (
	"embed"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/timely/internal/config"
	"github.com/idilsaglam/timely/internal/db"
	"github.com/idilsaglam/timely/internal/handlers"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "timely"})

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	store, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("opening database", "err", err)
	}
	defer store.Close()

	templates, _ := fs.Sub(templateFS, "templates")
	static, _ := fs.Sub(staticFS, "static")

	srv, err := handlers.New(store, cfg, logger, templates, static)
	if err != nil {
		logger.Fatal("building server", "err", err)
	}

	handler := srv.Routes()
	if cfg.BasePath != "" {
		root := http.NewServeMux()
		root.Handle(cfg.BasePath+"/", http.StripPrefix(cfg.BasePath, handler))
		handler = root
	}

	logger.Info("listening", "addr", cfg.Addr, "base_path", cfg.BasePath, "driver", cfg.Database.Driver)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
