package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"oecddash/internal/api"
	"oecddash/internal/config"
	"oecddash/internal/engine"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return cfg, err
	}
	log.SetLevel(lvl)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = api.JSONSerializer{}
	e.Logger.SetLevel(log.Level())
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if cfg.RateLimit > 0 {
		e.Use(api.RateLimit(cfg.RateLimit))
	}

	// Routes answer 503 until the repository is warm.
	scheme := engine.NewColorScheme(cfg.ColorMode())
	h := api.NewHandler(nil, scheme)
	h.RegisterRoutes(e)

	go func() {
		t0 := time.Now()
		repo := engine.NewRepository(cfg.Catalog(), cfg.Cache.TTL)
		repo.OnInvalidate = scheme.Reset
		for _, t := range cfg.Topics {
			if len(t.Subtopics) == 0 {
				continue
			}
			if _, err := repo.Topic(ctx, t.ID); err != nil {
				log.Errorf("warming topic %s: %v", t.ID, err)
			}
		}
		h.SetRepository(repo)
		log.Infof("datasets ready in %v", time.Since(t0))

		if cfg.Cache.Watch {
			if err := repo.Watch(ctx); err != nil {
				log.Errorf("dataset watcher stopped: %v", err)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdown); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s, datasets loading in background", cfg.Addr)
	if err := e.Start(cfg.Addr); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
