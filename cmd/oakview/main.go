package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"

	"oakview/internal/api"
	"oakview/internal/platform/config"
	"oakview/internal/platform/logger"
	"oakview/internal/platform/metrics"
	"oakview/internal/player"
	"oakview/internal/tui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = config.Load()

	serverURL := config.GetEnv("OAKVIEW_SERVER", "http://localhost:8000")
	metricsAddr := config.GetEnv("OAKVIEW_METRICS_ADDR", "")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	logFile := config.GetEnv("OAKVIEW_LOG_FILE", "")
	fps := config.GetEnvInt("OAKVIEW_FPS", 30)
	nudge := config.GetEnvFloat("OAKVIEW_NUDGE_SECONDS", player.DefaultNudgeSeconds)

	startPrefix := ""
	if len(os.Args) > 1 {
		startPrefix = os.Args[1]
	}

	logWriter, err := logger.OpenLogFile(logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", logFile, err)
	}
	log := logger.New(logWriter, logLevel, logFormat)

	met := metrics.New()
	client := api.NewClient(serverURL, log)
	clock := player.NewClock()
	engine := player.NewEngine(clock, nudge, log, met)
	session := player.NewSession(log, met)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metricsSrv *http.Server
	if metricsAddr != "" {
		r := chi.NewRouter()
		r.Use(logger.RequestLogger(log))
		r.Use(metrics.RequestMiddleware(met))
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			met.Handler(nil).ServeHTTP(w, req)
		})
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: r}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
		log.Info("metrics server starting", "addr", metricsAddr)
	}

	log.Info("viewer starting",
		"server", serverURL,
		"fps", fps,
		"start_prefix", startPrefix,
	)

	model := tui.New(ctx, log, client, session, clock, engine, fps, startPrefix)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "oakview: %v\n", err)
		os.Exit(1)
	}
	cancel()

	if metricsSrv != nil {
		shCtx, shCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shCancel()
		if err := metricsSrv.Shutdown(shCtx); err != nil {
			log.Error("metrics server shutdown error", "error", err)
		}
	}

	log.Info("viewer stopped")
}
