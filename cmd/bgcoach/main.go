package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ilyannn/bgvoicecoach/internal/asrengine"
	"github.com/ilyannn/bgvoicecoach/internal/coach"
	"github.com/ilyannn/bgvoicecoach/internal/config"
	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
	"github.com/ilyannn/bgvoicecoach/internal/diag"
	"github.com/ilyannn/bgvoicecoach/internal/grammar"
	ws "github.com/ilyannn/bgvoicecoach/internal/transport/ws"
	"github.com/ilyannn/bgvoicecoach/internal/ttsengine"
	"github.com/ilyannn/bgvoicecoach/internal/vadgate"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// version is set at build time via -ldflags.
var version = "dev"

// Exit codes (spec §6): 0 success, 2 usage error, 3 content load failure,
// 70 internal error (EX_SOFTWARE).
const (
	exitOK       = 0
	exitUsage    = 2
	exitContent  = 3
	exitInternal = 70
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUsage)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "check-content":
		os.Exit(runCheckContent(os.Args[2:]))
	case "version":
		fmt.Println(version)
		os.Exit(exitOK)
	default:
		usage()
		os.Exit(exitUsage)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bgcoach <serve|check-content|version> [flags]")
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	host := fs.String("host", "", "bind host (overrides HOST)")
	port := fs.Int("port", 0, "bind port (overrides PORT)")
	workers := fs.Int("workers", 0, "ASR worker pool size (defaults to runtime.NumCPU())")
	logLevel := fs.String("log-level", "", "log level (overrides LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return exitUsage
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	store, err := contentstore.Load(cfg.ContentDir)
	if err != nil {
		slog.Error("content load failed", "error", err)
		return exitContent
	}
	slog.Info("content loaded", "version", store.Version(), "scenarios", len(store.ListScenarios()))

	poolSize := *workers
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	backend := asrengine.NewHTTPBackend(cfg.ASREndpoint, poolSize)
	asr := asrengine.New(backend, asrengine.Options{
		BeamPartial:       cfg.ASRBeamPartial,
		BeamFinal:         cfg.ASRBeamFinal,
		Temperature:       0.0,
		NoSpeechThreshold: cfg.ASRNoSpeechThreshold,
		Language:          "bg",
	})

	detector := grammar.New(store)
	provider := coach.NewProvider(cfg)
	slog.Info("coach provider selected", "provider", provider.Name())

	tts := ttsengine.New(cfg.TTSBinaryPath, 8)

	var rec *diag.Recorder
	if cfg.DiagDSN != "" {
		store, err := diag.Open(cfg.DiagDSN)
		if err != nil {
			slog.Warn("diag: disabled, store open failed", "error", err)
		} else {
			rec = diag.NewRecorder(store)
			defer rec.Close()
			slog.Info("diag: enabled")
		}
	}

	wsHandler := ws.NewHandler(ws.Deps{
		ASR: asr,
		NewComposer: func() *coach.Composer {
			return coach.New(store, detector, provider)
		},
		VADConfig: vadgate.Config{
			Aggressiveness: cfg.VADAggressiveness,
			TailMs:         cfg.VADTailMs,
			MaxUtteranceMs: cfg.VADMaxUtteranceMs,
			MinSpeechMs:    cfg.VADMinSpeechMs,
		},
		DefaultL1: cfg.DefaultL1Language,
		Recorder:  rec,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, &deps{
		cfg:       cfg,
		store:     store,
		detector:  detector,
		tts:       tts,
		asr:       asr,
		wsHandler: wsHandler,
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go awaitShutdown(srv)

	slog.Info("bgcoach starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		return exitInternal
	}
	slog.Info("bgcoach stopped")
	return exitOK
}

func runCheckContent(args []string) int {
	fs := flag.NewFlagSet("check-content", flag.ContinueOnError)
	dir := fs.String("dir", "", "content directory (overrides CONTENT_DIR)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return exitUsage
	}
	contentDir := cfg.ContentDir
	if *dir != "" {
		contentDir = *dir
	}

	store, err := contentstore.Load(contentDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "content invalid:", err)
		return exitContent
	}
	fmt.Printf("content ok: version=%s scenarios=%d\n", store.Version(), len(store.ListScenarios()))
	return exitOK
}

func awaitShutdown(srv *http.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
