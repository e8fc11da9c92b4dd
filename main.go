// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/utils/clock"

	"github.com/danielhkuo/mqr-hub/auth"
	"github.com/danielhkuo/mqr-hub/clinics"
	"github.com/danielhkuo/mqr-hub/cliparse"
	"github.com/danielhkuo/mqr-hub/contentrepo"
	"github.com/danielhkuo/mqr-hub/db"
	"github.com/danielhkuo/mqr-hub/metrics"
	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/mqr"
	"github.com/danielhkuo/mqr-hub/router"
	"github.com/danielhkuo/mqr-hub/strata"
)

var version = "dev"

const usage = `usage: mqr-hub [command] [args] [flags]

commands:
  serve                                 run the API server (default)
  token CLIENT_ID                       print an API token for CLIENT_ID
  reset-stratum PROVINCE WEEKS AGE      replace a stratum with a fresh permutation
  import-clinics FILE.csv               load facility codes from CSV
`

func main() {
	cmd, positional, flags := splitArgs(os.Args[1:])

	// Parse configuration
	cfg, err := cliparse.ParseFlags(flags)
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "token":
		err = printToken(cfg, positional)
	case "reset-stratum":
		err = resetStratum(cfg, positional)
	case "import-clinics":
		err = importClinics(cfg, positional)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

// splitArgs peels the command and its positional arguments off the front of
// args; everything from the first flag on is left for the flag parser.
func splitArgs(args []string) (cmd string, positional, flags []string) {
	cmd = "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = append(positional, args[0])
		args = args[1:]
	}
	return cmd, positional, args
}

func openDB(cfg cliparse.Config) (db.Dialect, *sql.DB, error) {
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return "", nil, err
	}
	conn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		return "", nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return "", nil, err
	}
	return dialect, conn, nil
}

func newAllocator(cfg cliparse.Config, conn *sql.DB, dialect db.Dialect) (*strata.Allocator, error) {
	policy, err := strata.ParsePolicy(cfg.ExhaustionPolicy)
	if err != nil {
		return nil, err
	}
	return strata.NewAllocator(conn, dialect,
		strata.WithPolicy(policy),
		strata.WithMaxRetries(cfg.AllocateMaxRetries),
	), nil
}

func serve(cfg cliparse.Config) error {
	dialect, conn, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	slog.Info("Database schema ready", "type", dialect)

	allocator, err := newAllocator(cfg, conn, dialect)
	if err != nil {
		return err
	}

	content, err := contentrepo.New(cfg.ContentRepoURL, cfg.ContentRepoToken,
		contentrepo.WithHTTPClient(&http.Client{Timeout: cfg.ContentTimeout}),
		contentrepo.WithCacheTTL(cfg.ContentCacheTTL),
	)
	if err != nil {
		return err
	}
	defer content.Close()

	metrics.Register(prometheus.DefaultRegisterer)

	clk := clock.RealClock{}
	mux := router.NewRouter(conn, router.Deps{
		Auth:      auth.New(cfg.JWTSecret, cfg.JWTExpiry),
		Allocator: allocator,
		Sequencer: mqr.NewSequencer(content, clk, mqr.WithSendInterval(cfg.NextSendIntervalDays)),
		Clock:     clk,
		Gatherer:  prometheus.DefaultGatherer,
		Version:   version,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then drain in-flight requests
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "policy", allocator.Policy(), "version", version)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("Server closed")
	return nil
}

func printToken(cfg cliparse.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("token needs exactly one CLIENT_ID")
	}
	token, err := auth.New(cfg.JWTSecret, cfg.JWTExpiry).GenerateToken(args[0])
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func resetStratum(cfg cliparse.Config, args []string) error {
	if len(args) != 3 {
		return errors.New("reset-stratum needs PROVINCE WEEKS AGE")
	}
	dialect, conn, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	allocator, err := newAllocator(cfg, conn, dialect)
	if err != nil {
		return err
	}
	s, err := allocator.Reset(context.Background(), strata.Key{
		Province:    strings.ToUpper(args[0]),
		WeeksBucket: args[1],
		AgeBucket:   args[2],
	})
	if err != nil {
		return err
	}
	slog.Info("stratum reset", "stratum", s.Key.String(), "arm_order", s.ArmOrder)
	return nil
}

func importClinics(cfg cliparse.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("import-clinics needs one CSV file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	_, conn, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	n, err := clinics.NewStore(conn).Import(context.Background(), f)
	if err != nil {
		return err
	}
	slog.Info("clinics imported", "count", n, "file", args[0])
	return nil
}
