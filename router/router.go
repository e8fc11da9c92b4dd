// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/utils/clock"

	"github.com/danielhkuo/mqr-hub/agenttools"
	"github.com/danielhkuo/mqr-hub/auth"
	"github.com/danielhkuo/mqr-hub/handlers"
	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/mqr"
	"github.com/danielhkuo/mqr-hub/strata"
	"github.com/danielhkuo/mqr-hub/survey"
)

// Deps are the services the routes are built on.
type Deps struct {
	Auth      *auth.Auth
	Allocator *strata.Allocator
	Sequencer *mqr.Sequencer
	Clock     clock.PassiveClock
	Gatherer  prometheus.Gatherer
	Version   string
}

func NewRouter(db *sql.DB, deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	strataHandler := handlers.NewStrataHandler(db, deps.Allocator, deps.Clock)
	messageHandler := handlers.NewMessageHandler(deps.Sequencer)
	surveyHandler := handlers.NewSurveyHandler(survey.NewStore(db, deps.Clock))

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(deps.Auth, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Randomisation
	mux.HandleFunc("POST /api/v1/mqr_randomstrataarm", protected(strataHandler.RandomStrataArm))

	// Messaging
	mux.HandleFunc("POST /api/v1/mqr-nextmessage/", protected(messageHandler.NextMessage))
	mux.HandleFunc("POST /api/v1/mqr-faq/", protected(messageHandler.FAQ))
	mux.HandleFunc("POST /api/v1/mqr-faq-menu/", protected(messageHandler.FAQMenu))

	// Baseline survey
	mux.HandleFunc("POST /api/v1/mqr-baseline-survey/", protected(surveyHandler.Save))
	mux.HandleFunc("GET /api/v1/mqr-baseline-survey/{msisdn}", protected(surveyHandler.Get))

	// Agent tools over MCP streamable HTTP
	mcpServer := agenttools.NewServer(deps.Version, strataHandler, messageHandler)
	mux.Handle("/mcp", protected(server.NewStreamableHTTPServer(mcpServer).ServeHTTP))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mqr-hub API v1"))
	})

	return mux
}
