// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the MQR API.

# Route Registration

	mux := router.NewRouter(db, router.Deps{...})

# Endpoints

Public:

	GET  /health  - liveness
	GET  /metrics - Prometheus exposition

Token required (Authorization: Bearer <jwt>):

	POST /api/v1/mqr_randomstrataarm
	POST /api/v1/mqr-nextmessage/
	POST /api/v1/mqr-faq/
	POST /api/v1/mqr-faq-menu/
	POST /api/v1/mqr-baseline-survey/
	GET  /api/v1/mqr-baseline-survey/{msisdn}
	     /mcp     - MCP streamable HTTP
*/
package router
