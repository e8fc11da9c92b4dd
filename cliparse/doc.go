// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are applied lowest first: Default, a TOML file (--config or
MQR_CONFIG), environment variables (a .env file is loaded first but never
overrides variables already set), then flags that were given explicitly.

# Config Fields

  - Port: server listen port (default: 3318)
  - DatabaseURL, DatabaseType: connection string and "sqlite" or "postgres"
  - JWTSecret: HS256 signing secret for API tokens (required, 16+ chars)
  - JWTExpiry: lifetime of issued tokens (default: 0, tokens never expire)
  - ContentRepoURL, ContentRepoToken: content repository API
  - ContentTimeout, ContentCacheTTL: HTTP timeout and page cache TTL
  - NextSendIntervalDays: days until the next study message (default: 7)
  - ExhaustionPolicy: "serve-all" or "legacy-skip-last"
  - AllocateMaxRetries: retries for conflicting allocations (default: 3)

# CLI Flags

	-c, --config            TOML config file
	    --env-file          .env file (default ".env")
	-p, --port              Server port
	-d, --database-url      Database URL
	-t, --database-type     sqlite or postgres
	    --jwt-secret        JWT signing secret
	    --jwt-expiry        e.g. 720h, 0 never expires
	    --content-url       Content repository base URL
	    --content-token     Content repository token
	    --content-timeout   e.g. 10s
	    --content-cache-ttl e.g. 5m, 0 disables
	    --next-send-days    Days between messages
	    --exhaustion-policy serve-all or legacy-skip-last
	    --allocate-retries  Allocation retries

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, JWT_SECRET, JWT_EXPIRY,
	CONTENTREPO_API_URL, CONTENTREPO_API_TOKEN,
	CONTENTREPO_TIMEOUT, CONTENTREPO_CACHE_TTL,
	MQR_NEXT_SEND_DAYS, MQR_EXHAUSTION_POLICY, MQR_ALLOCATE_RETRIES

# Validation

Validate checks the struct tags with go-playground/validator and lists every
failing field in one error.
*/
package cliparse
