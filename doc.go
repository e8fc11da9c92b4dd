// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the MQR hub.

The hub randomises maternal-health study participants into five messaging
arms, balanced within strata of province, pregnancy week and age, and serves
the weekly messages and FAQs for each arm from the content repository.

# Commands

	mqr-hub [serve]                        run the API server
	mqr-hub token CLIENT_ID                print a token for an API client
	mqr-hub reset-stratum EC 16-20 31+     start a stratum on a fresh permutation
	mqr-hub import-clinics clinics.csv     load facility codes

# Starting the Server

	JWT_SECRET=... CONTENTREPO_API_URL=https://content.example/ mqr-hub

Or with a config file:

	mqr-hub -c mqr.toml -d postgres://... -t postgres

See package cliparse for every setting.

# Graceful Shutdown

SIGINT and SIGTERM stop accepting connections and drain in-flight requests
for up to 15 seconds.
*/
package main
