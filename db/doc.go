// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens connections and manages the schema.

# Dialects

Postgres (lib/pq) and SQLite (modernc.org/sqlite) share one schema and the
$N placeholder style. SQLite connections are limited to one open connection,
which serializes transactions.

	conn, err := db.Open(db.SQLite, "mqr.db")

# Schema Creation

CreateSchema is safe to call multiple times; every statement uses IF NOT
EXISTS. DropSchema removes everything and is meant for tests.

# Tables

  - mqr_strata: one live row per (province, weeks_pregnant_bucket, age_bucket)
    holding the shuffled arm_order and the next_index cursor
  - clinic_code: facility codes and their province
  - mqr_baseline_survey_result: baseline survey answers keyed by msisdn
*/
package db
