// Package db embeds the order archive schema.
package db

import _ "embed"

// Schema is idempotent DDL for the orders table.
//
//go:embed migrations/001_schema.sql
var Schema string
