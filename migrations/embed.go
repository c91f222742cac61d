package migrations

import "embed"

// Files holds the forward-only schema and seed migrations compiled
// into the binary. Files run once each, in version order; the trigger
// catalog seed in 002 is part of the schema contract.
//
//go:embed *.sql
var Files embed.FS
