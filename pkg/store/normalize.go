package store

import (
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
)

// Normalize re-exports dateutil.Normalize at the store write boundary, per
// SPEC_FULL.md §4.C1: every write path passes each date through the
// normalizer before it reaches ent.
func Normalize(t time.Time) time.Time { return dateutil.Normalize(t) }
