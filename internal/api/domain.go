package api

import (
	"github.com/JaimeStill/provenance/internal/batches"
	"github.com/JaimeStill/provenance/internal/manifest"
	"github.com/JaimeStill/provenance/internal/units"
	"github.com/JaimeStill/provenance/internal/verification"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Batches      batches.System
	Units        units.System
	Verification verification.System
}

// NewDomain creates all domain systems from the API runtime. Units feed
// batches (issuance) and verification (resolution); batches feed
// verification (parent status).
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config

	unitsSystem := units.New(
		units.NewStore(runtime.Database.Connection()),
		runtime.Ledger,
		runtime.Logger,
		&cfg.Issuance,
	)

	batchesSystem := batches.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Ledger,
		unitsSystem,
		manifest.NewValidator(&cfg.Manifest),
		runtime.Logger,
		runtime.Pagination,
	)

	verificationSystem := verification.New(
		runtime.Database.Connection(),
		unitsSystem,
		batchesSystem,
		runtime.Ledger,
		runtime.Logger,
		&cfg.Verification,
	)

	return &Domain{
		Batches:      batchesSystem,
		Units:        unitsSystem,
		Verification: verificationSystem,
	}
}
