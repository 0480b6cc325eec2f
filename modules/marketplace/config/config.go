package config

import (
	"github.com/tradeforge-xyz/marketplace-engine/internal/postgres"
)

type Config struct {
	// Database to use for marketplace state. Current supported databases: "postgres", "memory".
	Database string `mapstructure:"database"`

	// Postgres configurations for "postgres" database.
	Postgres postgres.Config `mapstructure:"postgres"`

	// Custodian is the engine custody account on the host ledger. It
	// holds native escrow and must be the approved transfer operator
	// for listed assets.
	Custodian string `mapstructure:"custodian"`

	// FeeAdmin is the only address allowed to run fee, tier and
	// royalty configuration instructions. Separate from
	// storage administration, which is gated operationally through the
	// migration tooling.
	FeeAdmin string `mapstructure:"fee_admin"`

	// FirstBlockHeight is the height the engine starts processing
	// from when the database is empty. Defaults to genesis.
	FirstBlockHeight int64 `mapstructure:"first_block_height"`
}
