package entities

import "time"

// Asset is one poll's token class. Supply is fixed at creation; every
// later mutation is a pure transfer between holders.
type Asset struct {
	AssetID     string
	TotalSupply uint64
	CreatedAt   time.Time
}

// Balance is one (holder, asset) ledger entry.
type Balance struct {
	Holder  string
	AssetID string
	Amount  uint64
}
