package services

import (
	"testing"
	"time"

	"pollux/contexts/token-core/token-ledger/domain/entities"
)

func TestCanonicalAuthorizationMessage(t *testing.T) {
	expiry := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	auth := entities.TransferAuthorization{
		Holder:  "alice",
		Spender: "relay-1",
		AssetID: "asset-1",
		Amount:  100,
		Nonce:   7,
		Expiry:  expiry,
	}

	got := string(CanonicalAuthorizationMessage("pollux-dev", auth))
	want := "pollux-ledger/v1|pollux-dev|alice|relay-1|asset-1|100|7|1772366400"
	if got != want {
		t.Fatalf("unexpected canonical message:\n got %q\nwant %q", got, want)
	}
}

func TestCanonicalAuthorizationMessageNormalizes(t *testing.T) {
	expiry := time.Date(2026, time.March, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	padded := entities.TransferAuthorization{
		Holder:  "  alice ",
		Spender: "relay-1\t",
		AssetID: " asset-1",
		Amount:  100,
		Nonce:   7,
		Expiry:  expiry,
	}
	clean := entities.TransferAuthorization{
		Holder:  "alice",
		Spender: "relay-1",
		AssetID: "asset-1",
		Amount:  100,
		Nonce:   7,
		Expiry:  expiry.UTC(),
	}

	if string(CanonicalAuthorizationMessage(" pollux-dev ", padded)) != string(CanonicalAuthorizationMessage("pollux-dev", clean)) {
		t.Fatalf("whitespace and timezone must not change the signed message")
	}

	// A different deployment separator yields a different message, so a
	// ticket cannot be replayed across deployments.
	if string(CanonicalAuthorizationMessage("pollux-prod", clean)) == string(CanonicalAuthorizationMessage("pollux-dev", clean)) {
		t.Fatalf("domain separator must bind the message to one deployment")
	}
}
