package unit

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	accesstransport "pollux/contexts/identity-access/access-control/transport/http"
	registrytransport "pollux/contexts/identity-access/registration-service/transport/http"
	polltransport "pollux/contexts/polling/poll-service/transport/http"
	subtransport "pollux/contexts/polling/subscription-service/transport/http"
	ledgermemory "pollux/contexts/token-core/token-ledger/adapters/memory"
	ledgerentities "pollux/contexts/token-core/token-ledger/domain/entities"
	"pollux/contexts/token-core/token-ledger/domain/services"
	"pollux/internal/app/bootstrap"
)

const (
	testDomain = "pollux-test"
	rootAdmin  = "admin-root"
)

func newEngine(t *testing.T) bootstrap.Engine {
	t.Helper()
	return bootstrap.BuildMemoryEngine(testDomain, rootAdmin, ledgermemory.StaticVerifier{}, nil)
}

func registerUser(t *testing.T, engine bootstrap.Engine, account string, age int, location string) {
	t.Helper()
	err := engine.Registry.Handler.RegisterUserHandler(context.Background(), registrytransport.RegisterUserRequest{
		Account:     account,
		DisplayName: "Test " + account,
		Age:         age,
		Location:    location,
	})
	if err != nil {
		t.Fatalf("register user %s failed: %v", account, err)
	}
}

func registerInstance(t *testing.T, engine bootstrap.Engine, account string) {
	t.Helper()
	err := engine.Registry.Handler.RegisterInstanceHandler(context.Background(), registrytransport.RegisterInstanceRequest{
		Account:      account,
		Organization: "Org " + account,
	})
	if err != nil {
		t.Fatalf("register instance %s failed: %v", account, err)
	}
}

func grantRole(t *testing.T, engine bootstrap.Engine, account string, role string) {
	t.Helper()
	err := engine.Access.Handler.AssignRoleHandler(context.Background(), rootAdmin, accesstransport.AssignRoleRequest{
		Account: account,
		Role:    role,
	})
	if err != nil {
		t.Fatalf("grant role %s to %s failed: %v", role, account, err)
	}
}

// createOpenPoll opens the canonical test poll: two options, a day-long
// window, a 1000-token supply and a 100-token allowance gated on being at
// least 18 and located in belgium.
func createOpenPoll(t *testing.T, engine bootstrap.Engine, creator string) polltransport.PollResponse {
	t.Helper()
	poll, err := engine.Polls.Handler.CreatePollHandler(context.Background(), creator, polltransport.CreatePollRequest{
		Title:             "City budget priorities",
		Options:           []string{"Option1", "Option2"},
		EndDate:           time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
		MinAge:            18,
		Location:          "belgium",
		MinTokensRequired: 100,
		TotalSupply:       1000,
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	return poll
}

func subscribeSelf(t *testing.T, engine bootstrap.Engine, user string, pollID string) {
	t.Helper()
	err := engine.Subscriptions.Handler.SubscribeHandler(context.Background(), user, pollID, subtransport.SubscribeRequest{
		User: user,
	})
	if err != nil {
		t.Fatalf("subscribe %s to %s failed: %v", user, pollID, err)
	}
}

func balanceOf(t *testing.T, engine bootstrap.Engine, holder string, assetID string) uint64 {
	t.Helper()
	amount, err := engine.Ledger.Queries.BalanceOf(context.Background(), holder, assetID)
	if err != nil {
		t.Fatalf("balance of %s failed: %v", holder, err)
	}
	return amount
}

// signTicket produces the hex signature the deterministic test verifier
// accepts for the given ticket fields.
func signTicket(holder string, spender string, assetID string, amount uint64, nonce uint64, expiry time.Time) string {
	message := services.CanonicalAuthorizationMessage(testDomain, ledgerentities.TransferAuthorization{
		Holder:  holder,
		Spender: spender,
		AssetID: assetID,
		Amount:  amount,
		Nonce:   nonce,
		Expiry:  expiry,
	})
	return hex.EncodeToString(ledgermemory.Sign(holder, message))
}
