package unit

import (
	"context"
	"errors"
	"testing"

	accesserrors "pollux/contexts/identity-access/access-control/domain/errors"
	accesstransport "pollux/contexts/identity-access/access-control/transport/http"
	registryerrors "pollux/contexts/identity-access/registration-service/domain/errors"
	registrytransport "pollux/contexts/identity-access/registration-service/transport/http"
)

func TestRegistrationIsOneShot(t *testing.T) {
	engine := newEngine(t)
	registerUser(t, engine, "alice", 25, "belgium")

	account, err := engine.Registry.Handler.AccountHandler(context.Background(), "alice")
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	if !account.IsUser || account.IsInstance {
		t.Fatalf("expected a user account, got %+v", account)
	}

	role, err := engine.Access.Handler.AccountRoleHandler(context.Background(), "alice")
	if err != nil {
		t.Fatalf("role lookup failed: %v", err)
	}
	if role.Role != "user" {
		t.Fatalf("expected user role from registration, got %q", role.Role)
	}

	err = engine.Registry.Handler.RegisterUserHandler(context.Background(), registrytransport.RegisterUserRequest{
		Account:     "alice",
		DisplayName: "Alice Again",
		Age:         26,
	})
	if !errors.Is(err, registryerrors.ErrAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}

	// The address is bound to the user class for good.
	err = engine.Registry.Handler.RegisterInstanceHandler(context.Background(), registrytransport.RegisterInstanceRequest{
		Account:      "alice",
		Organization: "Alice Org",
	})
	if !errors.Is(err, registryerrors.ErrRoleConflict) {
		t.Fatalf("expected role conflict, got %v", err)
	}
}

func TestRegistrationRejectsInvalidProfiles(t *testing.T) {
	engine := newEngine(t)

	cases := []registrytransport.RegisterUserRequest{
		{Account: "", DisplayName: "Nobody", Age: 30},
		{Account: "carol", DisplayName: "   ", Age: 30},
		{Account: "carol", DisplayName: "Carol", Age: 0},
	}
	for _, req := range cases {
		err := engine.Registry.Handler.RegisterUserHandler(context.Background(), req)
		if !errors.Is(err, registryerrors.ErrInvalidProfile) {
			t.Fatalf("expected invalid profile for %+v, got %v", req, err)
		}
	}

	err := engine.Registry.Handler.RegisterInstanceHandler(context.Background(), registrytransport.RegisterInstanceRequest{
		Account:      "lab",
		Organization: "  ",
	})
	if !errors.Is(err, registryerrors.ErrInvalidProfile) {
		t.Fatalf("expected invalid profile for blank organization, got %v", err)
	}

	if _, err := engine.Registry.Handler.AccountHandler(context.Background(), "carol"); !errors.Is(err, registryerrors.ErrNotRegistered) {
		t.Fatalf("expected not registered, got %v", err)
	}
}

func TestRoleAssignmentIsAdminGatedAndPermanent(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	if err := engine.Access.Handler.AssignRoleHandler(ctx, rootAdmin, accesstransport.AssignRoleRequest{
		Account: "relay-1",
		Role:    "distributor",
	}); err != nil {
		t.Fatalf("admin grant failed: %v", err)
	}

	// Re-granting the same role is a no-op.
	if err := engine.Access.Handler.AssignRoleHandler(ctx, rootAdmin, accesstransport.AssignRoleRequest{
		Account: "relay-1",
		Role:    "distributor",
	}); err != nil {
		t.Fatalf("idempotent re-grant failed: %v", err)
	}

	err := engine.Access.Handler.AssignRoleHandler(ctx, rootAdmin, accesstransport.AssignRoleRequest{
		Account: "relay-1",
		Role:    "user",
	})
	if !errors.Is(err, accesserrors.ErrRoleConflict) {
		t.Fatalf("expected role conflict on reassignment, got %v", err)
	}

	registerUser(t, engine, "mallory", 40, "belgium")
	err = engine.Access.Handler.AssignRoleHandler(ctx, "mallory", accesstransport.AssignRoleRequest{
		Account: "friend-1",
		Role:    "admin",
	})
	if !errors.Is(err, accesserrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for non-admin caller, got %v", err)
	}

	err = engine.Access.Handler.AssignRoleHandler(ctx, rootAdmin, accesstransport.AssignRoleRequest{
		Account: "relay-2",
		Role:    "superuser",
	})
	if !errors.Is(err, accesserrors.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}
