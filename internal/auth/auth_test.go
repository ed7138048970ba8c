package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/session"
	"wallet-staking-go/internal/state"
	"wallet-staking-go/internal/store"
)

type denyAll struct{}

func (denyAll) Verify(_, _, _ string) bool { return false }

func testAuthenticator(v Verifier) (*Authenticator, *state.StateStore) {
	s := state.New(models.GlobalSettings{
		SessionTimeout:  24 * time.Hour,
		AuthSkew:        5 * time.Minute,
		StartingBalance: decimal.NewFromInt(25000),
	})
	return NewAuthenticator(v, session.NewManager(s), s), s
}

func TestAuthenticate_NewUser(t *testing.T) {
	a, s := testAuthenticator(AllowAll{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	result, err := a.Authenticate("0xabc", "sig", "login", now, now)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser for first authentication")
	}
	if result.Token == "" {
		t.Error("Expected a session token")
	}
	if !result.User.Balance.Primary.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("Expected starting balance 25000, got %s", result.User.Balance.Primary)
	}
	if s.Sessions[result.Token] == nil {
		t.Error("Session not registered")
	}
}

func TestAuthenticate_ExistingUserKeepsBalance(t *testing.T) {
	a, s := testAuthenticator(AllowAll{})
	now := time.Now()

	first, err := a.Authenticate("0xabc", "sig", "login", now, now)
	if err != nil {
		t.Fatal(err)
	}
	first.User.Balance.Primary = decimal.NewFromInt(123)

	second, err := a.Authenticate("0xabc", "sig", "login", now, now)
	if err != nil {
		t.Fatal(err)
	}
	if second.IsNewUser {
		t.Error("Existing wallet flagged as new user")
	}
	if !second.User.Balance.Primary.Equal(decimal.NewFromInt(123)) {
		t.Error("Re-authentication must not reseed the balance")
	}
	if len(s.Users) != 1 {
		t.Errorf("Expected 1 user record, got %d", len(s.Users))
	}
}

func TestAuthenticate_InvalidSignatureMutatesNothing(t *testing.T) {
	a, s := testAuthenticator(denyAll{})
	now := time.Now()

	_, err := a.Authenticate("0xabc", "bad", "login", now, now)
	if !errors.Is(err, store.ErrInvalidSignature) {
		t.Fatalf("Expected ErrInvalidSignature, got %v", err)
	}
	if len(s.Users) != 0 || len(s.Sessions) != 0 {
		t.Error("Failed authentication must not create users or sessions")
	}
}

func TestAuthenticate_StaleRequest(t *testing.T) {
	a, s := testAuthenticator(AllowAll{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []time.Time{
		now.Add(-6 * time.Minute), // too old
		now.Add(6 * time.Minute),  // too far in the future
	}
	for _, ts := range cases {
		_, err := a.Authenticate("0xabc", "sig", "login", ts, now)
		if !errors.Is(err, store.ErrStaleRequest) {
			t.Errorf("timestamp %v: expected ErrStaleRequest, got %v", ts, err)
		}
	}
	if len(s.Users) != 0 {
		t.Error("Stale request must not create users")
	}

	// Inside the window both directions.
	for _, ts := range []time.Time{now.Add(-4 * time.Minute), now.Add(4 * time.Minute)} {
		if _, err := a.Authenticate("0xabc", "sig", "login", ts, now); err != nil {
			t.Errorf("timestamp %v: expected success, got %v", ts, err)
		}
	}
}
