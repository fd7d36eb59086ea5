package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/candid-forum/candid/internal/domain"
)

func TestCreateAndGetAccount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustAccount(t, db, "alice", 25)

	acct, err := db.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	if acct.TokenBalance != 25 {
		t.Errorf("TokenBalance = %d, want 25", acct.TokenBalance)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAccount(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetAccount(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestCreateAccount_Duplicate(t *testing.T) {
	db := newTestDB(t)
	mustAccount(t, db, "alice", 0)

	err := db.CreateAccount(context.Background(), "alice", 0)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate CreateAccount error = %v, want ErrConflict", err)
	}
}

func TestSeedBalanceWritesLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustAccount(t, db, "alice", 100)

	entries, err := db.LedgerEntries(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("LedgerEntries() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.EntryType != domain.EntryCredit {
		t.Errorf("EntryType = %s, want CREDIT", e.EntryType)
	}
	if e.Reason != domain.TxSeed {
		t.Errorf("Reason = %s, want SEED", e.Reason)
	}
	if e.Amount != 100 || e.BalanceAfter != 100 {
		t.Errorf("Amount/BalanceAfter = %d/%d, want 100/100", e.Amount, e.BalanceAfter)
	}
}

func TestZeroSeedWritesNoLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	mustAccount(t, db, "bob", 0)

	entries, err := db.LedgerEntries(context.Background(), "bob", 10)
	if err != nil {
		t.Fatalf("LedgerEntries() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(entries))
	}
}
