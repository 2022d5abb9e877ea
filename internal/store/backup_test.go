package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mvoronin/payment-system/internal/config"
	"github.com/mvoronin/payment-system/internal/model"
)

func testAccount() *model.Account {
	return &model.Account{
		Number:         "12345678",
		Balance:        decimal.RequireFromString("800.00"),
		Status:         model.AccountStatusLive,
		AllowedSchemes: model.NewSchemeSet(model.SchemeBacs, model.SchemeFasterPayments),
	}
}

func TestBackupStore_GetUpdate(t *testing.T) {
	s, err := NewBackupStore("")
	if err != nil {
		t.Fatalf("NewBackupStore error: %v", err)
	}

	ctx := context.Background()

	if _, err := s.GetAccount(ctx, "12345678"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if err := s.UpdateAccount(ctx, testAccount()); err != nil {
		t.Fatalf("UpdateAccount error: %v", err)
	}

	acc, err := s.GetAccount(ctx, "12345678")
	if err != nil {
		t.Fatalf("GetAccount error: %v", err)
	}
	if !acc.Balance.Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("balance = %s, want 800.00", acc.Balance)
	}
	if !acc.AllowedSchemes.Contains(model.SchemeFasterPayments) {
		t.Fatalf("allowed schemes lost: %v", acc.AllowedSchemes)
	}
}

func TestBackupStore_UpdateVisibleImmediately(t *testing.T) {
	s, err := NewBackupStore("")
	if err != nil {
		t.Fatalf("NewBackupStore error: %v", err)
	}

	ctx := context.Background()

	acc := testAccount()
	if err := s.UpdateAccount(ctx, acc); err != nil {
		t.Fatalf("UpdateAccount error: %v", err)
	}

	acc.Balance = decimal.RequireFromString("600.00")
	if err := s.UpdateAccount(ctx, acc); err != nil {
		t.Fatalf("UpdateAccount error: %v", err)
	}

	got, err := s.GetAccount(ctx, acc.Number)
	if err != nil {
		t.Fatalf("GetAccount error: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("600.00")) {
		t.Fatalf("balance = %s, want 600.00", got.Balance)
	}
}

func TestBackupStore_ReturnsCopy(t *testing.T) {
	s, err := NewBackupStore("")
	if err != nil {
		t.Fatalf("NewBackupStore error: %v", err)
	}

	ctx := context.Background()

	if err := s.UpdateAccount(ctx, testAccount()); err != nil {
		t.Fatalf("UpdateAccount error: %v", err)
	}

	first, _ := s.GetAccount(ctx, "12345678")
	first.Balance = decimal.RequireFromString("0")
	delete(first.AllowedSchemes, model.SchemeBacs)

	second, _ := s.GetAccount(ctx, "12345678")
	if !second.Balance.Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("stored balance mutated through returned pointer")
	}
	if !second.AllowedSchemes.Contains(model.SchemeBacs) {
		t.Fatalf("stored scheme set mutated through returned pointer")
	}
}

func TestBackupStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")

	ctx := context.Background()

	s, err := NewBackupStore(path)
	if err != nil {
		t.Fatalf("NewBackupStore error: %v", err)
	}

	acc := testAccount()
	acc.Balance = decimal.RequireFromString("-12.34")
	acc.Status = model.AccountStatusInboundPaymentsOnly
	if err := s.UpdateAccount(ctx, acc); err != nil {
		t.Fatalf("UpdateAccount error: %v", err)
	}

	reopened, err := NewBackupStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}

	got, err := reopened.GetAccount(ctx, acc.Number)
	if err != nil {
		t.Fatalf("GetAccount after reopen error: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("-12.34")) {
		t.Fatalf("balance = %s, want -12.34", got.Balance)
	}
	if got.Status != model.AccountStatusInboundPaymentsOnly {
		t.Fatalf("status = %s, want INBOUND_PAYMENTS_ONLY", got.Status)
	}
	if !got.AllowedSchemes.Contains(model.SchemeBacs) || !got.AllowedSchemes.Contains(model.SchemeFasterPayments) {
		t.Fatalf("allowed schemes lost in snapshot: %v", got.AllowedSchemes)
	}
}

func TestBackupStore_MissingSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	s, err := NewBackupStore(path)
	if err != nil {
		t.Fatalf("missing snapshot file must not be an error, got %v", err)
	}

	if _, err := s.GetAccount(context.Background(), "12345678"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestNew_SelectsBackupStore(t *testing.T) {
	cfg := &config.Config{DataStoreType: BackupStoreType}

	st, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, ok := st.(*BackupStore); !ok {
		t.Fatalf("store type = %T, want *BackupStore", st)
	}
}

func TestNew_BackupSelectionIsExact(t *testing.T) {
	// Любое значение, кроме "Backup", выбирает основное хранилище.
	cfg := &config.Config{DataStoreType: "backup", DatabaseURI: "://bad-dsn"}

	if _, err := New(cfg); err == nil {
		t.Fatalf("expected primary store construction to fail on bad DSN")
	}
}
