package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/database"
	"finance-ledger/internal/logger"
	"finance-ledger/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "store.db"),
	}, logger.Discard())
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return New(db)
}

func strPtr(s string) *string { return &s }

func mustAccount(t *testing.T, s *Store, userID, name string) *models.Account {
	t.Helper()
	a := &models.Account{Name: name, UserID: userID}
	if err := s.Accounts.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func mustCategory(t *testing.T, s *Store, userID, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, UserID: userID}
	if err := s.Categories.Create(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func mustTransaction(t *testing.T, s *Store, accountID string, categoryID *string, amount int64, date time.Time) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{Amount: amount, Payee: "payee", Date: date, AccountID: accountID, CategoryID: categoryID}
	if err := s.Transactions.Create(context.Background(), tx); err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestRepo_CreateAssignsID(t *testing.T) {
	s := newTestStore(t)
	a := mustAccount(t, s, "u1", "Cash")
	if a.ID == "" {
		t.Fatal("id not generated")
	}
	b := mustAccount(t, s, "u1", "Bank")
	if a.ID == b.ID {
		t.Fatal("ids collide")
	}
}

func TestRepo_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := mustAccount(t, s, "u1", "Cash")
	cat := mustCategory(t, s, "u1", "Food")
	w := &models.Wallet{UserID: "u1", WalletAddress: "0xab0123456789abcdef0123456789abcdef012345"}
	if err := s.Wallets.Create(ctx, w); err != nil {
		t.Fatal(err)
	}
	tx := mustTransaction(t, s, acc.ID, &cat.ID, -500, time.Now())

	if _, err := s.Accounts.Get(ctx, "u2", acc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("account get as other user: %v", err)
	}
	if _, err := s.Categories.Update(ctx, "u2", cat.ID, map[string]any{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("category update as other user: %v", err)
	}
	if err := s.Wallets.Delete(ctx, "u2", w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("wallet delete as other user: %v", err)
	}
	if _, err := s.Transactions.Get(ctx, "u2", tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("transaction get as other user: %v", err)
	}
	if err := s.Transactions.Delete(ctx, "u2", tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("transaction delete as other user: %v", err)
	}

	list, err := s.Accounts.List(ctx, "u2")
	if err != nil || len(list) != 0 {
		t.Errorf("u2 sees %d accounts, err %v", len(list), err)
	}

	// owner still sees everything untouched
	got, err := s.Categories.Get(ctx, "u1", cat.ID)
	if err != nil || got.Name != "Food" {
		t.Errorf("owner category: %+v, %v", got, err)
	}
	if _, err := s.Transactions.Get(ctx, "u1", tx.ID); err != nil {
		t.Errorf("owner transaction: %v", err)
	}
}

func TestRepo_UpdateNeverChangesOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acc := mustAccount(t, s, "u1", "Cash")

	got, err := s.Accounts.Update(ctx, "u1", acc.ID, map[string]any{"name": "Wallet"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Wallet" || got.UserID != "u1" {
		t.Errorf("unexpected row %+v", got)
	}
}

func TestWallets_DuplicateAddress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	addr := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	if err := s.Wallets.Create(ctx, &models.Wallet{UserID: "u1", WalletAddress: addr}); err != nil {
		t.Fatal(err)
	}
	err := s.Wallets.Create(ctx, &models.Wallet{UserID: "u1", WalletAddress: addr})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second insert: %v", err)
	}
	// another user may track the same address
	if err := s.Wallets.Create(ctx, &models.Wallet{UserID: "u2", WalletAddress: addr}); err != nil {
		t.Fatalf("other user: %v", err)
	}

	var n int64
	s.DB.Model(&models.Wallet{}).Where("user_id = ?", "u1").Count(&n)
	if n != 1 {
		t.Errorf("u1 has %d wallets", n)
	}
}

func TestRepo_BulkDeletePartial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a1 := mustAccount(t, s, "u1", "A")
	a2 := mustAccount(t, s, "u1", "B")
	other := mustAccount(t, s, "u2", "C")

	deleted, err := s.Accounts.BulkDelete(ctx, "u1", []string{a1.ID, other.ID, "missing", a2.ID})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(deleted)
	want := []string{a1.ID, a2.ID}
	sort.Strings(want)
	if len(deleted) != 2 || deleted[0] != want[0] || deleted[1] != want[1] {
		t.Errorf("deleted = %v, want %v", deleted, want)
	}
	if _, err := s.Accounts.Get(ctx, "u2", other.ID); err != nil {
		t.Errorf("foreign row was touched: %v", err)
	}

	empty, err := s.Accounts.BulkDelete(ctx, "u1", nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty bulk delete: %v, %v", empty, err)
	}
}

func TestCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acc := mustAccount(t, s, "u1", "Cash")
	keep := mustAccount(t, s, "u1", "Bank")
	cat := mustCategory(t, s, "u1", "Food")
	onCash := mustTransaction(t, s, acc.ID, &cat.ID, -100, time.Now())
	onBank := mustTransaction(t, s, keep.ID, &cat.ID, -200, time.Now())
	w := &models.Wallet{UserID: "u1", WalletAddress: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", AccountID: &acc.ID}
	if err := s.Wallets.Create(ctx, w); err != nil {
		t.Fatal(err)
	}

	// deleting the account removes its transactions and wallets, not the category
	if err := s.Accounts.Delete(ctx, "u1", acc.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Transactions.Get(ctx, "u1", onCash.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("transaction survived account delete: %v", err)
	}
	if _, err := s.Wallets.Get(ctx, "u1", w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("wallet survived account delete: %v", err)
	}
	if _, err := s.Categories.Get(ctx, "u1", cat.ID); err != nil {
		t.Errorf("category removed with account: %v", err)
	}
	got, err := s.Transactions.Get(ctx, "u1", onBank.ID)
	if err != nil || got.CategoryID == nil {
		t.Fatalf("unrelated transaction changed: %+v, %v", got, err)
	}

	// deleting the category only clears the reference
	if err := s.Categories.Delete(ctx, "u1", cat.ID); err != nil {
		t.Fatal(err)
	}
	got, err = s.Transactions.Get(ctx, "u1", onBank.ID)
	if err != nil {
		t.Fatalf("transaction removed with category: %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("categoryId = %v, want nil", *got.CategoryID)
	}
}

func TestDeleteWallets_KeepsLinkedAccounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := &models.Wallet{UserID: "u1", WalletAddress: "0xcccccccccccccccccccccccccccccccccccccccc"}
	if err := s.Wallets.Create(ctx, w); err != nil {
		t.Fatal(err)
	}
	acc := &models.Account{Name: "Crypto", UserID: "u1", WalletID: &w.ID}
	if err := s.Accounts.Create(ctx, acc); err != nil {
		t.Fatal(err)
	}
	tx := mustTransaction(t, s, acc.ID, nil, -50, time.Now())

	// another user cannot remove the wallet
	ids, err := s.DeleteWallets(ctx, "u2", []string{w.ID})
	if err != nil || len(ids) != 0 {
		t.Fatalf("foreign delete = %v, %v", ids, err)
	}

	ids, err = s.DeleteWallets(ctx, "u1", []string{w.ID, "missing"})
	if err != nil || len(ids) != 1 || ids[0] != w.ID {
		t.Fatalf("delete = %v, %v", ids, err)
	}
	if _, err := s.Wallets.Get(ctx, "u1", w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("wallet still present: %v", err)
	}
	got, err := s.Accounts.Get(ctx, "u1", acc.ID)
	if err != nil {
		t.Fatalf("account removed with wallet: %v", err)
	}
	if got.WalletID != nil {
		t.Errorf("walletId = %q, want nil", *got.WalletID)
	}
	if _, err := s.Transactions.Get(ctx, "u1", tx.ID); err != nil {
		t.Errorf("transaction removed with wallet: %v", err)
	}
}

func TestCheckWallet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := &models.Wallet{UserID: "u2", WalletAddress: "0xdddddddddddddddddddddddddddddddddddddddd"}
	if err := s.Wallets.Create(ctx, w); err != nil {
		t.Fatal(err)
	}

	if err := s.CheckWallet(ctx, "u2", &w.ID); err != nil {
		t.Errorf("own wallet: %v", err)
	}
	if err := s.CheckWallet(ctx, "u1", nil); err != nil {
		t.Errorf("no wallet: %v", err)
	}
	var refErr *ReferenceError
	if err := s.CheckWallet(ctx, "u1", &w.ID); !errors.As(err, &refErr) || refErr.Field != "walletId" {
		t.Errorf("foreign wallet: %v", err)
	}
}

func TestListTransactions_FiltersAndNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cash := mustAccount(t, s, "u1", "Cash")
	bank := mustAccount(t, s, "u1", "Bank")
	food := mustCategory(t, s, "u1", "Food")
	foreign := mustAccount(t, s, "u2", "Theirs")

	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	mustTransaction(t, s, cash.ID, &food.ID, -100, day(1))
	mustTransaction(t, s, bank.ID, nil, 5000, day(10))
	mustTransaction(t, s, cash.ID, nil, -50, day(20))
	mustTransaction(t, s, foreign.ID, nil, 1, day(10))

	all, err := s.ListTransactions(ctx, "u1", TransactionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d rows", len(all))
	}
	if !all[0].Date.Equal(day(20)) || !all[2].Date.Equal(day(1)) {
		t.Errorf("not newest first: %v, %v", all[0].Date, all[2].Date)
	}
	if all[2].Category == nil || *all[2].Category != "Food" || all[2].Account != "Cash" {
		t.Errorf("names not joined: %+v", all[2])
	}
	if all[1].Category != nil {
		t.Errorf("uncategorized row has category %q", *all[1].Category)
	}

	ranged, err := s.ListTransactions(ctx, "u1", TransactionFilter{From: day(5), To: day(15)})
	if err != nil || len(ranged) != 1 || ranged[0].Amount != 5000 {
		t.Errorf("range filter: %+v, %v", ranged, err)
	}

	byAccount, err := s.ListTransactions(ctx, "u1", TransactionFilter{AccountID: cash.ID})
	if err != nil || len(byAccount) != 2 {
		t.Errorf("account filter: %d rows, %v", len(byAccount), err)
	}
}

func TestCheckReferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mine := mustAccount(t, s, "u1", "Cash")
	theirs := mustAccount(t, s, "u2", "Other")
	theirCat := mustCategory(t, s, "u2", "Food")

	if err := s.CheckReferences(ctx, "u1", mine.ID, nil); err != nil {
		t.Errorf("own account: %v", err)
	}

	err := s.CheckReferences(ctx, "u1", theirs.ID, nil)
	var refErr *ReferenceError
	if !errors.As(err, &refErr) || refErr.Field != "accountId" || !errors.Is(err, ErrInvalidReference) {
		t.Errorf("foreign account: %v", err)
	}

	err = s.CheckReferences(ctx, "u1", mine.ID, strPtr(theirCat.ID))
	if !errors.As(err, &refErr) || refErr.Field != "categoryId" {
		t.Errorf("foreign category: %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acc := mustAccount(t, s, "u1", "Cash")
	cat := mustCategory(t, s, "u1", "Food")
	mustTransaction(t, s, acc.ID, &cat.ID, -300, time.Now())
	other := mustAccount(t, s, "u2", "Untouched")

	snap, err := s.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Accounts) != 1 || len(snap.Transactions) != 1 {
		t.Fatalf("snapshot: %+v", snap)
	}

	// changes after the snapshot are discarded by the restore
	mustAccount(t, s, "u1", "Later")
	if err := s.Categories.Delete(ctx, "u1", cat.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.Restore(ctx, "u1", snap); err != nil {
		t.Fatal(err)
	}
	accounts, _ := s.Accounts.List(ctx, "u1")
	if len(accounts) != 1 || accounts[0].ID != acc.ID {
		t.Errorf("accounts after restore: %+v", accounts)
	}
	txs, _ := s.Transactions.List(ctx, "u1")
	if len(txs) != 1 || txs[0].CategoryID == nil || *txs[0].CategoryID != cat.ID {
		t.Errorf("transactions after restore: %+v", txs)
	}
	if _, err := s.Accounts.Get(ctx, "u2", other.ID); err != nil {
		t.Errorf("other user's data touched: %v", err)
	}
}

func TestRestore_RejectsDanglingReference(t *testing.T) {
	s := newTestStore(t)
	snap := &Snapshot{
		Transactions: []models.Transaction{{ID: "t1", AccountID: "nowhere", Payee: "x", Date: time.Now()}},
	}
	err := s.Restore(context.Background(), "u1", snap)
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("err = %v", err)
	}

	snap = &Snapshot{
		Accounts: []models.Account{{ID: "a1", Name: "Cash", WalletID: strPtr("someone-elses")}},
	}
	var refErr *ReferenceError
	if err := s.Restore(context.Background(), "u1", snap); !errors.As(err, &refErr) || refErr.Field != "accounts.walletId" {
		t.Errorf("dangling walletId: %v", err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := &models.User{Username: "Alice", PasswordHash: "h"}
	if err := s.Users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := s.Users.Create(ctx, &models.User{Username: "alice", PasswordHash: "h"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("case-insensitive duplicate: %v", err)
	}
	found, err := s.Users.FindByUsername(ctx, "ALICE")
	if err != nil || found.ID != u.ID {
		t.Errorf("find: %+v, %v", found, err)
	}

	sess, err := s.Users.CreateSession(ctx, u.ID, time.Now().Add(time.Hour))
	if err != nil || sess.ID == "" {
		t.Fatalf("session: %+v, %v", sess, err)
	}
	if err := s.Users.RevokeAllSessions(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	var revoked models.Session
	s.DB.First(&revoked, "id = ?", sess.ID)
	if !revoked.Revoked {
		t.Error("session not revoked")
	}
}
