package store

import (
	"testing"

	"github.com/quicktradepro/quicktrade/internal/database"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *AccountStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewAccountStore(db)
}

func TestSessionCreateAndGet(t *testing.T) {
	ss, as := setupSessionTestDB(t)
	a, err := as.Create(testAccount("acc-1", "alice@example.com"))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	sess, err := ss.Create(a.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.AccountID != a.ID {
		t.Fatalf("got %+v, want session for %s", got, a.ID)
	}
}

func TestSessionGetUnknownToken(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	got, err := ss.GetByToken("nope")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, as := setupSessionTestDB(t)
	a, err := as.Create(testAccount("acc-1", "alice@example.com"))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	sess, err := ss.Create(a.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteByAccountID(t *testing.T) {
	ss, as := setupSessionTestDB(t)
	a, err := as.Create(testAccount("acc-1", "alice@example.com"))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	s1, err := ss.Create(a.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	s2, err := ss.Create(a.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.DeleteByAccountID(a.ID); err != nil {
		t.Fatalf("delete by account: %v", err)
	}

	for _, tok := range []string{s1.Token, s2.Token} {
		got, err := ss.GetByToken(tok)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != nil {
			t.Error("expected all account sessions gone")
		}
	}
}
