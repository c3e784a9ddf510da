package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quicktradepro/quicktrade/internal/model"
)

func testLicense(id, accountID string) *model.License {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	return &model.License{
		ID:        id,
		AccountID: accountID,
		Key:       "AAAA-BBBB-CCCC-" + id,
		Assignee:  "trader1",
		EAID:      "ea-1",
		EAName:    "GoldSniper",
		Plan:      model.Plan30Days,
		Status:    model.LicenseActive,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, 30),
		UpdatedAt: now,
	}
}

func TestCacheLicenseRoundTrip(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	want := testLicense("1111", "acc-1")
	if err := c.PutLicense(want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.LicenseByID("acc-1", "1111")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a license back")
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at lost in round trip")
	}

	byKey, err := c.LicenseByKey(want.Key)
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if byKey == nil || byKey.ID != "1111" {
		t.Fatalf("got %+v, want license 1111", byKey)
	}
}

func TestCachePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if err := c.PutLicense(testLicense("1111", "acc-1")); err != nil {
		t.Fatalf("put license: %v", err)
	}
	if err := c.PutEA(&model.EA{ID: "ea-1", AccountID: "acc-1", Name: "GoldSniper", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("put ea: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}

	lic, err := reopened.LicenseByID("acc-1", "1111")
	if err != nil {
		t.Fatalf("get license: %v", err)
	}
	if lic == nil {
		t.Fatal("license did not survive reopen")
	}
	if lic.ExpiresAt.IsZero() || lic.CreatedAt.IsZero() {
		t.Error("timestamps not rehydrated after reopen")
	}

	ea, err := reopened.EAByID("acc-1", "ea-1")
	if err != nil {
		t.Fatalf("get ea: %v", err)
	}
	if ea == nil || ea.Name != "GoldSniper" {
		t.Fatalf("got %+v, want GoldSniper", ea)
	}
}

func TestCacheAccountByEmailCaseInsensitive(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	now := time.Now().UTC()
	if err := c.PutAccount(&model.Account{
		ID:         "acc-1",
		Email:      "alice@example.com",
		SecretHash: "$2a$10$fakehash",
		MentorID:   123456,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("put account: %v", err)
	}

	got, err := c.AccountByEmail("Alice@Example.COM")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != "acc-1" {
		t.Fatalf("got %+v, want acc-1", got)
	}
}

func TestCacheDeletes(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	if err := c.PutLicense(testLicense("1111", "acc-1")); err != nil {
		t.Fatalf("put license: %v", err)
	}
	if err := c.PutEA(&model.EA{ID: "ea-1", AccountID: "acc-1", Name: "GoldSniper", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("put ea: %v", err)
	}

	ok, err := c.DeleteLicense("acc-1", "1111")
	if err != nil || !ok {
		t.Fatalf("delete license = %v, %v; want true, nil", ok, err)
	}
	ok, err = c.DeleteLicense("acc-1", "1111")
	if err != nil {
		t.Fatalf("delete license again: %v", err)
	}
	if ok {
		t.Error("expected false on second delete")
	}

	ok, err = c.DeleteEA("acc-1", "ea-1")
	if err != nil || !ok {
		t.Fatalf("delete ea = %v, %v; want true, nil", ok, err)
	}
}

func TestCacheListsScopedToAccount(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	if err := c.PutLicense(testLicense("1111", "acc-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.PutLicense(testLicense("2222", "acc-2")); err != nil {
		t.Fatalf("put: %v", err)
	}

	mine, err := c.LicensesByAccount("acc-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "1111" {
		t.Fatalf("got %d licenses, want only acc-1's", len(mine))
	}

	byEA, err := c.LicensesByEA("acc-1", "ea-1")
	if err != nil {
		t.Fatalf("list by ea: %v", err)
	}
	if len(byEA) != 1 {
		t.Fatalf("got %d licenses by EA, want 1", len(byEA))
	}
}
