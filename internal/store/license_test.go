package store

import (
	"testing"
	"time"

	"github.com/quicktradepro/quicktrade/internal/database"
	"github.com/quicktradepro/quicktrade/internal/model"
)

func setupLicenseTestDB(t *testing.T) (*LicenseStore, *EAStore, *AccountStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLicenseStore(db), NewEAStore(db), NewAccountStore(db)
}

func seedAccountAndEA(t *testing.T, as *AccountStore, es *EAStore) (*model.Account, *model.EA) {
	t.Helper()
	a, err := as.Create(testAccount("acc-1", "alice@example.com"))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	ea, err := es.Create(&model.EA{
		ID:        "ea-1",
		AccountID: a.ID,
		Name:      "GoldSniper",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create ea: %v", err)
	}
	return a, ea
}

func testLicense(id, accountID, eaID, key, status string) *model.License {
	now := time.Now().UTC()
	return &model.License{
		ID:        id,
		AccountID: accountID,
		Key:       key,
		Assignee:  "trader1",
		EAID:      eaID,
		EAName:    "GoldSniper",
		Plan:      model.Plan30Days,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, 30),
		UpdatedAt: now,
	}
}

func TestLicenseCreateAndGet(t *testing.T) {
	ls, es, as := setupLicenseTestDB(t)
	a, ea := seedAccountAndEA(t, as, es)

	created, err := ls.Create(testLicense("lic-1", a.ID, ea.ID, "AAAA-BBBB-CCCC-1111", model.LicenseActive))
	if err != nil {
		t.Fatalf("create license: %v", err)
	}
	if created.EAName != "GoldSniper" {
		t.Errorf("ea name snapshot = %q, want GoldSniper", created.EAName)
	}

	got, err := ls.Get(a.ID, "lic-1")
	if err != nil {
		t.Fatalf("get license: %v", err)
	}
	if got == nil || got.Key != "AAAA-BBBB-CCCC-1111" {
		t.Fatalf("got %+v, want key AAAA-BBBB-CCCC-1111", got)
	}
}

func TestLicenseGetScopedToAccount(t *testing.T) {
	ls, es, as := setupLicenseTestDB(t)
	a, ea := seedAccountAndEA(t, as, es)

	if _, err := ls.Create(testLicense("lic-1", a.ID, ea.ID, "AAAA-BBBB-CCCC-1111", model.LicenseActive)); err != nil {
		t.Fatalf("create license: %v", err)
	}

	got, err := ls.Get("someone-else", "lic-1")
	if err != nil {
		t.Fatalf("get license: %v", err)
	}
	if got != nil {
		t.Error("expected nil when reading another account's license")
	}
}

func TestLicenseGetByKey(t *testing.T) {
	ls, es, as := setupLicenseTestDB(t)
	a, ea := seedAccountAndEA(t, as, es)

	if _, err := ls.Create(testLicense("lic-1", a.ID, ea.ID, "AAAA-BBBB-CCCC-1111", model.LicenseActive)); err != nil {
		t.Fatalf("create license: %v", err)
	}

	got, err := ls.GetByKey("AAAA-BBBB-CCCC-1111")
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if got == nil || got.ID != "lic-1" {
		t.Fatalf("got %+v, want lic-1", got)
	}

	missing, err := ls.GetByKey("ZZZZ-ZZZZ-ZZZZ-ZZZZ")
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown key")
	}
}

func TestLicenseCounts(t *testing.T) {
	ls, es, as := setupLicenseTestDB(t)
	a, ea := seedAccountAndEA(t, as, es)

	if _, err := ls.Create(testLicense("lic-1", a.ID, ea.ID, "AAAA-BBBB-CCCC-1111", model.LicenseActive)); err != nil {
		t.Fatalf("create license: %v", err)
	}
	if _, err := ls.Create(testLicense("lic-2", a.ID, ea.ID, "AAAA-BBBB-CCCC-2222", model.LicenseInactive)); err != nil {
		t.Fatalf("create license: %v", err)
	}

	total, err := ls.CountByAccount(a.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	active, err := ls.CountActiveByAccount(a.ID)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if active != 1 {
		t.Errorf("active = %d, want 1", active)
	}

	byEA, err := ls.CountByEA(a.ID, ea.ID)
	if err != nil {
		t.Fatalf("count by ea: %v", err)
	}
	if byEA != 2 {
		t.Errorf("by ea = %d, want 2 (inactive keys count too)", byEA)
	}
}

func TestLicenseDeactivate(t *testing.T) {
	ls, es, as := setupLicenseTestDB(t)
	a, ea := seedAccountAndEA(t, as, es)

	if _, err := ls.Create(testLicense("lic-1", a.ID, ea.ID, "AAAA-BBBB-CCCC-1111", model.LicenseActive)); err != nil {
		t.Fatalf("create license: %v", err)
	}

	changed, err := ls.Deactivate(a.ID, "lic-1")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if !changed {
		t.Error("expected a row change on deactivate")
	}

	got, _ := ls.Get(a.ID, "lic-1")
	if got.Status != model.LicenseInactive {
		t.Errorf("status = %q, want inactive", got.Status)
	}

	changed, err = ls.Deactivate(a.ID, "missing")
	if err != nil {
		t.Fatalf("deactivate missing: %v", err)
	}
	if changed {
		t.Error("expected no row change for missing license")
	}
}

func TestLicenseDelete(t *testing.T) {
	ls, es, as := setupLicenseTestDB(t)
	a, ea := seedAccountAndEA(t, as, es)

	if _, err := ls.Create(testLicense("lic-1", a.ID, ea.ID, "AAAA-BBBB-CCCC-1111", model.LicenseActive)); err != nil {
		t.Fatalf("create license: %v", err)
	}

	deleted, err := ls.Delete(a.ID, "lic-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}

	got, err := ls.Get(a.ID, "lic-1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
