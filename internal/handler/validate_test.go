package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quicktradepro/quicktrade/internal/cache"
	"github.com/quicktradepro/quicktrade/internal/database"
	"github.com/quicktradepro/quicktrade/internal/licensing"
	"github.com/quicktradepro/quicktrade/internal/model"
	"github.com/quicktradepro/quicktrade/internal/store"
)

func newValidateFixture(t *testing.T) (*ValidateHandler, *licensing.Service) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c, err := cache.Open("")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	now := time.Now().UTC()
	if _, err := store.NewAccountStore(db).Create(&model.Account{
		ID:         "acc-1",
		Email:      "alice@example.com",
		SecretHash: "$2a$10$fakehash",
		MentorID:   123456,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := licensing.New(store.NewLicenseStore(db), store.NewEAStore(db), c, logger)
	return NewValidateHandler(svc), svc
}

func postValidate(t *testing.T, h *ValidateHandler, key string) validateResponse {
	t.Helper()
	body := strings.NewReader(`{"key":` + jsonString(key) + `}`)
	req := httptest.NewRequest(http.MethodPost, "/api/license/validate", body)
	rec := httptest.NewRecorder()

	h.Validate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp validateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestValidateMalformedKey(t *testing.T) {
	h, _ := newValidateFixture(t)

	for _, key := range []string{"", "abcd-efgh-ijkl-mnop", "AAAA-BBBB-CCCC", "AAAA_BBBB_CCCC_DDDD"} {
		resp := postValidate(t, h, key)
		if resp.Valid || resp.Reason != "malformed" {
			t.Errorf("key %q: got %+v, want malformed rejection", key, resp)
		}
	}
}

func TestValidateUnknownKey(t *testing.T) {
	h, _ := newValidateFixture(t)

	resp := postValidate(t, h, "ZZZZ-ZZZZ-ZZZZ-ZZZZ")
	if resp.Valid || resp.Reason != "not_found" {
		t.Errorf("got %+v, want not_found", resp)
	}
}

func TestValidateActiveKey(t *testing.T) {
	h, svc := newValidateFixture(t)
	ctx := context.Background()

	ea, err := svc.CreateEA(ctx, "acc-1", "GoldSniper")
	if err != nil {
		t.Fatalf("create ea: %v", err)
	}
	lic, err := svc.IssueLicense(ctx, "acc-1", "trader1", ea.ID, model.Plan30Days)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resp := postValidate(t, h, lic.Key)
	if !resp.Valid {
		t.Fatalf("got %+v, want valid", resp)
	}
	if resp.Plan != "30days" || resp.EAName != "GoldSniper" {
		t.Errorf("plan/ea = %q/%q, want 30days/GoldSniper", resp.Plan, resp.EAName)
	}
	if resp.ExpiresAt == nil {
		t.Fatal("expected an expires_at timestamp")
	}
	if _, err := time.Parse(time.RFC3339, *resp.ExpiresAt); err != nil {
		t.Errorf("expires_at %q is not RFC3339: %v", *resp.ExpiresAt, err)
	}
}

func TestValidateInactiveKey(t *testing.T) {
	h, svc := newValidateFixture(t)
	ctx := context.Background()

	ea, err := svc.CreateEA(ctx, "acc-1", "GoldSniper")
	if err != nil {
		t.Fatalf("create ea: %v", err)
	}
	lic, err := svc.IssueLicense(ctx, "acc-1", "trader1", ea.ID, model.Plan30Days)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.DeactivateLicense(ctx, "acc-1", lic.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	resp := postValidate(t, h, lic.Key)
	if resp.Valid || resp.Reason != "inactive" {
		t.Errorf("got %+v, want inactive", resp)
	}
}
