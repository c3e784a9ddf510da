// Package licensing owns the EA and license lifecycle for one account at a
// time: issuance, deactivation, deletion, the referential guard on EA
// deletion, and the dashboard stats fold.
//
// Every operation is written and read through two persistence tiers. The
// primary SQLite store is tried first, behind a short retry; if it fails for
// any reason the operation falls through to the local cache and still
// reports success. Reads answer from whichever tier responds first, and the
// tiers are never reconciled afterwards, so a record written under a
// primary outage is only visible on the cache path until the file is
// rebuilt. Callers see ErrStoreUnavailable only when both tiers fail.
package licensing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/cache"
	"github.com/quicktradepro/quicktrade/internal/licensekey"
	"github.com/quicktradepro/quicktrade/internal/model"
	"github.com/quicktradepro/quicktrade/internal/store"
)

const (
	primaryAttempts = 2
	primaryBackoff  = 50 * time.Millisecond
)

type Service struct {
	licenses    *store.LicenseStore
	eas         *store.EAStore
	cache       *cache.Cache
	logger      *slog.Logger
	maxLicenses int
}

type Option func(*Service)

// WithMaxLicenses overrides the per-account license ceiling.
func WithMaxLicenses(n int) Option {
	return func(s *Service) {
		s.maxLicenses = n
	}
}

func New(licenses *store.LicenseStore, eas *store.EAStore, c *cache.Cache, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		licenses:    licenses,
		eas:         eas,
		cache:       c,
		logger:      logger,
		maxLicenses: model.MaxLicenses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// primary runs fn against the primary store with a constant-backoff retry.
// A non-nil return means the primary tier is considered failed for this
// operation and the caller falls through to the cache.
func (s *Service) primary(ctx context.Context, op string, fn func() error) error {
	b := retry.WithMaxRetries(primaryAttempts, retry.NewConstant(primaryBackoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := fn(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("primary store failed, using local cache", "op", op, "error", err)
	}
	return err
}

// CreateEA registers a new EA under the account. The name is immutable once
// created; there is no rename path.
func (s *Service) CreateEA(ctx context.Context, accountID, name string) (*model.EA, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: ea name is required", apperr.ErrValidation)
	}

	ea := &model.EA{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := s.primary(ctx, "create_ea", func() error {
		_, err := s.eas.Create(ea)
		return err
	})
	if err != nil {
		if cerr := s.cache.PutEA(ea); cerr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
	}
	return ea, nil
}

func (s *Service) ListEAs(ctx context.Context, accountID string) ([]*model.EA, error) {
	var eas []*model.EA
	err := s.primary(ctx, "list_eas", func() error {
		var err error
		eas, err = s.eas.ListByAccount(accountID)
		return err
	})
	if err != nil {
		eas, err = s.cache.EAsByAccount(accountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return eas, nil
}

func (s *Service) getEA(ctx context.Context, accountID, eaID string) (*model.EA, error) {
	var ea *model.EA
	err := s.primary(ctx, "get_ea", func() error {
		var err error
		ea, err = s.eas.Get(accountID, eaID)
		return err
	})
	if err != nil {
		ea, err = s.cache.EAByID(accountID, eaID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return ea, nil
}

// DeleteEA removes an EA. Deletion is refused while any license, active or
// inactive, still references the EA.
func (s *Service) DeleteEA(ctx context.Context, accountID, eaID string) (bool, error) {
	refs, err := s.countLicensesByEA(ctx, accountID, eaID)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		return false, fmt.Errorf("%w: %d license key(s) reference this ea", apperr.ErrReferentialIntegrity, refs)
	}

	var deleted bool
	err = s.primary(ctx, "delete_ea", func() error {
		var err error
		deleted, err = s.eas.Delete(accountID, eaID)
		return err
	})
	if err != nil {
		deleted, err = s.cache.DeleteEA(accountID, eaID)
		if err != nil {
			return false, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return deleted, nil
}

func (s *Service) countLicensesByEA(ctx context.Context, accountID, eaID string) (int, error) {
	var n int
	err := s.primary(ctx, "count_licenses_by_ea", func() error {
		var err error
		n, err = s.licenses.CountByEA(accountID, eaID)
		return err
	})
	if err != nil {
		licenses, cerr := s.cache.LicensesByEA(accountID, eaID)
		if cerr != nil {
			return 0, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
		n = len(licenses)
	}
	return n, nil
}

// IssueLicense cuts a new key for an EA the account owns. The EA name is
// copied onto the license at issuance and deliberately never re-synced.
func (s *Service) IssueLicense(ctx context.Context, accountID, assignee, eaID string, plan model.Plan) (*model.License, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignee username is required", apperr.ErrValidation)
	}

	ea, err := s.getEA(ctx, accountID, eaID)
	if err != nil {
		return nil, err
	}
	if ea == nil {
		return nil, fmt.Errorf("%w: ea %s", apperr.ErrNotFound, eaID)
	}

	count, err := s.countLicenses(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if count >= s.maxLicenses {
		return nil, fmt.Errorf("%w: %d of %d keys used", apperr.ErrCapacityExceeded, count, s.maxLicenses)
	}

	key, err := licensekey.Generate()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()
	expiresAt, err := licensekey.Expiry(plan, createdAt)
	if err != nil {
		return nil, err
	}

	license := &model.License{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Key:       key,
		Assignee:  assignee,
		EAID:      eaID,
		EAName:    ea.Name,
		Plan:      plan,
		Status:    model.LicenseActive,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		UpdatedAt: createdAt,
	}

	err = s.primary(ctx, "issue_license", func() error {
		_, err := s.licenses.Create(license)
		return err
	})
	if err != nil {
		if cerr := s.cache.PutLicense(license); cerr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
	}
	return license, nil
}

func (s *Service) ListLicenses(ctx context.Context, accountID string) ([]*model.License, error) {
	var licenses []*model.License
	err := s.primary(ctx, "list_licenses", func() error {
		var err error
		licenses, err = s.licenses.ListByAccount(accountID)
		return err
	})
	if err != nil {
		licenses, err = s.cache.LicensesByAccount(accountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return licenses, nil
}

// LookupKey resolves a license by key text for the public validation
// endpoint. No account scope: keys are presented bare by the EA plugin.
func (s *Service) LookupKey(ctx context.Context, key string) (*model.License, error) {
	var license *model.License
	err := s.primary(ctx, "lookup_key", func() error {
		var err error
		license, err = s.licenses.GetByKey(key)
		return err
	})
	if err != nil {
		license, err = s.cache.LicenseByKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return license, nil
}

// DeactivateLicense marks a key inactive. Deactivation is terminal; there
// is no inactive -> active transition. Deactivating an already-inactive key
// reports true, a missing key reports false.
func (s *Service) DeactivateLicense(ctx context.Context, accountID, id string) (bool, error) {
	license, err := s.getLicense(ctx, accountID, id)
	if err != nil {
		return false, err
	}
	if license == nil {
		return false, nil
	}
	if license.Status == model.LicenseInactive {
		return true, nil
	}

	license.Status = model.LicenseInactive
	license.UpdatedAt = time.Now().UTC()

	err = s.primary(ctx, "deactivate_license", func() error {
		_, err := s.licenses.Deactivate(accountID, id)
		return err
	})
	if err != nil {
		if cerr := s.cache.PutLicense(license); cerr != nil {
			return false, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
	}
	return true, nil
}

// DeleteLicense hard-deletes a key. Nothing references licenses, so there
// is no referential check.
func (s *Service) DeleteLicense(ctx context.Context, accountID, id string) (bool, error) {
	var deleted bool
	err := s.primary(ctx, "delete_license", func() error {
		var err error
		deleted, err = s.licenses.Delete(accountID, id)
		return err
	})
	if err != nil {
		deleted, err = s.cache.DeleteLicense(accountID, id)
		if err != nil {
			return false, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return deleted, nil
}

func (s *Service) getLicense(ctx context.Context, accountID, id string) (*model.License, error) {
	var license *model.License
	err := s.primary(ctx, "get_license", func() error {
		var err error
		license, err = s.licenses.Get(accountID, id)
		return err
	})
	if err != nil {
		license, err = s.cache.LicenseByID(accountID, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return license, nil
}

func (s *Service) countLicenses(ctx context.Context, accountID string) (int, error) {
	var n int
	err := s.primary(ctx, "count_licenses", func() error {
		var err error
		n, err = s.licenses.CountByAccount(accountID)
		return err
	})
	if err != nil {
		licenses, cerr := s.cache.LicensesByAccount(accountID)
		if cerr != nil {
			return 0, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
		n = len(licenses)
	}
	return n, nil
}

// Stats recomputes the dashboard counters from the current record set on
// every call. Nothing is cached between reads.
func (s *Service) Stats(ctx context.Context, accountID string) (*model.Stats, error) {
	var totalLicenses, active, totalEAs int
	err := s.primary(ctx, "stats", func() error {
		var err error
		if totalLicenses, err = s.licenses.CountByAccount(accountID); err != nil {
			return err
		}
		if active, err = s.licenses.CountActiveByAccount(accountID); err != nil {
			return err
		}
		totalEAs, err = s.eas.CountByAccount(accountID)
		return err
	})
	if err != nil {
		licenses, cerr := s.cache.LicensesByAccount(accountID)
		if cerr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
		eas, cerr := s.cache.EAsByAccount(accountID)
		if cerr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
		totalLicenses = len(licenses)
		active = 0
		for _, l := range licenses {
			if l.Status == model.LicenseActive {
				active++
			}
		}
		totalEAs = len(eas)
	}

	return &model.Stats{
		TotalLicenses:       totalLicenses,
		ActiveSubscriptions: active,
		TotalEAs:            totalEAs,
		MaxLicenses:         s.maxLicenses,
	}, nil
}
