// Package directory owns account identity: signup, credential checks, and
// profile updates. Persistence follows the same two-tier discipline as the
// licensing service: primary store first, local cache on failure, no
// reconciliation between the tiers.
package directory

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/crypto/bcrypt"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/cache"
	"github.com/quicktradepro/quicktrade/internal/model"
	"github.com/quicktradepro/quicktrade/internal/store"
)

// MaxAvatarBytes caps the encoded avatar payload stored on the account
// record.
const MaxAvatarBytes = 900 * 1024

const (
	primaryAttempts = 2
	primaryBackoff  = 50 * time.Millisecond
)

type Service struct {
	accounts *store.AccountStore
	cache    *cache.Cache
	logger   *slog.Logger
}

func New(accounts *store.AccountStore, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, cache: c, logger: logger}
}

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

type SignupParams struct {
	Email       string
	Secret      string
	FullName    string
	DisplayName string
	Phone       string
}

// Signup creates an account. Email uniqueness is case-insensitive. The
// credential secret is bcrypt-hashed before it touches either tier and is
// never logged or echoed back.
func (s *Service) Signup(ctx context.Context, p SignupParams) (*model.Account, error) {
	email := strings.TrimSpace(p.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", apperr.ErrValidation)
	}
	if p.Secret == "" {
		return nil, fmt.Errorf("%w: a password is required", apperr.ErrValidation)
	}

	existing, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrDuplicateEmail, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	mentorID, err := generateMentorID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:          uuid.NewString(),
		Email:       strings.ToLower(email),
		SecretHash:  string(hash),
		FullName:    p.FullName,
		DisplayName: p.DisplayName,
		Phone:       p.Phone,
		MentorID:    mentorID,
		Approved:    true,
		IsAdmin:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.primary(ctx, "signup", func() error {
		_, err := s.accounts.Create(account)
		return err
	})
	if err != nil {
		if cerr := s.cache.PutAccount(account); cerr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
	}
	return account, nil
}

// Authenticate resolves an account from a credential pair. The same error
// covers unknown email and wrong secret.
func (s *Service) Authenticate(ctx context.Context, email, secret string) (*model.Account, error) {
	account, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte(secret)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return account, nil
}

// ProfilePatch carries the only account fields a caller may change. A nil
// field is left untouched.
type ProfilePatch struct {
	DisplayName *string
	FullName    *string
	Phone       *string
	AvatarRef   *string
}

// UpdateProfile applies an allow-listed patch. ID, email, mentor ID and the
// flag columns have no update path here.
func (s *Service) UpdateProfile(ctx context.Context, accountID string, patch ProfilePatch) (*model.Account, error) {
	if patch.AvatarRef != nil && len(*patch.AvatarRef) > MaxAvatarBytes {
		return nil, fmt.Errorf("%w: avatar exceeds %d bytes", apperr.ErrPayloadTooLarge, MaxAvatarBytes)
	}

	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", apperr.ErrNotFound, accountID)
	}

	if patch.DisplayName != nil {
		account.DisplayName = *patch.DisplayName
	}
	if patch.FullName != nil {
		account.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		account.Phone = *patch.Phone
	}
	if patch.AvatarRef != nil {
		account.AvatarRef = *patch.AvatarRef
	}
	account.UpdatedAt = time.Now().UTC()

	err = s.primary(ctx, "update_profile", func() error {
		_, err := s.accounts.UpdateProfile(account.ID, account.DisplayName, account.FullName, account.Phone, account.AvatarRef)
		return err
	})
	if err != nil {
		if cerr := s.cache.PutAccount(account); cerr != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, cerr)
		}
	}
	return account, nil
}

func (s *Service) GetByID(ctx context.Context, accountID string) (*model.Account, error) {
	var account *model.Account
	err := s.primary(ctx, "get_account", func() error {
		var err error
		account, err = s.accounts.GetByID(accountID)
		return err
	})
	if err != nil {
		account, err = s.cache.AccountByID(accountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return account, nil
}

func (s *Service) getByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account *model.Account
	err := s.primary(ctx, "get_account_by_email", func() error {
		var err error
		account, err = s.accounts.GetByEmail(email)
		return err
	})
	if err != nil {
		account, err = s.cache.AccountByEmail(email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
	}
	return account, nil
}

// generateMentorID draws a 6-digit referral handle uniformly from
// [100000, 999999].
func generateMentorID() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, fmt.Errorf("generate mentor id: %w", err)
	}
	return int(n.Int64()) + 100000, nil
}
