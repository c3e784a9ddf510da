package store

import (
	"database/sql"
	"fmt"

	"github.com/quicktradepro/quicktrade/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := scanner.Scan(
		&a.ID, &a.Email, &a.SecretHash, &a.FullName, &a.DisplayName,
		&a.Phone, &a.AvatarRef, &a.MentorID, &a.Approved, &a.IsAdmin,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const accountCols = `id, email, secret_hash, full_name, display_name, phone, avatar_ref, mentor_id, approved, is_admin, created_at, updated_at`

func (s *AccountStore) Create(a *model.Account) (*model.Account, error) {
	_, err := s.db.Exec(
		`INSERT INTO accounts (id, email, secret_hash, full_name, display_name, phone, avatar_ref, mentor_id, approved, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.SecretHash, a.FullName, a.DisplayName,
		a.Phone, a.AvatarRef, a.MentorID, a.Approved, a.IsAdmin,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return s.GetByID(a.ID)
}

func (s *AccountStore) GetByID(id string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetByEmail looks an account up case-insensitively.
func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ? COLLATE NOCASE`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// UpdateProfile writes the mutable profile fields only. Email, mentor ID and
// the flag columns are never touched here.
func (s *AccountStore) UpdateProfile(id, displayName, fullName, phone, avatarRef string) (*model.Account, error) {
	_, err := s.db.Exec(
		`UPDATE accounts SET display_name = ?, full_name = ?, phone = ?, avatar_ref = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		displayName, fullName, phone, avatarRef, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update account profile: %w", err)
	}
	return s.GetByID(id)
}
