package store

import (
	"database/sql"
	"fmt"

	"github.com/quicktradepro/quicktrade/internal/model"
)

type LicenseStore struct {
	db *sql.DB
}

func NewLicenseStore(db *sql.DB) *LicenseStore {
	return &LicenseStore{db: db}
}

func scanLicense(scanner interface{ Scan(...any) error }) (*model.License, error) {
	var l model.License
	err := scanner.Scan(
		&l.ID, &l.AccountID, &l.Key, &l.Assignee, &l.EAID, &l.EAName,
		&l.Plan, &l.Status, &l.CreatedAt, &l.ExpiresAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const licenseCols = `id, account_id, key, assignee, ea_id, ea_name, plan, status, created_at, expires_at, updated_at`

func (s *LicenseStore) Create(l *model.License) (*model.License, error) {
	_, err := s.db.Exec(
		`INSERT INTO licenses (id, account_id, key, assignee, ea_id, ea_name, plan, status, created_at, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.AccountID, l.Key, l.Assignee, l.EAID, l.EAName,
		l.Plan, l.Status, l.CreatedAt, l.ExpiresAt, l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert license: %w", err)
	}
	return s.Get(l.AccountID, l.ID)
}

// Get returns the license only if it belongs to the given account.
func (s *LicenseStore) Get(accountID, id string) (*model.License, error) {
	row := s.db.QueryRow(`SELECT `+licenseCols+` FROM licenses WHERE id = ? AND account_id = ?`, id, accountID)
	l, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	return l, nil
}

// GetByKey looks a license up by key text across all accounts. Used by the
// public validation endpoint, which has no account scope.
func (s *LicenseStore) GetByKey(key string) (*model.License, error) {
	row := s.db.QueryRow(`SELECT `+licenseCols+` FROM licenses WHERE key = ?`, key)
	l, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license by key: %w", err)
	}
	return l, nil
}

func (s *LicenseStore) ListByAccount(accountID string) ([]*model.License, error) {
	rows, err := s.db.Query(`SELECT `+licenseCols+` FROM licenses WHERE account_id = ? ORDER BY created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var licenses []*model.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return licenses, nil
}

func (s *LicenseStore) CountByAccount(accountID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM licenses WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count licenses: %w", err)
	}
	return n, nil
}

func (s *LicenseStore) CountActiveByAccount(accountID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM licenses WHERE account_id = ? AND status = ?`,
		accountID, model.LicenseActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active licenses: %w", err)
	}
	return n, nil
}

// CountByEA counts licenses referencing an EA regardless of status. The
// referential guard on EA deletion counts inactive keys too.
func (s *LicenseStore) CountByEA(accountID, eaID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM licenses WHERE account_id = ? AND ea_id = ?`,
		accountID, eaID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count licenses by ea: %w", err)
	}
	return n, nil
}

// Deactivate marks a license inactive. Reports whether a row changed.
func (s *LicenseStore) Deactivate(accountID, id string) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE licenses SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ?`,
		model.LicenseInactive, id, accountID,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate license: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *LicenseStore) Delete(accountID, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM licenses WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return false, fmt.Errorf("delete license: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
