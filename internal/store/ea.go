package store

import (
	"database/sql"
	"fmt"

	"github.com/quicktradepro/quicktrade/internal/model"
)

type EAStore struct {
	db *sql.DB
}

func NewEAStore(db *sql.DB) *EAStore {
	return &EAStore{db: db}
}

func scanEA(scanner interface{ Scan(...any) error }) (*model.EA, error) {
	var ea model.EA
	err := scanner.Scan(&ea.ID, &ea.AccountID, &ea.Name, &ea.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ea, nil
}

const eaCols = `id, account_id, name, created_at`

func (s *EAStore) Create(ea *model.EA) (*model.EA, error) {
	_, err := s.db.Exec(
		`INSERT INTO eas (id, account_id, name, created_at) VALUES (?, ?, ?, ?)`,
		ea.ID, ea.AccountID, ea.Name, ea.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ea: %w", err)
	}
	return s.Get(ea.AccountID, ea.ID)
}

// Get returns the EA only if it belongs to the given account.
func (s *EAStore) Get(accountID, id string) (*model.EA, error) {
	row := s.db.QueryRow(`SELECT `+eaCols+` FROM eas WHERE id = ? AND account_id = ?`, id, accountID)
	ea, err := scanEA(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ea: %w", err)
	}
	return ea, nil
}

func (s *EAStore) ListByAccount(accountID string) ([]*model.EA, error) {
	rows, err := s.db.Query(`SELECT `+eaCols+` FROM eas WHERE account_id = ? ORDER BY created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list eas: %w", err)
	}
	defer rows.Close()

	var eas []*model.EA
	for rows.Next() {
		ea, err := scanEA(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ea: %w", err)
		}
		eas = append(eas, ea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list eas: %w", err)
	}
	return eas, nil
}

func (s *EAStore) CountByAccount(accountID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM eas WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count eas: %w", err)
	}
	return n, nil
}

func (s *EAStore) Delete(accountID, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM eas WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return false, fmt.Errorf("delete ea: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
