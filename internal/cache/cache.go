// Package cache is the degraded-availability fallback tier. Records land
// here when the primary store cannot be reached. It is not a coherent
// mirror of the primary store and is never reconciled with it: whichever
// tier answers a read is the answer.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/quicktradepro/quicktrade/internal/model"
)

type Cache struct {
	mu   sync.Mutex
	path string
	data fileState
}

type fileState struct {
	Accounts map[string]accountRecord `json:"accounts"`
	EAs      map[string]eaRecord      `json:"eas"`
	Licenses map[string]licenseRecord `json:"licenses"`
}

// Records keep timestamps as RFC 3339 strings in the file. Conversion back
// to time.Time happens at every read boundary; a record with a bad date is
// an error, not a zero value.
type accountRecord struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	SecretHash  string `json:"secret_hash"`
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	AvatarRef   string `json:"avatar_ref"`
	MentorID    int    `json:"mentor_id"`
	Approved    bool   `json:"approved"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type eaRecord struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type licenseRecord struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Key       string `json:"key"`
	Assignee  string `json:"assignee"`
	EAID      string `json:"ea_id"`
	EAName    string `json:"ea_name"`
	Plan      string `json:"plan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
	UpdatedAt string `json:"updated_at"`
}

// Open loads the cache file at path, creating an empty cache if the file
// does not exist. An empty path gives a memory-only cache.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, data: emptyState()}
	if path == "" {
		return c, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if err := json.Unmarshal(raw, &c.data); err != nil {
		return nil, fmt.Errorf("decode cache file: %w", err)
	}
	if c.data.Accounts == nil || c.data.EAs == nil || c.data.Licenses == nil {
		merged := emptyState()
		for k, v := range c.data.Accounts {
			merged.Accounts[k] = v
		}
		for k, v := range c.data.EAs {
			merged.EAs[k] = v
		}
		for k, v := range c.data.Licenses {
			merged.Licenses[k] = v
		}
		c.data = merged
	}
	return c, nil
}

func emptyState() fileState {
	return fileState{
		Accounts: make(map[string]accountRecord),
		EAs:      make(map[string]eaRecord),
		Licenses: make(map[string]licenseRecord),
	}
}

// save persists the current state. Callers hold the mutex.
func (c *Cache) save() error {
	if c.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o600); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode cached timestamp %q: %w", s, err)
	}
	return t, nil
}

func (c *Cache) PutAccount(a *model.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Accounts[a.ID] = accountRecord{
		ID:          a.ID,
		Email:       a.Email,
		SecretHash:  a.SecretHash,
		FullName:    a.FullName,
		DisplayName: a.DisplayName,
		Phone:       a.Phone,
		AvatarRef:   a.AvatarRef,
		MentorID:    a.MentorID,
		Approved:    a.Approved,
		IsAdmin:     a.IsAdmin,
		CreatedAt:   encodeTime(a.CreatedAt),
		UpdatedAt:   encodeTime(a.UpdatedAt),
	}
	return c.save()
}

func (r accountRecord) toModel() (*model.Account, error) {
	createdAt, err := decodeTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := decodeTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &model.Account{
		ID:          r.ID,
		Email:       r.Email,
		SecretHash:  r.SecretHash,
		FullName:    r.FullName,
		DisplayName: r.DisplayName,
		Phone:       r.Phone,
		AvatarRef:   r.AvatarRef,
		MentorID:    r.MentorID,
		Approved:    r.Approved,
		IsAdmin:     r.IsAdmin,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (c *Cache) AccountByID(id string) (*model.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data.Accounts[id]
	if !ok {
		return nil, nil
	}
	return r.toModel()
}

// AccountByEmail matches case-insensitively, same as the primary store.
func (c *Cache) AccountByEmail(email string) (*model.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.data.Accounts {
		if strings.EqualFold(r.Email, email) {
			return r.toModel()
		}
	}
	return nil, nil
}

func (c *Cache) PutEA(ea *model.EA) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.EAs[ea.ID] = eaRecord{
		ID:        ea.ID,
		AccountID: ea.AccountID,
		Name:      ea.Name,
		CreatedAt: encodeTime(ea.CreatedAt),
	}
	return c.save()
}

func (r eaRecord) toModel() (*model.EA, error) {
	createdAt, err := decodeTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &model.EA{
		ID:        r.ID,
		AccountID: r.AccountID,
		Name:      r.Name,
		CreatedAt: createdAt,
	}, nil
}

func (c *Cache) EAByID(accountID, id string) (*model.EA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data.EAs[id]
	if !ok || r.AccountID != accountID {
		return nil, nil
	}
	return r.toModel()
}

func (c *Cache) EAsByAccount(accountID string) ([]*model.EA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var eas []*model.EA
	for _, r := range c.data.EAs {
		if r.AccountID != accountID {
			continue
		}
		ea, err := r.toModel()
		if err != nil {
			return nil, err
		}
		eas = append(eas, ea)
	}
	return eas, nil
}

func (c *Cache) DeleteEA(accountID, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data.EAs[id]
	if !ok || r.AccountID != accountID {
		return false, nil
	}
	delete(c.data.EAs, id)
	return true, c.save()
}

func (c *Cache) PutLicense(l *model.License) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Licenses[l.ID] = licenseRecord{
		ID:        l.ID,
		AccountID: l.AccountID,
		Key:       l.Key,
		Assignee:  l.Assignee,
		EAID:      l.EAID,
		EAName:    l.EAName,
		Plan:      string(l.Plan),
		Status:    l.Status,
		CreatedAt: encodeTime(l.CreatedAt),
		ExpiresAt: encodeTime(l.ExpiresAt),
		UpdatedAt: encodeTime(l.UpdatedAt),
	}
	return c.save()
}

func (r licenseRecord) toModel() (*model.License, error) {
	createdAt, err := decodeTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := decodeTime(r.ExpiresAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := decodeTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &model.License{
		ID:        r.ID,
		AccountID: r.AccountID,
		Key:       r.Key,
		Assignee:  r.Assignee,
		EAID:      r.EAID,
		EAName:    r.EAName,
		Plan:      model.Plan(r.Plan),
		Status:    r.Status,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (c *Cache) LicenseByID(accountID, id string) (*model.License, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data.Licenses[id]
	if !ok || r.AccountID != accountID {
		return nil, nil
	}
	return r.toModel()
}

func (c *Cache) LicenseByKey(key string) (*model.License, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.data.Licenses {
		if r.Key == key {
			return r.toModel()
		}
	}
	return nil, nil
}

func (c *Cache) LicensesByAccount(accountID string) ([]*model.License, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var licenses []*model.License
	for _, r := range c.data.Licenses {
		if r.AccountID != accountID {
			continue
		}
		l, err := r.toModel()
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, nil
}

func (c *Cache) LicensesByEA(accountID, eaID string) ([]*model.License, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var licenses []*model.License
	for _, r := range c.data.Licenses {
		if r.AccountID != accountID || r.EAID != eaID {
			continue
		}
		l, err := r.toModel()
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, nil
}

func (c *Cache) DeleteLicense(accountID, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data.Licenses[id]
	if !ok || r.AccountID != accountID {
		return false, nil
	}
	delete(c.data.Licenses, id)
	return true, c.save()
}
