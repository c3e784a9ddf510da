package model

import "time"

// Plan is a license duration tier. The string values are wire-level
// literals shared with the dashboard and the mobile app.
type Plan string

const (
	Plan3Days    Plan = "3days"
	Plan5Days    Plan = "5days"
	Plan30Days   Plan = "30days"
	Plan3Months  Plan = "3months"
	Plan6Months  Plan = "6months"
	Plan1Year    Plan = "1year"
	PlanLifetime Plan = "lifetime"
)

// License status values. A license only ever moves active -> inactive.
const (
	LicenseActive   = "active"
	LicenseInactive = "inactive"
)

// MaxLicenses is the default per-account license ceiling.
const MaxLicenses = 10000

type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	SecretHash  string    `json:"-"`
	FullName    string    `json:"full_name"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	AvatarRef   string    `json:"avatar_ref,omitempty"`
	MentorID    int       `json:"mentor_id"`
	Approved    bool      `json:"approved"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EA is an Expert Advisor, the licensable product unit. The name is
// immutable once created.
type EA struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type License struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Key       string    `json:"key"`
	Assignee  string    `json:"assignee"`
	EAID      string    `json:"ea_id"`
	EAName    string    `json:"ea_name"` // snapshot at issuance, not kept in sync
	Plan      Plan      `json:"plan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is a per-account fold over the current EA and license sets.
// Field names match the dashboard's wire contract.
type Stats struct {
	TotalLicenses       int `json:"totalLicenses"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
	TotalEAs            int `json:"totalEAs"`
	MaxLicenses         int `json:"maxLicenses"`
}
