package licensekey

import (
	"fmt"
	"time"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/model"
)

// lifetimeYears is the sentinel offset for lifetime plans. Lifetime keys
// carry a real far-future date rather than a null expiry.
const lifetimeYears = 100

// Expiry returns the expiry date for a plan relative to issuedAt.
//
// Month and year offsets use time.Time.AddDate, which normalizes calendar
// overflow: Jan 31 + 1 month is Mar 2 (Mar 3 in leap years), and
// Feb 29 + 1 year is Mar 1. That normalization is the pinned behavior.
// An unrecognized plan is an error, never a silent default.
func Expiry(plan model.Plan, issuedAt time.Time) (time.Time, error) {
	switch plan {
	case model.Plan3Days:
		return issuedAt.AddDate(0, 0, 3), nil
	case model.Plan5Days:
		return issuedAt.AddDate(0, 0, 5), nil
	case model.Plan30Days:
		return issuedAt.AddDate(0, 0, 30), nil
	case model.Plan3Months:
		return issuedAt.AddDate(0, 3, 0), nil
	case model.Plan6Months:
		return issuedAt.AddDate(0, 6, 0), nil
	case model.Plan1Year:
		return issuedAt.AddDate(1, 0, 0), nil
	case model.PlanLifetime:
		return issuedAt.AddDate(lifetimeYears, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", apperr.ErrInvalidPlan, plan)
	}
}
