package usage

import (
	"strings"
	"time"
)

// Period is the quota window.
const Period = 7 * 24 * time.Hour

// Plans and their weekly limits.
const (
	PlanFree  = "Free"
	PlanGuest = "Guest"

	FreeLimit  = 10
	GuestLimit = 3
)

// planFor picks the plan for a principal; guest principals are "guest:<id>".
func planFor(userID string) (string, int) {
	if strings.HasPrefix(userID, "guest:") {
		return PlanGuest, GuestLimit
	}
	return PlanFree, FreeLimit
}

func defaultUsage(userID string, now time.Time) Usage {
	plan, limit := planFor(userID)
	return Usage{
		Plan:     plan,
		Limit:    limit,
		Used:     0,
		ResetsAt: now.Add(Period),
	}
}

// rollover starts a fresh window once the current one has ended.
func rollover(u Usage, now time.Time) (Usage, bool) {
	if now.Before(u.ResetsAt) {
		return u, false
	}
	u.Used = 0
	u.ResetsAt = now.Add(Period)
	return u, true
}
