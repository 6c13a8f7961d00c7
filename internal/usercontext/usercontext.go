// Package usercontext derives the time-of-day and day-of-week signals the
// scoring engine matches items against.
package usercontext

import "time"

// UserContext is the moment a feed is generated for. It is computed per
// request and never persisted.
type UserContext struct {
	UserID    string       `json:"user_id"`
	Now       time.Time    `json:"now"`
	Hour      int          `json:"hour"`
	Weekday   time.Weekday `json:"weekday"`
	IsWeekend bool         `json:"is_weekend"`
}

// At builds the context for userID at now. Hour and weekday are taken in
// now's location.
func At(userID string, now time.Time) UserContext {
	wd := now.Weekday()
	return UserContext{
		UserID:    userID,
		Now:       now,
		Hour:      now.Hour(),
		Weekday:   wd,
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
	}
}

// HourIn reports whether the context hour lies in [from, to].
func (c UserContext) HourIn(from, to int) bool {
	return c.Hour >= from && c.Hour <= to
}

// Provider builds contexts from an injected clock and location.
type Provider struct {
	Now      func() time.Time
	Location *time.Location
}

// NewProvider returns a Provider on the wall clock in loc. A nil loc means
// time.Local.
func NewProvider(loc *time.Location) *Provider {
	if loc == nil {
		loc = time.Local
	}
	return &Provider{Now: time.Now, Location: loc}
}

// For returns the current context for userID.
func (p *Provider) For(userID string) UserContext {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()
	if p.Location != nil {
		t = t.In(p.Location)
	}
	return At(userID, t)
}
