package usercontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAt(t *testing.T) {
	// Saturday evening
	c := At("u1", time.Date(2024, 1, 6, 18, 45, 0, 0, time.UTC))

	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, 18, c.Hour)
	assert.Equal(t, time.Saturday, c.Weekday)
	assert.True(t, c.IsWeekend)
	assert.True(t, c.HourIn(17, 22))
	assert.False(t, c.HourIn(6, 10))
}

func TestAt_Weekday(t *testing.T) {
	c := At("u1", time.Date(2024, 1, 3, 7, 0, 0, 0, time.UTC))
	assert.False(t, c.IsWeekend)
	assert.True(t, c.HourIn(7, 7))
}

func TestProviderUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	p := &Provider{
		Now:      func() time.Time { return time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC) },
		Location: tokyo,
	}

	c := p.For("u1")
	// 20:00 UTC Friday is 05:00 Saturday in Tokyo.
	assert.Equal(t, 5, c.Hour)
	assert.Equal(t, time.Saturday, c.Weekday)
	assert.True(t, c.IsWeekend)
}
