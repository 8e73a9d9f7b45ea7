package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAdmitsUpToLimit(t *testing.T) {
	l := NewSlidingWindowLimiter(time.Minute, 100)

	assert.True(t, l.Admit("https://notify.example/a", 100))
	assert.False(t, l.Admit("https://notify.example/a", 1))

	// Other destinations have independent budgets
	assert.True(t, l.Admit("https://notify.example/b", 100))
}

func TestLimiterRejectionRecordsNothing(t *testing.T) {
	l := NewSlidingWindowLimiter(time.Minute, 100)

	assert.True(t, l.Admit("dest", 60))
	assert.False(t, l.Admit("dest", 50))
	// The rejected 50 consumed no budget; 40 still fit
	assert.True(t, l.Admit("dest", 40))
	assert.False(t, l.Admit("dest", 1))
}

func TestLimiterWindowSlides(t *testing.T) {
	l := NewSlidingWindowLimiter(time.Minute, 100)

	now := time.Now()
	l.now = func() time.Time { return now }
	assert.True(t, l.Admit("dest", 100))
	assert.False(t, l.Admit("dest", 1))

	l.now = func() time.Time { return now.Add(61 * time.Second) }
	assert.True(t, l.Admit("dest", 100))
}
