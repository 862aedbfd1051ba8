package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 30, 45, 0, time.Local)
	start, end := DayWindow(now)

	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 8, 29, 23, 59, 59, 999000000, time.Local), end)
}

func TestDayWindowAtMidnight(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)
	start, end := DayWindow(now)

	assert.Equal(t, now, start)
	assert.True(t, end.After(start))
	assert.Equal(t, 29, end.Day())
}

func TestInBucketBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)

	lastMillisecondToday := time.Date(2026, 8, 29, 23, 59, 59, 999000000, time.Local)
	firstInstantTomorrow := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	firstInstantToday := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)
	lastMillisecondYesterday := time.Date(2026, 8, 28, 23, 59, 59, 999000000, time.Local)

	// 23:59:59.999 today is today, not upcoming
	assert.True(t, InBucket(lastMillisecondToday, BucketToday, now))
	assert.False(t, InBucket(lastMillisecondToday, BucketUpcoming, now))

	// 00:00:00.000 tomorrow is upcoming
	assert.True(t, InBucket(firstInstantTomorrow, BucketUpcoming, now))
	assert.False(t, InBucket(firstInstantTomorrow, BucketToday, now))

	// start of today is today, not overdue
	assert.True(t, InBucket(firstInstantToday, BucketToday, now))
	assert.False(t, InBucket(firstInstantToday, BucketOverdue, now))

	// the millisecond before midnight is overdue
	assert.True(t, InBucket(lastMillisecondYesterday, BucketOverdue, now))
	assert.False(t, InBucket(lastMillisecondYesterday, BucketToday, now))
}

func TestInBucketAll(t *testing.T) {
	now := time.Now()
	assert.True(t, InBucket(now.AddDate(0, 0, -10), BucketAll, now))
	assert.True(t, InBucket(now.AddDate(0, 0, 10), BucketAll, now))
}

func TestBucketWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)
	startOfDay, endOfDay := DayWindow(now)

	from, to := BucketWindow(BucketToday, now)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, startOfDay, *from)
	assert.Equal(t, endOfDay, *to)

	from, to = BucketWindow(BucketUpcoming, now)
	require.NotNil(t, from)
	assert.Nil(t, to)
	assert.True(t, from.After(endOfDay))

	from, to = BucketWindow(BucketOverdue, now)
	assert.Nil(t, from)
	require.NotNil(t, to)
	assert.True(t, to.Before(startOfDay))

	from, to = BucketWindow(BucketAll, now)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestBucketWindowsArePartition(t *testing.T) {
	// Any instant lands in exactly one of today/upcoming/overdue.
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)
	candidates := []time.Time{
		now,
		now.Add(-36 * time.Hour),
		now.Add(36 * time.Hour),
		time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local),
		time.Date(2026, 8, 29, 23, 59, 59, 999000000, time.Local),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local),
		time.Date(2026, 8, 28, 23, 59, 59, 999000000, time.Local),
	}

	for _, candidate := range candidates {
		matches := 0
		for _, bucket := range []FollowUpBucket{BucketToday, BucketUpcoming, BucketOverdue} {
			if InBucket(candidate, bucket, now) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "instant %v should land in exactly one bucket", candidate)
	}
}

func TestIsValidBucket(t *testing.T) {
	assert.True(t, IsValidBucket(BucketToday))
	assert.True(t, IsValidBucket(BucketUpcoming))
	assert.True(t, IsValidBucket(BucketOverdue))
	assert.True(t, IsValidBucket(BucketAll))
	assert.False(t, IsValidBucket("tomorrow"))
}
