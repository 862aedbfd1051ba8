package model

import "time"

// Follow-up buckets are a query-time view over Lead.FollowUpDate. There
// is no persisted bucket field and no background job; every listing and
// summary derives the window from the current instant.
type FollowUpBucket string

const (
	BucketToday    FollowUpBucket = "today"
	BucketUpcoming FollowUpBucket = "upcoming"
	BucketOverdue  FollowUpBucket = "overdue"
	BucketAll      FollowUpBucket = "all"
)

func IsValidBucket(b FollowUpBucket) bool {
	switch b {
	case BucketToday, BucketUpcoming, BucketOverdue, BucketAll:
		return true
	}
	return false
}

// DayWindow returns the inclusive bounds of the local day containing now:
// [00:00:00.000, 23:59:59.999].
func DayWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// BucketWindow translates a bucket into its date bounds at the given
// instant. A nil bound means unbounded on that side. BucketAll (and any
// unknown value) leaves both sides open.
func BucketWindow(bucket FollowUpBucket, now time.Time) (from, to *time.Time) {
	start, end := DayWindow(now)

	switch bucket {
	case BucketToday:
		return &start, &end
	case BucketUpcoming:
		// strictly after end-of-today
		after := end.Add(time.Millisecond)
		return &after, nil
	case BucketOverdue:
		// strictly before start-of-today
		before := start.Add(-time.Millisecond)
		return nil, &before
	}
	return nil, nil
}

// InBucket classifies a follow-up date against the bucket windows for
// now. Used by the digest job; the HTTP listings push the same windows
// into SQL instead.
func InBucket(followUpDate time.Time, bucket FollowUpBucket, now time.Time) bool {
	start, end := DayWindow(now)

	switch bucket {
	case BucketToday:
		return !followUpDate.Before(start) && !followUpDate.After(end)
	case BucketUpcoming:
		return followUpDate.After(end)
	case BucketOverdue:
		return followUpDate.Before(start)
	case BucketAll:
		return true
	}
	return false
}
