package drift

import (
	"sort"

	"driftwatch/internal/activity"
)

// FieldDay holds the first and last change of one field within one calendar
// day. The first record supplies the day's opening raw value, the last one
// the closing raw value; everything in between is same-day noise.
type FieldDay struct {
	First activity.Record
	Last  activity.Record
}

// DayBucket groups all tracked-field changes of one issue on one day.
type DayBucket struct {
	Day    string
	Fields map[string]FieldDay
}

// GroupByIssue partitions a flat record collection by issue key, each
// subsequence sorted by timestamp ascending.
func GroupByIssue(records []activity.Record) map[string][]activity.Record {
	byIssue := make(map[string][]activity.Record)
	for _, r := range records {
		byIssue[r.IssueKey] = append(byIssue[r.IssueKey], r)
	}
	for key := range byIssue {
		rs := byIssue[key]
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].Timestamp < rs[j].Timestamp
		})
	}
	return byIssue
}

// DayBuckets consolidates an issue's history into ordered day buckets,
// keeping only the fields in tracked. Input must be sorted by timestamp.
func DayBuckets(records []activity.Record, tracked []string) []DayBucket {
	isTracked := make(map[string]bool, len(tracked))
	for _, f := range tracked {
		isTracked[f] = true
	}

	var buckets []DayBucket
	index := make(map[string]int)

	for _, r := range records {
		if !isTracked[r.Field] {
			continue
		}
		day := r.Day()
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, DayBucket{Day: day, Fields: make(map[string]FieldDay)})
		}
		fd, seen := buckets[i].Fields[r.Field]
		if !seen {
			fd.First = r
		}
		fd.Last = r
		buckets[i].Fields[r.Field] = fd
	}

	return buckets
}
