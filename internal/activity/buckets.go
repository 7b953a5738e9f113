package activity

import "sort"

// BuildDayBuckets groups every matched commit by the calendar day recorded in
// its own UTC offset.
//
// Within a bucket, entries keep repository order from the result slice (which
// mirrors discovery order) and chronological descending order inside each
// repository group. Days without commits have no bucket. The grouping depends
// only on the already-merged results, never on task completion order, so the
// output is deterministic.
func BuildDayBuckets(repositoryResults []RepositoryResult) map[string][]DayBucketEntry {
	dayBuckets := make(map[string][]DayBucketEntry)

	for _, repositoryResult := range repositoryResults {
		for _, bucketedCommit := range repositoryResult.Commits {
			dayKey := bucketedCommit.DayKey()
			dayBuckets[dayKey] = append(dayBuckets[dayKey], DayBucketEntry{
				RepositoryName: repositoryResult.Repository.Name,
				Commit:         bucketedCommit,
			})
		}
	}

	return dayBuckets
}

// SortedDayKeys returns the bucket days in descending order, newest first.
func SortedDayKeys(dayBuckets map[string][]DayBucketEntry) []string {
	dayKeys := make([]string, 0, len(dayBuckets))
	for dayKey := range dayBuckets {
		dayKeys = append(dayKeys, dayKey)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dayKeys)))
	return dayKeys
}
