package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcklmo/worklog/internal/activity"
)

const (
	extractionRepositoryPathConstant = "/tmp/extraction-repository"
	extractionWindowStartConstant    = "2025-01-01"
	extractionWindowEndConstant      = "2025-01-31"
)

func buildExtractionWindow(testInstance *testing.T) activity.DateWindow {
	windowStart, startError := time.Parse("2006-01-02", extractionWindowStartConstant)
	require.NoError(testInstance, startError)
	windowEnd, endError := time.Parse("2006-01-02", extractionWindowEndConstant)
	require.NoError(testInstance, endError)

	window, windowError := activity.NewDateWindow(windowStart, windowEnd)
	require.NoError(testInstance, windowError)
	return window
}

func TestCommitExtractorExtractCommits(testInstance *testing.T) {
	sharedCommitLine := "aaaa111|John Doe|john@example.com|2025-01-02 10:57:06 +0200|Shared commit"

	testCases := []struct {
		name             string
		logOutputsByRef  map[string]string
		branchNames      []string
		expectedHashes   []string
		expectedSubjects []string
	}{
		{
			name: "merges_branches_and_deduplicates_by_hash",
			logOutputsByRef: map[string]string{
				"main":    sharedCommitLine + "\nbbbb222|John Doe|john@example.com|2025-01-03 09:00:00 +0200|Main only",
				"develop": sharedCommitLine + "\ncccc333|John Doe|john@example.com|2025-01-04 08:00:00 +0200|Develop only",
			},
			branchNames:    []string{"main", "develop"},
			expectedHashes: []string{"aaaa111", "bbbb222", "cccc333"},
		},
		{
			name: "skips_malformed_lines_individually",
			logOutputsByRef: map[string]string{
				"main": "not-a-commit-line\n" + sharedCommitLine + "\ntoo|few|fields",
			},
			branchNames:    []string{"main"},
			expectedHashes: []string{"aaaa111"},
		},
		{
			name: "skips_unparseable_timestamps",
			logOutputsByRef: map[string]string{
				"main": "dddd444|John Doe|john@example.com|not-a-timestamp|Broken clock\n" + sharedCommitLine,
			},
			branchNames:    []string{"main"},
			expectedHashes: []string{"aaaa111"},
		},
		{
			name: "subject_keeps_embedded_separators",
			logOutputsByRef: map[string]string{
				"main": "eeee555|John Doe|john@example.com|2025-01-05 12:00:00 +0200|Pipes | inside | subject",
			},
			branchNames:      []string{"main"},
			expectedHashes:   []string{"eeee555"},
			expectedSubjects: []string{"Pipes | inside | subject"},
		},
		{
			name: "sentinel_branch_queries_all_refs",
			logOutputsByRef: map[string]string{
				"--all": sharedCommitLine,
			},
			branchNames:    []string{activity.AllHistorySentinel},
			expectedHashes: []string{"aaaa111"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			gitExecutor := newScriptedGitExecutor(map[string]repositoryScript{
				extractionRepositoryPathConstant: {logOutputsByRef: testCase.logOutputsByRef},
			})
			extractor := activity.NewCommitExtractor(gitExecutor, nil)

			extractedCommits := extractor.ExtractCommits(
				context.Background(),
				extractionRepositoryPathConstant,
				buildExtractionWindow(subtestInstance),
				testCase.branchNames,
			)

			extractedHashes := make([]string, 0, len(extractedCommits))
			for _, extractedCommit := range extractedCommits {
				extractedHashes = append(extractedHashes, extractedCommit.Hash)
			}
			require.Equal(subtestInstance, testCase.expectedHashes, extractedHashes)

			for subjectIndex, expectedSubject := range testCase.expectedSubjects {
				require.Equal(subtestInstance, expectedSubject, extractedCommits[subjectIndex].Subject)
			}
		})
	}
}

func TestCommitExtractorPreservesTimestampOffset(testInstance *testing.T) {
	gitExecutor := newScriptedGitExecutor(map[string]repositoryScript{
		extractionRepositoryPathConstant: {
			logOutputsByRef: map[string]string{
				"main": "ffff666|John Doe|john@example.com|2025-01-02 23:30:00 +0900|Late evening commit",
			},
		},
	})
	extractor := activity.NewCommitExtractor(gitExecutor, nil)

	extractedCommits := extractor.ExtractCommits(
		context.Background(),
		extractionRepositoryPathConstant,
		buildExtractionWindow(testInstance),
		[]string{"main"},
	)

	require.Len(testInstance, extractedCommits, 1)
	_, offsetSeconds := extractedCommits[0].Timestamp.Zone()
	require.Equal(testInstance, 9*60*60, offsetSeconds)
	require.Equal(testInstance, "2025-01-02", extractedCommits[0].DayKey())
}

func TestSortCommitsDeterministically(testInstance *testing.T) {
	olderTimestamp := time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)
	newerTimestamp := time.Date(2025, time.January, 3, 9, 0, 0, 0, time.UTC)

	commits := []activity.Commit{
		{Hash: "bbb", Timestamp: olderTimestamp},
		{Hash: "zzz", Timestamp: newerTimestamp},
		{Hash: "aaa", Timestamp: olderTimestamp},
	}

	activity.SortCommitsDeterministically(commits)

	require.Equal(testInstance, "zzz", commits[0].Hash)
	require.Equal(testInstance, "aaa", commits[1].Hash)
	require.Equal(testInstance, "bbb", commits[2].Hash)
}
