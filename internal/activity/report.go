package activity

import (
	"fmt"
	"strings"
)

const (
	combinedReportTitleTemplateConstant     = "# Git Activity Report for %s\n\n"
	combinedReportPeriodTemplateConstant    = "**Period:** %s to %s\n"
	combinedReportRepoCountTemplateConstant = "**Repositories:** %d repositories\n\n"
	repositorySectionTitleTemplateConstant  = "## Repository: %s\n\n"
	repositorySectionPathTemplateConstant   = "**Path:** %s\n"
	repositorySectionCountTemplateConstant  = "**Commits:** %d\n\n"
	commitListLineTemplateConstant          = "- `%s` **%s** (%s) by %s\n"
	summaryTitleConstant                    = "## Summary\n\n"
	summaryTotalCommitsTemplateConstant     = "- **Total Commits**: %d\n"
	summaryTotalReposTemplateConstant       = "- **Total Repositories**: %d\n"
	summaryDaysWithCommitsTemplateConstant  = "- **Days with commits**: %d\n"
	summaryAveragePerDayTemplateConstant    = "- **Average commits per day**: %.1f\n"
	repositoryBreakdownTitleConstant        = "\n### Repository Breakdown\n\n"
	repositoryBreakdownLineTemplate         = "- **%s**: %d commits\n"
	repositoryBreakdownErrorTemplate        = "- **%s**: Error processing repository\n"
	dailyBreakdownTitleConstant             = "\n### Daily Breakdown\n\n"
	dailyBreakdownLineTemplateConstant      = "- **%s**: %d commits\n"
	dayReportTitleTemplateConstant          = "# Work Report for %s\n\n"
	dayReportLineTemplateConstant           = "* %s: %s (%s) **%s**\n"
	commitDateTimeLayoutConstant            = "2006-01-02 15:04:05"
	sectionSeparatorConstant                = "\n"
)

// ReportRenderer turns aggregated repository results into report text.
type ReportRenderer struct{}

// NewReportRenderer constructs a renderer.
func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{}
}

// RenderCombinedReport produces the cross-repository summary document.
func (renderer *ReportRenderer) RenderCombinedReport(targetIdentity string, window DateWindow, repositoryResults []RepositoryResult) string {
	var reportBuilder strings.Builder

	fmt.Fprintf(&reportBuilder, combinedReportTitleTemplateConstant, targetIdentity)
	fmt.Fprintf(&reportBuilder, combinedReportPeriodTemplateConstant, window.SinceText(), window.UntilText())
	fmt.Fprintf(&reportBuilder, combinedReportRepoCountTemplateConstant, len(repositoryResults))

	totalCommitCount := 0
	commitCountsByDay := make(map[string]int)

	for _, repositoryResult := range repositoryResults {
		if repositoryResult.ProcessingError != nil || len(repositoryResult.Commits) == 0 {
			continue
		}

		fmt.Fprintf(&reportBuilder, repositorySectionTitleTemplateConstant, repositoryResult.Repository.Name)
		fmt.Fprintf(&reportBuilder, repositorySectionPathTemplateConstant, repositoryResult.Repository.Path)
		fmt.Fprintf(&reportBuilder, repositorySectionCountTemplateConstant, len(repositoryResult.Commits))

		for _, renderedCommit := range repositoryResult.Commits {
			fmt.Fprintf(
				&reportBuilder,
				commitListLineTemplateConstant,
				renderedCommit.Timestamp.Format(commitDateTimeLayoutConstant),
				renderedCommit.Subject,
				renderedCommit.AbbreviatedHash(),
				renderedCommit.AuthorName,
			)
		}
		reportBuilder.WriteString(sectionSeparatorConstant)

		totalCommitCount += len(repositoryResult.Commits)
		for _, bucketedCommit := range repositoryResult.Commits {
			commitCountsByDay[bucketedCommit.DayKey()]++
		}
	}

	reportBuilder.WriteString(summaryTitleConstant)
	fmt.Fprintf(&reportBuilder, summaryTotalCommitsTemplateConstant, totalCommitCount)
	fmt.Fprintf(&reportBuilder, summaryTotalReposTemplateConstant, len(repositoryResults))
	if len(commitCountsByDay) > 0 {
		fmt.Fprintf(&reportBuilder, summaryDaysWithCommitsTemplateConstant, len(commitCountsByDay))
		fmt.Fprintf(&reportBuilder, summaryAveragePerDayTemplateConstant, float64(totalCommitCount)/float64(len(commitCountsByDay)))
	}

	reportBuilder.WriteString(repositoryBreakdownTitleConstant)
	for _, repositoryResult := range repositoryResults {
		if repositoryResult.ProcessingError != nil {
			fmt.Fprintf(&reportBuilder, repositoryBreakdownErrorTemplate, repositoryResult.Repository.Name)
			continue
		}
		fmt.Fprintf(&reportBuilder, repositoryBreakdownLineTemplate, repositoryResult.Repository.Name, len(repositoryResult.Commits))
	}

	if len(commitCountsByDay) > 0 {
		reportBuilder.WriteString(dailyBreakdownTitleConstant)
		for _, dayKey := range sortedDayKeysDescending(commitCountsByDay) {
			fmt.Fprintf(&reportBuilder, dailyBreakdownLineTemplateConstant, dayKey, commitCountsByDay[dayKey])
		}
	}

	return reportBuilder.String()
}

// RenderDayReport produces the document for one day bucket. Repository names
// are right-padded to the widest name in the bucket for columnar alignment.
func (renderer *ReportRenderer) RenderDayReport(dayKey string, bucketEntries []DayBucketEntry) string {
	var reportBuilder strings.Builder
	fmt.Fprintf(&reportBuilder, dayReportTitleTemplateConstant, dayKey)

	widestRepositoryName := 0
	for _, bucketEntry := range bucketEntries {
		if len(bucketEntry.RepositoryName) > widestRepositoryName {
			widestRepositoryName = len(bucketEntry.RepositoryName)
		}
	}

	for _, bucketEntry := range bucketEntries {
		paddedRepositoryName := bucketEntry.RepositoryName + strings.Repeat(" ", widestRepositoryName-len(bucketEntry.RepositoryName))
		fmt.Fprintf(
			&reportBuilder,
			dayReportLineTemplateConstant,
			paddedRepositoryName,
			bucketEntry.Commit.Timestamp.Format(commitTimestampLayoutConstant),
			bucketEntry.Commit.AbbreviatedHash(),
			bucketEntry.Commit.Subject,
		)
	}

	return reportBuilder.String()
}

func sortedDayKeysDescending(commitCountsByDay map[string]int) []string {
	dayBuckets := make(map[string][]DayBucketEntry, len(commitCountsByDay))
	for dayKey := range commitCountsByDay {
		dayBuckets[dayKey] = nil
	}
	return SortedDayKeys(dayBuckets)
}
