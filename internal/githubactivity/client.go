package githubactivity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	eventsPageSizeConstant            = 100
	dayLayoutConstant                 = "2006-01-02"
	reportHeaderTemplateConstant      = "--- GitHub Work Report for %s ---\n\n"
	noActivityMessageConstant         = "No significant GitHub activity found for this day."
	repositorySectionTemplateConstant = "### Repository: %s\n"
	commitsSectionHeaderConstant      = "  * **Commits:**\n"
	pullRequestsSectionHeaderConstant = "  * **Pull Requests:**\n"
	issuesSectionHeaderConstant       = "  * **Issues:**\n"
	commentsSectionHeaderConstant     = "  * **Comments:**\n"
	reviewsSectionHeaderConstant      = "  * **Reviews:**\n"
	commitLineTemplateConstant        = "- Commit: '%s' (%s) on [%s](https://github.com/%s/commit/%s)"
	pullRequestLineTemplateConstant   = "- PR %s: #%d - '%s' on [%s](https://github.com/%s/pull/%d)"
	issueLineTemplateConstant         = "- Issue %s: #%d - '%s' on [%s](https://github.com/%s/issues/%d)"
	commentLineTemplateConstant       = "- Commented on issue #%d: '%s' - [%s](https://github.com/%s/issues/%d#issuecomment-%d)"
	reviewLineTemplateConstant        = "- Reviewed PR #%d ('%s') - State: %s on [%s](https://github.com/%s/pull/%d/files/)"
	noreplyEmailTemplateConstant      = "%s@users.noreply.github.com"
	invalidDayTemplateConstant        = "invalid day %q: expected YYYY-MM-DD"
	eventsFetchFailedTemplate         = "fetching events for %s failed: %w"
	rateLimiterFailedTemplateConstant = "rate limiter: %w"
	abbreviatedShaLengthConstant      = 7
	eventsFetchedMessageConstant      = "events fetched"
	logFieldEventCountConstant        = "event_count"
	logFieldUsernameConstant          = "username"
)

// ClientConfiguration carries settings for the events API client.
type ClientConfiguration struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client reads a user's event stream and renders one day of activity.
//
// Requests pace through a one-per-second limiter, matching the conservative
// budget GitHub's 5000/hour allowance supports.
type Client struct {
	githubClient *github.Client
	rateLimiter  *rate.Limiter
	logger       *zap.Logger
}

// NewClient constructs an events client around the provided configuration.
func NewClient(configuration ClientConfiguration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	githubClient := github.NewClient(configuration.HTTPClient)
	if len(configuration.Token) > 0 {
		githubClient = githubClient.WithAuthToken(configuration.Token)
	}
	if len(configuration.BaseURL) > 0 {
		parsedBaseURL, parseError := url.Parse(strings.TrimRight(configuration.BaseURL, "/") + "/")
		if parseError != nil {
			return nil, parseError
		}
		githubClient.BaseURL = parsedBaseURL
	}

	return &Client{
		githubClient: githubClient,
		rateLimiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		logger:       logger,
	}, nil
}

// repositoryActivity buckets rendered event lines for one repository.
type repositoryActivity struct {
	commits      []string
	pullRequests []string
	issues       []string
	comments     []string
	reviews      []string
}

func (activity repositoryActivity) empty() bool {
	return len(activity.commits) == 0 &&
		len(activity.pullRequests) == 0 &&
		len(activity.issues) == 0 &&
		len(activity.comments) == 0 &&
		len(activity.reviews) == 0
}

// BuildDailyReport renders the user's activity for one calendar day.
//
// The event stream arrives newest first; fetching stops once a page ends
// before the target day. Only events whose UTC creation date equals the
// target day contribute, and push-event commits are additionally filtered to
// the user's own author identity.
func (client *Client) BuildDailyReport(executionContext context.Context, username string, dayText string) (string, error) {
	targetDay, parseError := time.Parse(dayLayoutConstant, dayText)
	if parseError != nil {
		return "", fmt.Errorf(invalidDayTemplateConstant, dayText)
	}

	userEvents, fetchError := client.fetchEventsThroughDay(executionContext, username, targetDay)
	if fetchError != nil {
		return "", fmt.Errorf(eventsFetchFailedTemplate, username, fetchError)
	}

	activitiesByRepository := make(map[string]*repositoryActivity)
	var repositoryOrder []string

	for _, userEvent := range userEvents {
		if !sameCalendarDay(userEvent.GetCreatedAt().Time, targetDay) {
			continue
		}

		repositoryName := userEvent.GetRepo().GetName()
		repositoryRecord, exists := activitiesByRepository[repositoryName]
		if !exists {
			repositoryRecord = &repositoryActivity{}
			activitiesByRepository[repositoryName] = repositoryRecord
			repositoryOrder = append(repositoryOrder, repositoryName)
		}

		client.recordEvent(repositoryRecord, repositoryName, username, userEvent)
	}

	return renderDailyReport(dayText, repositoryOrder, activitiesByRepository), nil
}

// fetchEventsThroughDay pages through the event stream until it reaches
// events older than the target day.
func (client *Client) fetchEventsThroughDay(executionContext context.Context, username string, targetDay time.Time) ([]*github.Event, error) {
	listOptions := &github.ListOptions{PerPage: eventsPageSizeConstant}
	var collectedEvents []*github.Event

	for {
		if limiterError := client.rateLimiter.Wait(executionContext); limiterError != nil {
			return nil, fmt.Errorf(rateLimiterFailedTemplateConstant, limiterError)
		}

		pageEvents, response, listError := client.githubClient.Activity.ListEventsPerformedByUser(executionContext, username, false, listOptions)
		if listError != nil {
			return nil, listError
		}
		collectedEvents = append(collectedEvents, pageEvents...)

		if len(pageEvents) == 0 || response.NextPage == 0 {
			break
		}
		oldestEvent := pageEvents[len(pageEvents)-1]
		if oldestEvent.GetCreatedAt().Time.Before(startOfDay(targetDay)) {
			break
		}
		listOptions.Page = response.NextPage
	}

	client.logger.Debug(
		eventsFetchedMessageConstant,
		zap.String(logFieldUsernameConstant, username),
		zap.Int(logFieldEventCountConstant, len(collectedEvents)),
	)
	return collectedEvents, nil
}

// recordEvent translates one event into rendered lines on the repository record.
func (client *Client) recordEvent(repositoryRecord *repositoryActivity, repositoryName string, username string, userEvent *github.Event) {
	payload, payloadError := userEvent.ParsePayload()
	if payloadError != nil {
		return
	}

	switch typedPayload := payload.(type) {
	case *github.PushEvent:
		noreplyEmail := fmt.Sprintf(noreplyEmailTemplateConstant, username)
		for _, pushedCommit := range typedPayload.Commits {
			if pushedCommit.GetAuthor().GetEmail() != noreplyEmail && pushedCommit.GetAuthor().GetName() != username {
				continue
			}
			repositoryRecord.commits = append(repositoryRecord.commits, fmt.Sprintf(
				commitLineTemplateConstant,
				firstMessageLine(pushedCommit.GetMessage()),
				abbreviateSHA(pushedCommit.GetSHA()),
				repositoryName, repositoryName, pushedCommit.GetSHA(),
			))
		}
	case *github.PullRequestEvent:
		pullRequest := typedPayload.GetPullRequest()
		repositoryRecord.pullRequests = append(repositoryRecord.pullRequests, fmt.Sprintf(
			pullRequestLineTemplateConstant,
			typedPayload.GetAction(), pullRequest.GetNumber(), pullRequest.GetTitle(),
			repositoryName, repositoryName, pullRequest.GetNumber(),
		))
	case *github.IssuesEvent:
		issue := typedPayload.GetIssue()
		repositoryRecord.issues = append(repositoryRecord.issues, fmt.Sprintf(
			issueLineTemplateConstant,
			typedPayload.GetAction(), issue.GetNumber(), issue.GetTitle(),
			repositoryName, repositoryName, issue.GetNumber(),
		))
	case *github.IssueCommentEvent:
		issue := typedPayload.GetIssue()
		repositoryRecord.comments = append(repositoryRecord.comments, fmt.Sprintf(
			commentLineTemplateConstant,
			issue.GetNumber(), issue.GetTitle(),
			repositoryName, repositoryName, issue.GetNumber(), typedPayload.GetComment().GetID(),
		))
	case *github.PullRequestReviewEvent:
		pullRequest := typedPayload.GetPullRequest()
		repositoryRecord.reviews = append(repositoryRecord.reviews, fmt.Sprintf(
			reviewLineTemplateConstant,
			pullRequest.GetNumber(), pullRequest.GetTitle(), capitalize(typedPayload.GetReview().GetState()),
			repositoryName, repositoryName, pullRequest.GetNumber(),
		))
	}
}

func renderDailyReport(dayText string, repositoryOrder []string, activitiesByRepository map[string]*repositoryActivity) string {
	var reportBuilder strings.Builder
	fmt.Fprintf(&reportBuilder, reportHeaderTemplateConstant, dayText)

	activeRepositories := make([]string, 0, len(repositoryOrder))
	for _, repositoryName := range repositoryOrder {
		if !activitiesByRepository[repositoryName].empty() {
			activeRepositories = append(activeRepositories, repositoryName)
		}
	}

	if len(activeRepositories) == 0 {
		reportBuilder.WriteString(noActivityMessageConstant)
		return reportBuilder.String()
	}

	for _, repositoryName := range activeRepositories {
		repositoryRecord := activitiesByRepository[repositoryName]
		fmt.Fprintf(&reportBuilder, repositorySectionTemplateConstant, repositoryName)
		writeSection(&reportBuilder, commitsSectionHeaderConstant, repositoryRecord.commits)
		writeSection(&reportBuilder, pullRequestsSectionHeaderConstant, repositoryRecord.pullRequests)
		writeSection(&reportBuilder, issuesSectionHeaderConstant, repositoryRecord.issues)
		writeSection(&reportBuilder, commentsSectionHeaderConstant, repositoryRecord.comments)
		writeSection(&reportBuilder, reviewsSectionHeaderConstant, repositoryRecord.reviews)
		reportBuilder.WriteString("\n")
	}

	return reportBuilder.String()
}

func writeSection(reportBuilder *strings.Builder, sectionHeader string, sectionLines []string) {
	if len(sectionLines) == 0 {
		return
	}
	reportBuilder.WriteString(sectionHeader)
	reportBuilder.WriteString(strings.Join(sectionLines, "\n"))
	reportBuilder.WriteString("\n")
}

func sameCalendarDay(eventTime time.Time, targetDay time.Time) bool {
	eventYear, eventMonth, eventDay := eventTime.UTC().Date()
	targetYear, targetMonth, targetDayOfMonth := targetDay.Date()
	return eventYear == targetYear && eventMonth == targetMonth && eventDay == targetDayOfMonth
}

func startOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func abbreviateSHA(commitSHA string) string {
	if len(commitSHA) <= abbreviatedShaLengthConstant {
		return commitSHA
	}
	return commitSHA[:abbreviatedShaLengthConstant]
}

func firstMessageLine(commitMessage string) string {
	if newlineIndex := strings.IndexByte(commitMessage, '\n'); newlineIndex >= 0 {
		commitMessage = commitMessage[:newlineIndex]
	}
	return commitMessage
}

func capitalize(word string) string {
	if len(word) == 0 {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
