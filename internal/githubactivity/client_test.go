package githubactivity_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcklmo/worklog/internal/githubactivity"
)

const (
	eventsUsernameConstant   = "mcklmo"
	eventsTargetDayConstant  = "2025-01-02"
	eventsRepositoryConstant = "mcklmo/worklog"
)

func buildEventsClient(testInstance *testing.T, eventPages ...[]map[string]any) *githubactivity.Client {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, fmt.Sprintf("/users/%s/events", eventsUsernameConstant), request.URL.Path)

		pageNumber := 1
		if pageParameter := request.URL.Query().Get("page"); len(pageParameter) > 0 {
			_, scanError := fmt.Sscanf(pageParameter, "%d", &pageNumber)
			require.NoError(testInstance, scanError)
		}
		require.LessOrEqual(testInstance, pageNumber, len(eventPages))

		if pageNumber < len(eventPages) {
			nextPageURL := fmt.Sprintf("<%s/users/%s/events?page=%d>; rel=\"next\"", server.URL, eventsUsernameConstant, pageNumber+1)
			responseWriter.Header().Set("Link", nextPageURL)
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(eventPages[pageNumber-1]))
	}))
	testInstance.Cleanup(server.Close)

	client, clientError := githubactivity.NewClient(githubactivity.ClientConfiguration{BaseURL: server.URL}, nil)
	require.NoError(testInstance, clientError)
	return client
}

func pushEvent(createdAt string, authorName string, message string, sha string) map[string]any {
	return map[string]any{
		"type":       "PushEvent",
		"created_at": createdAt,
		"repo":       map[string]any{"name": eventsRepositoryConstant},
		"payload": map[string]any{
			"commits": []map[string]any{
				{
					"sha":     sha,
					"message": message,
					"author":  map[string]any{"name": authorName, "email": authorName + "@example.com"},
				},
			},
		},
	}
}

func TestBuildDailyReportGroupsEventsByRepository(testInstance *testing.T) {
	events := []map[string]any{
		pushEvent("2025-01-02T10:00:00Z", eventsUsernameConstant, "Add worklog sink\n\nLonger body", "abc1234def5678"),
		pushEvent("2025-01-02T11:00:00Z", "someone-else", "Unrelated commit", "ffff000011112222"),
		pushEvent("2025-01-03T09:00:00Z", eventsUsernameConstant, "Different day", "9999aaaabbbbcccc"),
		{
			"type":       "PullRequestEvent",
			"created_at": "2025-01-02T12:00:00Z",
			"repo":       map[string]any{"name": eventsRepositoryConstant},
			"payload": map[string]any{
				"action":       "opened",
				"pull_request": map[string]any{"number": 42, "title": "Add day bucketing"},
			},
		},
		{
			"type":       "IssueCommentEvent",
			"created_at": "2025-01-02T13:00:00Z",
			"repo":       map[string]any{"name": eventsRepositoryConstant},
			"payload": map[string]any{
				"issue":   map[string]any{"number": 7, "title": "Timestamps drift"},
				"comment": map[string]any{"id": 98765},
			},
		},
	}

	client := buildEventsClient(testInstance, events)

	renderedReport, reportError := client.BuildDailyReport(context.Background(), eventsUsernameConstant, eventsTargetDayConstant)

	require.NoError(testInstance, reportError)
	require.Contains(testInstance, renderedReport, "--- GitHub Work Report for 2025-01-02 ---")
	require.Contains(testInstance, renderedReport, "### Repository: "+eventsRepositoryConstant)
	require.Contains(testInstance, renderedReport, "- Commit: 'Add worklog sink' (abc1234)")
	require.Contains(testInstance, renderedReport, "- PR opened: #42 - 'Add day bucketing'")
	require.Contains(testInstance, renderedReport, "- Commented on issue #7: 'Timestamps drift'")
	require.Contains(testInstance, renderedReport, "#issuecomment-98765")

	require.NotContains(testInstance, renderedReport, "Unrelated commit")
	require.NotContains(testInstance, renderedReport, "Different day")
}

func TestBuildDailyReportFollowsPagination(testInstance *testing.T) {
	firstPage := []map[string]any{
		pushEvent("2025-01-02T18:00:00Z", eventsUsernameConstant, "Evening commit", "1111222233334444"),
	}
	secondPage := []map[string]any{
		pushEvent("2025-01-02T08:00:00Z", eventsUsernameConstant, "Morning commit", "5555666677778888"),
	}

	client := buildEventsClient(testInstance, firstPage, secondPage)

	renderedReport, reportError := client.BuildDailyReport(context.Background(), eventsUsernameConstant, eventsTargetDayConstant)

	require.NoError(testInstance, reportError)
	require.Contains(testInstance, renderedReport, "Evening commit")
	require.Contains(testInstance, renderedReport, "Morning commit")
}

func TestBuildDailyReportWithoutActivity(testInstance *testing.T) {
	client := buildEventsClient(testInstance, []map[string]any{})

	renderedReport, reportError := client.BuildDailyReport(context.Background(), eventsUsernameConstant, eventsTargetDayConstant)

	require.NoError(testInstance, reportError)
	require.Contains(testInstance, renderedReport, "No significant GitHub activity found for this day.")
}

func TestBuildDailyReportRejectsMalformedDay(testInstance *testing.T) {
	client := buildEventsClient(testInstance, []map[string]any{})

	_, reportError := client.BuildDailyReport(context.Background(), eventsUsernameConstant, "02.01.2025")

	require.Error(testInstance, reportError)
	require.ErrorContains(testInstance, reportError, "invalid day")
}
