package worklog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcklmo/worklog/internal/worklog"
)

const (
	testTokenConstant              = "secret-token"
	testDatabaseIdentifierConstant = "database-0001"
	projectDatabaseConstant        = "project-database-0002"
	projectPageIdentifierConstant  = "project-page-0003"
	userIdentifierConstant         = "user-0004"
	createdPageIdentifierConstant  = "page-0005"
	createdPageURLConstant         = "https://example.test/page-0005"
)

// notionStub emulates the subset of the work log API the client touches.
type notionStub struct {
	databaseRequests int
	queryRequests    []map[string]any
	createRequests   []map[string]any
	failCreation     bool
	gatewayFailure   bool
}

func (stub *notionStub) handler(testInstance *testing.T) http.Handler {
	multiplexer := http.NewServeMux()

	multiplexer.HandleFunc("/v1/databases/"+testDatabaseIdentifierConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		stub.databaseRequests++
		require.Equal(testInstance, "Bearer "+testTokenConstant, request.Header.Get("Authorization"))
		require.NotEmpty(testInstance, request.Header.Get("Notion-Version"))
		writeJSON(testInstance, responseWriter, map[string]any{
			"object": "database",
			"properties": map[string]any{
				"Project code": map[string]any{
					"type":     "relation",
					"relation": map[string]any{"database_id": projectDatabaseConstant},
				},
			},
		})
	})

	multiplexer.HandleFunc("/v1/databases/"+projectDatabaseConstant+"/query", func(responseWriter http.ResponseWriter, request *http.Request) {
		var queryBody map[string]any
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&queryBody))
		stub.queryRequests = append(stub.queryRequests, queryBody)
		writeJSON(testInstance, responseWriter, map[string]any{
			"object":  "list",
			"results": []map[string]any{{"id": projectPageIdentifierConstant}},
		})
	})

	multiplexer.HandleFunc("/v1/users", func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSON(testInstance, responseWriter, map[string]any{
			"object": "list",
			"results": []map[string]any{
				{"id": "someone-else", "name": "Somebody Else"},
				{"id": userIdentifierConstant, "name": "Jane Doe"},
			},
			"has_more": false,
		})
	})

	multiplexer.HandleFunc("/v1/pages", func(responseWriter http.ResponseWriter, request *http.Request) {
		var createBody map[string]any
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&createBody))
		stub.createRequests = append(stub.createRequests, createBody)
		if stub.gatewayFailure {
			responseWriter.Header().Set("Content-Type", "text/html")
			responseWriter.WriteHeader(http.StatusBadGateway)
			_, _ = responseWriter.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
			return
		}
		if stub.failCreation {
			writeJSON(testInstance, responseWriter, map[string]any{
				"object":  "error",
				"message": "validation failed",
			})
			return
		}
		writeJSON(testInstance, responseWriter, map[string]any{
			"object": "page",
			"id":     createdPageIdentifierConstant,
			"url":    createdPageURLConstant,
		})
	})

	return multiplexer
}

func mustParseDate(testInstance *testing.T, dateText string) time.Time {
	parsedDate, parseError := time.Parse("2006-01-02", dateText)
	require.NoError(testInstance, parseError)
	return parsedDate
}

func writeJSON(testInstance *testing.T, responseWriter http.ResponseWriter, payload map[string]any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(payload))
}

func newStubClient(testInstance *testing.T, stub *notionStub) *worklog.Client {
	server := httptest.NewServer(stub.handler(testInstance))
	testInstance.Cleanup(server.Close)

	client, clientError := worklog.NewClient(context.Background(), worklog.ClientConfiguration{
		Token:              testTokenConstant,
		DatabaseIdentifier: testDatabaseIdentifierConstant,
		BaseURL:            server.URL,
	}, nil)
	require.NoError(testInstance, clientError)
	require.Equal(testInstance, 1, stub.databaseRequests)
	return client
}

func TestNewClientValidatesConfiguration(testInstance *testing.T) {
	_, missingTokenError := worklog.NewClient(context.Background(), worklog.ClientConfiguration{DatabaseIdentifier: testDatabaseIdentifierConstant}, nil)
	require.ErrorIs(testInstance, missingTokenError, worklog.ErrMissingToken)

	_, missingDatabaseError := worklog.NewClient(context.Background(), worklog.ClientConfiguration{Token: testTokenConstant}, nil)
	require.ErrorIs(testInstance, missingDatabaseError, worklog.ErrMissingDatabase)
}

func TestNewClientRejectsUnreachableDatabase(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(responseWriter).Encode(map[string]any{
			"object":  "error",
			"message": "Could not find database",
		})
	}))
	testInstance.Cleanup(server.Close)

	_, clientError := worklog.NewClient(context.Background(), worklog.ClientConfiguration{
		Token:              testTokenConstant,
		DatabaseIdentifier: testDatabaseIdentifierConstant,
		BaseURL:            server.URL,
	}, nil)

	require.Error(testInstance, clientError)
	var apiError *worklog.APIError
	require.ErrorAs(testInstance, clientError, &apiError)
	require.Equal(testInstance, "Could not find database", apiError.Message)
}

func TestCreateWorkRecordResolvesReferencesAndDeliversBody(testInstance *testing.T) {
	stub := &notionStub{}
	client := newStubClient(testInstance, stub)

	createdRecord, creationError := client.CreateWorkRecord(context.Background(), worklog.WorkRecord{
		Description:   "# Work Report for 2025-01-02\n\n* alpha: work happened\n",
		Date:          mustParseDate(testInstance, "2025-01-02"),
		DurationHours: 6,
		ProjectName:   "Danske Commodities",
		UserName:      "Jane Doe",
	})

	require.NoError(testInstance, creationError)
	require.Equal(testInstance, createdPageIdentifierConstant, createdRecord.Identifier)
	require.Equal(testInstance, createdPageURLConstant, createdRecord.URL)

	require.Len(testInstance, stub.queryRequests, 1)
	require.Len(testInstance, stub.createRequests, 1)

	createBody := stub.createRequests[0]
	parent := createBody["parent"].(map[string]any)
	require.Equal(testInstance, testDatabaseIdentifierConstant, parent["database_id"])

	properties := createBody["properties"].(map[string]any)
	dateProperty := properties["Date"].(map[string]any)["date"].(map[string]any)
	require.Equal(testInstance, "2025-01-02", dateProperty["start"])
	require.Equal(testInstance, float64(6), properties["Hours"].(map[string]any)["number"])

	relationEntries := properties["Project code"].(map[string]any)["relation"].([]any)
	require.Len(testInstance, relationEntries, 1)
	require.Equal(testInstance, projectPageIdentifierConstant, relationEntries[0].(map[string]any)["id"])

	peopleEntries := properties["Created by"].(map[string]any)["people"].([]any)
	require.Len(testInstance, peopleEntries, 1)
	require.Equal(testInstance, userIdentifierConstant, peopleEntries[0].(map[string]any)["id"])

	children := createBody["children"].([]any)
	require.Len(testInstance, children, 1)
	paragraph := children[0].(map[string]any)["paragraph"].(map[string]any)
	richText := paragraph["rich_text"].([]any)
	textContent := richText[0].(map[string]any)["text"].(map[string]any)["content"]
	require.Contains(testInstance, textContent, "Work Report for 2025-01-02")
}

func TestCreateWorkRecordClassifiesNonJSONFailureByStatus(testInstance *testing.T) {
	stub := &notionStub{gatewayFailure: true}
	client := newStubClient(testInstance, stub)

	_, creationError := client.CreateWorkRecord(context.Background(), worklog.WorkRecord{
		Description: "body",
		Date:        mustParseDate(testInstance, "2025-01-02"),
		ProjectName: "Danske Commodities",
		UserName:    "Jane Doe",
	})

	require.Error(testInstance, creationError)
	var apiError *worklog.APIError
	require.ErrorAs(testInstance, creationError, &apiError)
	require.Equal(testInstance, http.StatusBadGateway, apiError.StatusCode)
	require.Equal(testInstance, http.StatusText(http.StatusBadGateway), apiError.Message)
}

func TestCreateWorkRecordSurfacesAPIError(testInstance *testing.T) {
	stub := &notionStub{failCreation: true}
	client := newStubClient(testInstance, stub)

	_, creationError := client.CreateWorkRecord(context.Background(), worklog.WorkRecord{
		Description: "body",
		Date:        mustParseDate(testInstance, "2025-01-02"),
		ProjectName: "Danske Commodities",
		UserName:    "Jane Doe",
	})

	require.Error(testInstance, creationError)
	var apiError *worklog.APIError
	require.ErrorAs(testInstance, creationError, &apiError)
	require.Equal(testInstance, "validation failed", apiError.Message)
}
