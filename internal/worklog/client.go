package worklog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURLConstant                = "https://api.notion.com"
	notionVersionHeaderConstant           = "Notion-Version"
	notionVersionValueConstant            = "2022-06-28"
	authorizationHeaderConstant           = "Authorization"
	authorizationValueTemplateConstant    = "Bearer %s"
	contentTypeHeaderConstant             = "Content-Type"
	contentTypeJSONConstant               = "application/json"
	databasePathTemplateConstant          = "/v1/databases/%s"
	databaseQueryPathTemplateConstant     = "/v1/databases/%s/query"
	pagesPathConstant                     = "/v1/pages"
	usersPathConstant                     = "/v1/users"
	errorObjectTypeConstant               = "error"
	relationPropertyTypeConstant          = "relation"
	titleFilterPropertyConstant           = "title"
	projectRelationPropertyNameConstant   = "Project code"
	createdByPropertyNameConstant         = "Created by"
	datePropertyNameConstant              = "Date"
	hoursPropertyNameConstant             = "Hours"
	userObjectTypeConstant                = "user"
	paragraphBlockTypeConstant            = "paragraph"
	blockObjectTypeConstant               = "block"
	textRichTextTypeConstant              = "text"
	recordDateLayoutConstant              = "2006-01-02"
	defaultRequestTimeoutConstant         = 30 * time.Second
	missingTokenMessageConstant           = "work log token not configured"
	missingDatabaseMessageConstant        = "work log database identifier not configured"
	requestFailedTemplateConstant         = "work log request %s %s failed: %w"
	decodeFailedTemplateConstant          = "work log response for %s could not be decoded: %w"
	apiErrorTemplateConstant              = "work log API error (%d): %s"
	pageNotFoundTemplateConstant          = "no page titled %q found in database %s"
	userNotFoundTemplateConstant          = "no work log user named %q"
	relationNotConfiguredTemplateConstant = "database property %q is not a relation"
	databaseValidatedMessageConstant      = "work log database validated"
	workRecordCreatedMessageConstant      = "work record created"
	logFieldDatabaseIdentifierConstant    = "database_id"
	logFieldRecordIdentifierConstant      = "record_id"
)

// Sentinel errors for construction-time validation.
var (
	ErrMissingToken    = errors.New(missingTokenMessageConstant)
	ErrMissingDatabase = errors.New(missingDatabaseMessageConstant)
)

// APIError carries a non-success response returned by the work log service.
type APIError struct {
	StatusCode int
	Message    string
}

// Error describes the API failure.
func (apiError *APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, apiError.Message)
}

// WorkRecord is one unit of delivered work-log content.
type WorkRecord struct {
	Description   string
	Date          time.Time
	DurationHours int
	ProjectName   string
	UserName      string
}

// CreatedRecord identifies the page created for a delivered work record.
type CreatedRecord struct {
	Identifier string
	URL        string
}

// ClientConfiguration carries the settings required to reach the work log service.
type ClientConfiguration struct {
	Token              string
	DatabaseIdentifier string
	BaseURL            string
	HTTPClient         *http.Client
}

// Client delivers work records to a Notion-style database over REST.
//
// Construction validates the target database so misconfiguration surfaces
// before any report work is spent.
type Client struct {
	httpClient         *http.Client
	baseURL            string
	token              string
	databaseIdentifier string
	databaseSchema     databaseSchema
	logger             *zap.Logger
}

type databaseSchema struct {
	Properties map[string]propertySchema `json:"properties"`
}

type propertySchema struct {
	Type     string         `json:"type"`
	Relation relationSchema `json:"relation"`
}

type relationSchema struct {
	DatabaseIdentifier string `json:"database_id"`
}

type apiEnvelope struct {
	Object  string `json:"object"`
	Message string `json:"message"`
}

// NewClient constructs a Client and validates database access.
func NewClient(executionContext context.Context, configuration ClientConfiguration, logger *zap.Logger) (*Client, error) {
	if len(configuration.Token) == 0 {
		return nil, ErrMissingToken
	}
	if len(configuration.DatabaseIdentifier) == 0 {
		return nil, ErrMissingDatabase
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := configuration.BaseURL
	if len(baseURL) == 0 {
		baseURL = defaultBaseURLConstant
	}
	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}

	client := &Client{
		httpClient:         httpClient,
		baseURL:            baseURL,
		token:              configuration.Token,
		databaseIdentifier: configuration.DatabaseIdentifier,
		logger:             logger,
	}

	if validationError := client.validateDatabase(executionContext); validationError != nil {
		return nil, validationError
	}
	return client, nil
}

// validateDatabase retrieves the database schema and keeps it for relation lookups.
func (client *Client) validateDatabase(executionContext context.Context) error {
	var schema databaseSchema
	requestPath := fmt.Sprintf(databasePathTemplateConstant, client.databaseIdentifier)
	if requestError := client.do(executionContext, http.MethodGet, requestPath, nil, &schema); requestError != nil {
		return requestError
	}
	client.databaseSchema = schema
	client.logger.Debug(databaseValidatedMessageConstant, zap.String(logFieldDatabaseIdentifierConstant, client.databaseIdentifier))
	return nil
}

// FindPageByTitle locates a page inside the given database by exact title match.
func (client *Client) FindPageByTitle(executionContext context.Context, databaseIdentifier string, pageTitle string) (string, error) {
	queryBody := map[string]any{
		"filter": map[string]any{
			"property":  titleFilterPropertyConstant,
			"rich_text": map[string]any{"equals": pageTitle},
		},
	}

	var queryResponse struct {
		Results []struct {
			Identifier string `json:"id"`
		} `json:"results"`
	}
	requestPath := fmt.Sprintf(databaseQueryPathTemplateConstant, databaseIdentifier)
	if requestError := client.do(executionContext, http.MethodPost, requestPath, queryBody, &queryResponse); requestError != nil {
		return "", requestError
	}

	if len(queryResponse.Results) == 0 {
		return "", fmt.Errorf(pageNotFoundTemplateConstant, pageTitle, databaseIdentifier)
	}
	return queryResponse.Results[0].Identifier, nil
}

// relationDatabaseIdentifier resolves the database a relation property points at.
func (client *Client) relationDatabaseIdentifier(propertyName string) (string, error) {
	property, exists := client.databaseSchema.Properties[propertyName]
	if !exists || property.Type != relationPropertyTypeConstant {
		return "", fmt.Errorf(relationNotConfiguredTemplateConstant, propertyName)
	}
	return property.Relation.DatabaseIdentifier, nil
}

// lookupUserIdentifier pages through workspace users to match a display name.
func (client *Client) lookupUserIdentifier(executionContext context.Context, userName string) (string, error) {
	requestPath := usersPathConstant
	for {
		var usersResponse struct {
			Results []struct {
				Identifier string `json:"id"`
				Name       string `json:"name"`
			} `json:"results"`
			HasMore    bool   `json:"has_more"`
			NextCursor string `json:"next_cursor"`
		}
		if requestError := client.do(executionContext, http.MethodGet, requestPath, nil, &usersResponse); requestError != nil {
			return "", requestError
		}

		for _, workspaceUser := range usersResponse.Results {
			if workspaceUser.Name == userName {
				return workspaceUser.Identifier, nil
			}
		}

		if !usersResponse.HasMore {
			return "", fmt.Errorf(userNotFoundTemplateConstant, userName)
		}
		requestPath = usersPathConstant + "?start_cursor=" + usersResponse.NextCursor
	}
}

// CreateWorkRecord delivers one record as a new page in the configured database.
//
// The project and user references are resolved by title lookup before the page
// is created; the record body travels as a paragraph block child.
func (client *Client) CreateWorkRecord(executionContext context.Context, record WorkRecord) (CreatedRecord, error) {
	projectDatabaseIdentifier, relationError := client.relationDatabaseIdentifier(projectRelationPropertyNameConstant)
	if relationError != nil {
		return CreatedRecord{}, relationError
	}

	projectPageIdentifier, projectError := client.FindPageByTitle(executionContext, projectDatabaseIdentifier, record.ProjectName)
	if projectError != nil {
		return CreatedRecord{}, projectError
	}

	userIdentifier, userError := client.lookupUserIdentifier(executionContext, record.UserName)
	if userError != nil {
		return CreatedRecord{}, userError
	}

	createBody := map[string]any{
		"parent": map[string]any{"database_id": client.databaseIdentifier},
		"properties": map[string]any{
			createdByPropertyNameConstant: map[string]any{
				"people": []map[string]any{{"object": userObjectTypeConstant, "id": userIdentifier}},
			},
			datePropertyNameConstant: map[string]any{
				"date": map[string]any{"start": record.Date.Format(recordDateLayoutConstant)},
			},
			hoursPropertyNameConstant: map[string]any{"number": record.DurationHours},
			projectRelationPropertyNameConstant: map[string]any{
				"relation": []map[string]any{{"id": projectPageIdentifier}},
			},
		},
		"children": []map[string]any{
			{
				"object": blockObjectTypeConstant,
				"type":   paragraphBlockTypeConstant,
				paragraphBlockTypeConstant: map[string]any{
					"rich_text": []map[string]any{
						{
							"type": textRichTextTypeConstant,
							"text": map[string]any{"content": record.Description},
						},
					},
				},
			},
		},
	}

	var createResponse struct {
		Identifier string `json:"id"`
		URL        string `json:"url"`
	}
	if requestError := client.do(executionContext, http.MethodPost, pagesPathConstant, createBody, &createResponse); requestError != nil {
		return CreatedRecord{}, requestError
	}

	createdRecord := CreatedRecord{Identifier: createResponse.Identifier, URL: createResponse.URL}
	client.logger.Debug(workRecordCreatedMessageConstant, zap.String(logFieldRecordIdentifierConstant, createdRecord.Identifier))
	return createdRecord, nil
}

// do executes one JSON request against the work log API and decodes the
// response into target. API-level error envelopes become *APIError values.
func (client *Client) do(executionContext context.Context, method string, requestPath string, requestBody any, responseTarget any) error {
	var bodyReader *bytes.Reader
	if requestBody != nil {
		encodedBody, encodeError := json.Marshal(requestBody)
		if encodeError != nil {
			return fmt.Errorf(requestFailedTemplateConstant, method, requestPath, encodeError)
		}
		bodyReader = bytes.NewReader(encodedBody)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	request, requestError := http.NewRequestWithContext(executionContext, method, client.baseURL+requestPath, bodyReader)
	if requestError != nil {
		return fmt.Errorf(requestFailedTemplateConstant, method, requestPath, requestError)
	}
	request.Header.Set(authorizationHeaderConstant, fmt.Sprintf(authorizationValueTemplateConstant, client.token))
	request.Header.Set(notionVersionHeaderConstant, notionVersionValueConstant)
	if requestBody != nil {
		request.Header.Set(contentTypeHeaderConstant, contentTypeJSONConstant)
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return fmt.Errorf(requestFailedTemplateConstant, method, requestPath, responseError)
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return fmt.Errorf(requestFailedTemplateConstant, method, requestPath, readError)
	}

	var envelope apiEnvelope
	if envelopeError := json.Unmarshal(responseBody, &envelope); envelopeError == nil && envelope.Object == errorObjectTypeConstant {
		return &APIError{StatusCode: response.StatusCode, Message: envelope.Message}
	}

	// Intermediaries can answer with empty or non-JSON bodies; the status code
	// still classifies the failure.
	if response.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: response.StatusCode, Message: http.StatusText(response.StatusCode)}
	}

	if responseTarget != nil {
		if decodeError := json.Unmarshal(responseBody, responseTarget); decodeError != nil {
			return fmt.Errorf(decodeFailedTemplateConstant, requestPath, decodeError)
		}
	}
	return nil
}
