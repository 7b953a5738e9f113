package worklog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcklmo/worklog/internal/activity"
	"github.com/mcklmo/worklog/internal/worklog"
)

type fakeReportRunner struct {
	documents        activity.ReportDocuments
	runError         error
	receivedRequests []activity.ReportRequest
}

func (runner *fakeReportRunner) Run(_ context.Context, request activity.ReportRequest) (activity.ReportDocuments, error) {
	runner.receivedRequests = append(runner.receivedRequests, request)
	if runner.runError != nil {
		return activity.ReportDocuments{}, runner.runError
	}
	return runner.documents, nil
}

type fakeRecordSink struct {
	createdRecord   worklog.CreatedRecord
	deliveryError   error
	receivedRecords []worklog.WorkRecord
}

func (sink *fakeRecordSink) CreateWorkRecord(_ context.Context, record worklog.WorkRecord) (worklog.CreatedRecord, error) {
	sink.receivedRecords = append(sink.receivedRecords, record)
	if sink.deliveryError != nil {
		return worklog.CreatedRecord{}, sink.deliveryError
	}
	return sink.createdRecord, nil
}

func buildRecordCommand(testInstance *testing.T, runner *fakeReportRunner, sink *fakeRecordSink) (*bytes.Buffer, func(arguments ...string) error) {
	builder := &worklog.CommandBuilder{
		ReportRunner: runner,
		SinkFactory: func(_ context.Context, _ worklog.ClientConfiguration, _ *zap.Logger) (worklog.RecordSink, error) {
			return sink, nil
		},
		ConfigurationProvider: func() worklog.CommandConfiguration {
			return worklog.CommandConfiguration{
				RootPath:       "/tmp/projects",
				AuthorIdentity: "john",
				ProjectName:    "Danske Commodities",
				UserName:       "Jane Doe",
				DurationHours:  8,
			}
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetContext(context.Background())

	return &outputBuffer, func(arguments ...string) error {
		command.SetArgs(arguments)
		return command.Execute()
	}
}

func TestRecordCommandDeliversDayReport(testInstance *testing.T) {
	dayReportText := "# Work Report for 2025-01-02\n\n* alpha: work happened\n"
	runner := &fakeReportRunner{
		documents: activity.ReportDocuments{
			DayReports: map[string]string{"2025-01-02": dayReportText},
		},
	}
	sink := &fakeRecordSink{
		createdRecord: worklog.CreatedRecord{Identifier: "page-1", URL: "https://example.test/page-1"},
	}

	outputBuffer, execute := buildRecordCommand(testInstance, runner, sink)
	executionError := execute("--date", "2025-01-02")

	require.NoError(testInstance, executionError)

	require.Len(testInstance, runner.receivedRequests, 1)
	request := runner.receivedRequests[0]
	require.Equal(testInstance, "/tmp/projects", request.RootPath)
	require.Equal(testInstance, "john", request.TargetIdentity)
	require.Equal(testInstance, "2025-01-01", request.Window.SinceText())
	require.Equal(testInstance, "2025-01-03", request.Window.UntilText())

	require.Len(testInstance, sink.receivedRecords, 1)
	deliveredRecord := sink.receivedRecords[0]
	require.Equal(testInstance, dayReportText, deliveredRecord.Description)
	require.Equal(testInstance, 8, deliveredRecord.DurationHours)
	require.Equal(testInstance, "Danske Commodities", deliveredRecord.ProjectName)
	require.Equal(testInstance, "Jane Doe", deliveredRecord.UserName)

	require.Contains(testInstance, outputBuffer.String(), "Successfully created work record: page-1")
	require.Contains(testInstance, outputBuffer.String(), "URL: https://example.test/page-1")
}

func TestRecordCommandFailsWithoutWorkForDate(testInstance *testing.T) {
	runner := &fakeReportRunner{
		documents: activity.ReportDocuments{
			DayReports: map[string]string{"2025-01-03": "other day"},
		},
	}
	sink := &fakeRecordSink{}

	_, execute := buildRecordCommand(testInstance, runner, sink)
	executionError := execute("--date", "2025-01-02")

	require.Error(testInstance, executionError)
	require.ErrorContains(testInstance, executionError, "no work found for 2025-01-02")
	require.Empty(testInstance, sink.receivedRecords)
}

func TestRecordCommandScenarios(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		arguments            []string
		runner               *fakeReportRunner
		expectedErrorMessage string
	}{
		{
			name:                 "malformed_date_fails",
			arguments:            []string{"--date", "02.01.2025"},
			runner:               &fakeReportRunner{},
			expectedErrorMessage: "invalid date",
		},
		{
			name:                 "report_failure_propagates",
			arguments:            []string{"--date", "2025-01-02"},
			runner:               &fakeReportRunner{runError: errors.New("no git repositories found under /tmp/projects")},
			expectedErrorMessage: "work record delivery failed",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			sink := &fakeRecordSink{}
			_, execute := buildRecordCommand(subtestInstance, testCase.runner, sink)

			executionError := execute(testCase.arguments...)

			require.Error(subtestInstance, executionError)
			require.ErrorContains(subtestInstance, executionError, testCase.expectedErrorMessage)
			require.Empty(subtestInstance, sink.receivedRecords)
		})
	}
}
