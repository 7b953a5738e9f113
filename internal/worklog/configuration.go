package worklog

import "strings"

const (
	defaultRecordMaximumDepthConstant = 2
	defaultOutputDirectoryConstant    = "."
)

// CommandConfiguration captures configuration values for the record command.
type CommandConfiguration struct {
	NotionToken        string `mapstructure:"notion_token"`
	DatabaseIdentifier string `mapstructure:"database_id"`
	RootPath           string `mapstructure:"root"`
	AuthorIdentity     string `mapstructure:"author"`
	MaximumDepth       int    `mapstructure:"max_depth"`
	OutputDirectory    string `mapstructure:"output_dir"`
	ProjectName        string `mapstructure:"project"`
	UserName           string `mapstructure:"user_name"`
	DurationHours      int    `mapstructure:"duration_hours"`
}

// DefaultCommandConfiguration provides baseline configuration values for record runs.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		NotionToken:        "",
		DatabaseIdentifier: "",
		RootPath:           "",
		AuthorIdentity:     "",
		MaximumDepth:       defaultRecordMaximumDepthConstant,
		OutputDirectory:    defaultOutputDirectoryConstant,
		ProjectName:        "",
		UserName:           "",
		DurationHours:      0,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.NotionToken = strings.TrimSpace(configuration.NotionToken)
	sanitized.DatabaseIdentifier = strings.TrimSpace(configuration.DatabaseIdentifier)
	sanitized.RootPath = strings.TrimSpace(configuration.RootPath)
	sanitized.AuthorIdentity = strings.TrimSpace(configuration.AuthorIdentity)
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	sanitized.ProjectName = strings.TrimSpace(configuration.ProjectName)
	sanitized.UserName = strings.TrimSpace(configuration.UserName)

	return sanitized
}
