package activity

import "strings"

const (
	defaultMaximumDepthConstant    = 3
	defaultOutputDirectoryConstant = "."
)

// CommandConfiguration captures configuration values for the report command.
type CommandConfiguration struct {
	RootPath        string `mapstructure:"root"`
	AuthorIdentity  string `mapstructure:"author"`
	StartDate       string `mapstructure:"since"`
	EndDate         string `mapstructure:"until"`
	MaximumDepth    int    `mapstructure:"max_depth"`
	OutputDirectory string `mapstructure:"output_dir"`
	Debug           bool   `mapstructure:"debug"`
}

// DefaultCommandConfiguration provides baseline configuration values for report runs.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RootPath:        "",
		AuthorIdentity:  "",
		StartDate:       "",
		EndDate:         "",
		MaximumDepth:    defaultMaximumDepthConstant,
		OutputDirectory: defaultOutputDirectoryConstant,
		Debug:           false,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RootPath = strings.TrimSpace(configuration.RootPath)
	sanitized.AuthorIdentity = strings.TrimSpace(configuration.AuthorIdentity)
	sanitized.StartDate = strings.TrimSpace(configuration.StartDate)
	sanitized.EndDate = strings.TrimSpace(configuration.EndDate)
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)

	return sanitized
}
