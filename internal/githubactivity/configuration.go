package githubactivity

import "strings"

// CommandConfiguration captures configuration values for the github-events command.
type CommandConfiguration struct {
	Username    string `mapstructure:"username"`
	GithubToken string `mapstructure:"github_token"`
}

// DefaultCommandConfiguration provides baseline configuration values for event reports.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Username:    "",
		GithubToken: "",
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.Username = strings.TrimSpace(configuration.Username)
	sanitized.GithubToken = strings.TrimSpace(configuration.GithubToken)

	return sanitized
}
