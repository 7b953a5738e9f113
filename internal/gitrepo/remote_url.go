package gitrepo

import (
	"path/filepath"
	"strings"
)

const (
	gitSuffixConstant        = ".git"
	pathSeparatorConstant    = "/"
	sshPathDelimiterConstant = ":"
	trailingSeparatorCutSet  = "/"
)

// RepositoryNameFromRemoteURL extracts the final path segment of a git remote
// URL without its .git suffix. Both ssh-style (git@host:owner/name.git) and
// https-style (https://host/owner/name.git) remotes are supported. An empty
// string signals the name could not be derived.
func RepositoryNameFromRemoteURL(remoteURL string) string {
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	trimmedRemoteURL = strings.TrimRight(trimmedRemoteURL, trailingSeparatorCutSet)
	if len(trimmedRemoteURL) == 0 {
		return ""
	}

	trimmedRemoteURL = strings.TrimSuffix(trimmedRemoteURL, gitSuffixConstant)

	lastSlashIndex := strings.LastIndex(trimmedRemoteURL, pathSeparatorConstant)
	if lastSlashIndex >= 0 {
		trimmedRemoteURL = trimmedRemoteURL[lastSlashIndex+1:]
	}

	lastColonIndex := strings.LastIndex(trimmedRemoteURL, sshPathDelimiterConstant)
	if lastColonIndex >= 0 {
		trimmedRemoteURL = trimmedRemoteURL[lastColonIndex+1:]
	}

	return strings.TrimSpace(trimmedRemoteURL)
}

func baseNameOf(repositoryPath string) string {
	return filepath.Base(strings.TrimRight(repositoryPath, trailingSeparatorCutSet))
}
