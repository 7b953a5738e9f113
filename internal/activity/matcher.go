package activity

import "strings"

// MatchesAuthorIdentity reports whether a commit's author identity belongs to
// the target identity.
//
// Matching is case-insensitive and deliberately permissive so the same human
// is recognized across differently configured machines: the target may equal
// or be contained in the author name, be contained in the author email, or be
// the email's prefix.
func MatchesAuthorIdentity(targetIdentity string, authorName string, authorEmail string) bool {
	loweredTarget := strings.ToLower(strings.TrimSpace(targetIdentity))
	if len(loweredTarget) == 0 {
		return false
	}

	loweredAuthorName := strings.ToLower(authorName)
	loweredAuthorEmail := strings.ToLower(authorEmail)

	if loweredAuthorName == loweredTarget || strings.Contains(loweredAuthorName, loweredTarget) {
		return true
	}
	if strings.Contains(loweredAuthorEmail, loweredTarget) || strings.HasPrefix(loweredAuthorEmail, loweredTarget) {
		return true
	}
	return false
}

// FilterCommitsByAuthor keeps the commits whose author matches the target
// identity, preserving input order.
func FilterCommitsByAuthor(commits []Commit, targetIdentity string) []Commit {
	var matchingCommits []Commit
	for _, candidateCommit := range commits {
		if MatchesAuthorIdentity(targetIdentity, candidateCommit.AuthorName, candidateCommit.AuthorEmail) {
			matchingCommits = append(matchingCommits, candidateCommit)
		}
	}
	return matchingCommits
}
