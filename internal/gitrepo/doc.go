// Package gitrepo offers repository-level helpers built on top of git
// subprocess execution, including remote URL lookup and repository naming.
package gitrepo
