// Package discovery locates git repositories beneath filesystem roots.
package discovery
