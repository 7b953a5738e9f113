// Package githubactivity renders one day of a user's GitHub event stream as a
// work report, serving as the hosted-platform counterpart to local git
// history collection.
package githubactivity
