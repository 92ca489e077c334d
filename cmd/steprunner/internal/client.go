package internal

import (
	"os"

	"github.com/google/go-github/v63/github"
)

// githubClient returns an authenticated client when
// STEPRUNNER_GITHUB_TOKEN is set, and an unauthenticated one otherwise;
// public namespace manifests resolve fine without a token, at GitHub's
// lower unauthenticated rate limit.
func githubClient() *github.Client {
	token := os.Getenv("STEPRUNNER_GITHUB_TOKEN")
	if token == "" {
		return github.NewClient(nil)
	}
	return github.NewClient(nil).WithAuthToken(token)
}
