// Package git wraps the subset of git plumbing the catalog's GitHub
// namespace source needs: a cached, ref-pinned checkout of a remote
// manifest repository.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Clone clones a repository from the given url into the given path.
func Clone(url, path string) error {
	cmd := exec.Command("git", "clone", url, path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to clone repo %s: %s", url, string(output))
	}
	return nil
}

// CheckoutPath returns the local directory holding a ref-pinned checkout of
// owner/repo under cacheDir, cloning it first if it is not already present.
// Checkouts are cached by ref, so repeated Enumerate calls against the same
// namespace during one process lifetime never re-clone.
func CheckoutPath(cacheDir, owner, repo, ref string) (string, error) {
	dest := filepath.Join(cacheDir, owner, repo, ref)
	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		return dest, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory for %s/%s: %w", owner, repo, err)
	}

	url := fmt.Sprintf("https://github.com/%s/%s.git", owner, repo)
	if err := Clone(url, dest); err != nil {
		return "", err
	}

	cmd := exec.Command("git", "-C", dest, "checkout", ref)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("checking out ref %q in %s/%s: %s", ref, owner, repo, string(output))
	}
	return dest, nil
}
