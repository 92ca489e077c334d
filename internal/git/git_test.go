package git_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/bramford/steprunner/internal/git"
)

func TestClone(t *testing.T) {
	tmpDir := t.TempDir()

	bareRepoPath := filepath.Join(tmpDir, "bare.git")
	cmd := exec.Command("git", "init", "--bare", bareRepoPath)
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to create bare repo: %v", err)
	}

	clonePath := filepath.Join(tmpDir, "clone")
	if err := git.Clone(bareRepoPath, clonePath); err != nil {
		t.Fatalf("failed to clone repo: %v", err)
	}

	if _, err := os.Stat(filepath.Join(clonePath, ".git")); os.IsNotExist(err) {
		t.Errorf(".git directory not found in cloned repo")
	}
}

func TestCheckoutPathCacheHit(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	existing := filepath.Join(cacheDir, "owner", "repo", "main")
	if err := os.MkdirAll(filepath.Join(existing, ".git"), 0o755); err != nil {
		t.Fatalf("failed to seed cache dir: %v", err)
	}

	path, err := git.CheckoutPath(cacheDir, "owner", "repo", "main")
	if err != nil {
		t.Fatalf("expected cache hit to avoid cloning, got error: %v", err)
	}
	if path != existing {
		t.Errorf("expected cached path %s, got %s", existing, path)
	}
}
