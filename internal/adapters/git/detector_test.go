package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a repository with one commit and returns it.
func initRepo(t *testing.T) (string, *git.Repository, plumbing.Hash) {
	t.Helper()
	tmpDir := t.TempDir()

	repo, err := git.PlainInit(tmpDir, false)
	if err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("test.txt"); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}

	commit, err := worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
		},
	})
	if err != nil {
		t.Fatalf("Failed to create commit: %v", err)
	}

	return tmpDir, repo, commit
}

func TestDetector_Detect(t *testing.T) {
	tmpDir, _, commit := initRepo(t)

	info, err := NewDetector().Detect(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.Commit != commit.String() {
		t.Errorf("Expected commit %s, got %s", commit.String(), info.Commit)
	}

	// go-git defaults to master
	if info.Branch != "master" && info.Branch != "main" {
		t.Errorf("Unexpected branch: %s", info.Branch)
	}
}

func TestDetector_Detect_Subdirectory(t *testing.T) {
	tmpDir, repo, _ := initRepo(t)

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:xvierd/pomoflow.git"},
	}); err != nil {
		t.Fatalf("Failed to add remote: %v", err)
	}

	sub := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	info, err := NewDetector().Detect(context.Background(), sub)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Repository != "xvierd/pomoflow" {
		t.Errorf("Repository = %q, want xvierd/pomoflow", info.Repository)
	}
}

func TestBranchTitle(t *testing.T) {
	tmpDir, repo, commit := initRepo(t)

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature/PF-42_fix-login-page"),
		Create: true,
	}); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	title, err := BranchTitle(context.Background(), NewDetector(), tmpDir)
	if err != nil {
		t.Fatalf("BranchTitle() error = %v", err)
	}
	if title != "PF-42 fix login page" {
		t.Errorf("BranchTitle() = %q", title)
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Hash: commit}); err != nil {
		t.Fatalf("Failed to detach HEAD: %v", err)
	}
	if _, err := BranchTitle(context.Background(), NewDetector(), tmpDir); err != ErrDetachedHead {
		t.Errorf("BranchTitle() error = %v, want ErrDetachedHead", err)
	}
}

func TestDetector_Detect_NoGitRepo(t *testing.T) {
	_, err := NewDetector().Detect(context.Background(), t.TempDir())
	if err == nil {
		t.Error("Expected error when no git repo exists")
	}
}

func TestTitleFromBranch(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"master", "Master"},
		{"fix-typo", "Fix typo"},
		{"feature/add_dark_mode", "Add dark mode"},
		{"user/ABC-7-crash-on-start", "ABC 7 crash on start"},
		{"ABC-7_crash-on-start", "ABC-7 crash on start"},
		{"release/", "release/"},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			if got := TitleFromBranch(tt.branch); got != tt.want {
				t.Errorf("TitleFromBranch(%q) = %q, want %q", tt.branch, got, tt.want)
			}
		})
	}
}

func TestExtractRepoName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:user/repo.git", "user/repo"},
		{"https://github.com/user/repo.git", "user/repo"},
		{"https://github.com/user/repo", "user/repo"},
		{"/local/path", "/local/path"},
	}

	for _, tt := range tests {
		if got := extractRepoName(tt.url); got != tt.want {
			t.Errorf("extractRepoName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
