// Package git reads branch context from the working directory using go-git.
// It lets a task be created from the branch the user is working on.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/go-git/go-git/v5"
	"github.com/xvierd/pomoflow/internal/ports"
)

// ErrDetachedHead is returned when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// Detector implements the ports.GitDetector interface using go-git.
type Detector struct{}

// NewDetector creates a new git detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Ensure Detector implements ports.GitDetector.
var _ ports.GitDetector = (*Detector)(nil)

// Detect opens the repository containing workingDir and reports its branch,
// HEAD commit and remote name.
func (d *Detector) Detect(ctx context.Context, workingDir string) (*ports.GitInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(workingDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("git repository not found: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	info := &ports.GitInfo{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		if urls := remotes[0].Config().URLs; len(urls) > 0 {
			info.Repository = extractRepoName(urls[0])
		}
	}

	return info, nil
}

// BranchTitle detects the current branch in workingDir and turns it into a
// task title.
func BranchTitle(ctx context.Context, detector ports.GitDetector, workingDir string) (string, error) {
	info, err := detector.Detect(ctx, workingDir)
	if err != nil {
		return "", err
	}
	if info.Branch == "" {
		return "", ErrDetachedHead
	}
	return TitleFromBranch(info.Branch), nil
}

// TitleFromBranch converts a branch name such as "feature/JIRA-12_fix-login"
// into "JIRA-12 fix login". The prefix before the last slash is dropped.
func TitleFromBranch(branch string) string {
	name := branch
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		if !isTicketKey(w) {
			words[i] = strings.ReplaceAll(w, "-", " ")
		}
	}

	title := strings.Join(words, " ")
	if title == "" {
		return branch
	}
	r := []rune(title)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// isTicketKey reports whether w looks like "ABC-123".
func isTicketKey(w string) bool {
	key, num, ok := strings.Cut(w, "-")
	if !ok || key == "" || num == "" {
		return false
	}
	for _, r := range key {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	for _, r := range num {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// extractRepoName extracts the repository name from a git URL.
func extractRepoName(url string) string {
	// Handle SSH URLs like git@github.com:user/repo.git
	if strings.HasPrefix(url, "git@") {
		if _, path, ok := strings.Cut(url, ":"); ok {
			return strings.TrimSuffix(path, ".git")
		}
	}

	// Handle HTTPS URLs like https://github.com/user/repo.git
	if strings.HasPrefix(url, "http") {
		parts := strings.Split(url, "/")
		if len(parts) >= 2 {
			repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
			return parts[len(parts)-2] + "/" + repo
		}
	}

	return url
}
