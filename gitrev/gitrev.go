// Package gitrev resolves the source revision of the site being deployed so
// the deploy record and notification can name the exact commit that went
// live. Everything here is best-effort: deploying a tree that is not a git
// repository is perfectly valid.
package gitrev

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info identifies the source revision.
type Info struct {
	Commit string // Full HEAD hash
	Branch string // Short branch name, empty on a detached HEAD
}

// Short returns the abbreviated commit hash, or empty when there is none.
func (i Info) Short() string {
	if len(i.Commit) < 8 {
		return i.Commit
	}
	return i.Commit[:8]
}

// Describe resolves HEAD of the repository containing dir, searching parent
// directories the way git itself does. A missing repository or an unborn
// HEAD returns a zero Info and no error.
func Describe(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	info := Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}
