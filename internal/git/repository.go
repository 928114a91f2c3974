package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Repository binds a client to one working tree
type Repository struct {
	path   string
	client *Client
}

// NewRepository returns a repository for path, which must contain a .git entry
func NewRepository(path string, client *Client) (*Repository, error) {
	if !IsRepository(path) {
		return nil, fmt.Errorf("not a git repository: %s", path)
	}
	return &Repository{path: path, client: client}, nil
}

// Path returns the working tree root
func (r *Repository) Path() string {
	return r.path
}

// Changes lists the uncommitted changes of the working tree.
// It waits for git, so call it from a goroutine that may block.
func (r *Repository) Changes(ctx context.Context) ([]Change, error) {
	out := r.client.Changes(ctx, r.path).Wait()
	if err := out.Err(); err != nil {
		return nil, err
	}
	return ParseChanges(out.Output), nil
}

// IsRepository reports whether path holds a .git directory, or a .git
// file as linked worktrees and submodules do
func IsRepository(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// FindRoot walks up from dir to the nearest directory containing .git
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for current := abs; ; {
		if IsRepository(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("not a git repository (or any parent up to %s): %s", current, abs)
		}
		current = parent
	}
}

// Change is one entry of "git status --porcelain"
type Change struct {
	Index    byte   // staged state, e.g. 'M', 'A', '?'
	Worktree byte   // unstaged state
	Path     string
	OrigPath string // source path of a rename or copy
}

// Untracked reports whether the path is not known to git
func (c Change) Untracked() bool {
	return c.Index == '?' && c.Worktree == '?'
}

func (c Change) String() string {
	if c.OrigPath != "" {
		return fmt.Sprintf("%c%c %s -> %s", c.Index, c.Worktree, c.OrigPath, c.Path)
	}
	return fmt.Sprintf("%c%c %s", c.Index, c.Worktree, c.Path)
}

// ParseChanges parses porcelain v1 status output.
// Empty output means there is nothing to commit.
func ParseChanges(output string) []Change {
	var changes []Change

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}

		change := Change{
			Index:    line[0],
			Worktree: line[1],
			Path:     unquote(line[3:]),
		}
		if change.Index != 'R' && change.Index != 'C' {
			changes = append(changes, change)
			continue
		}
		if orig, path, found := strings.Cut(line[3:], " -> "); found {
			change.OrigPath = unquote(orig)
			change.Path = unquote(path)
		}
		changes = append(changes, change)
	}

	return changes
}

func unquote(path string) string {
	if len(path) >= 2 && strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) {
		if s, err := strconv.Unquote(path); err == nil {
			return s
		}
	}
	return path
}
