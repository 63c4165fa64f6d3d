package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"mygit/pkg/object"
)

// ignoreFile is the per-repository ignore rules file, same syntax as Git's.
const ignoreFile = ".gitignore"

// Repository metadata directories are never part of a snapshot.
var defaultIgnoreRules = []string{".mygit/", ".git/"}

// ignoreMatcher wraps go-gitignore pattern matching for worktree scans.
type ignoreMatcher struct {
	rules *gitignore.GitIgnore
}

func newIgnoreMatcher(root string) (*ignoreMatcher, error) {
	path := filepath.Join(root, ignoreFile)
	if _, err := os.Stat(path); err == nil {
		rules, err := gitignore.CompileIgnoreFileAndLines(path, defaultIgnoreRules...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", ignoreFile, err)
		}
		return &ignoreMatcher{rules: rules}, nil
	}
	return &ignoreMatcher{rules: gitignore.CompileIgnoreLines(defaultIgnoreRules...)}, nil
}

// Matches reports whether the forward-slash relative path should be skipped.
func (m *ignoreMatcher) Matches(rel string, isDir bool) bool {
	if m.rules == nil {
		return false
	}
	if m.rules.MatchesPath(rel) {
		return true
	}
	// Directory-only patterns ("build/") match the path with a trailing slash.
	return isDir && m.rules.MatchesPath(rel+"/")
}

// ScanWorktree walks the file hierarchy under root and returns it as an
// in-memory WorkingSet: regular files with their contents and mode, symlinks
// with their target. Ignore rules from .gitignore apply; .mygit/ and .git/
// are always skipped. Directories appear only implicitly through the files
// they contain, so empty directories never reach the tree builder.
func ScanWorktree(root string) (*WorkingSet, error) {
	matcher, err := newIgnoreMatcher(root)
	if err != nil {
		return nil, err
	}

	ws := NewWorkingSet()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher.Matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Matches(rel, false) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", rel, err)
			}
			ws.Add(rel, object.TreeModeSymlink, []byte(target))
			return nil
		}
		if !d.Type().IsRegular() {
			// Sockets, devices and the like have no object representation.
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		ws.Add(rel, modeFromFileInfo(info), data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan worktree: %w", err)
	}
	return ws, nil
}

func modeFromFileInfo(info os.FileInfo) string {
	if info.Mode()&0o111 != 0 {
		return object.TreeModeExecutable
	}
	return object.TreeModeFile
}

// WriteTree snapshots the file hierarchy at path into the object store and
// returns the root tree hash. It has no side effect on references.
func (r *Repo) WriteTree(path string) (object.Hash, error) {
	ws, err := ScanWorktree(path)
	if err != nil {
		return "", err
	}
	return r.BuildTree(ws)
}
