package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mygit/pkg/object"
)

// ErrAlreadyInitialized is returned by Init when the target directory already
// contains a repository. Re-running init is an error, not a silent no-op, so
// a caller cannot mistake an existing store for a fresh one.
var ErrAlreadyInitialized = errors.New("repository already initialized")

// DefaultBranch is the ref HEAD points at after init.
const DefaultBranch = "refs/heads/main"

// Init creates a new repository at path. It creates the .mygit/ directory
// structure: HEAD, objects/, refs/heads/, and logs/.
func Init(path string) (*Repo, error) {
	mygitDir := filepath.Join(path, ".mygit")

	if _, err := os.Stat(mygitDir); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrAlreadyInitialized, mygitDir)
	}

	dirs := []string{
		filepath.Join(mygitDir, "objects"),
		filepath.Join(mygitDir, "refs", "heads"),
		filepath.Join(mygitDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(mygitDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: "+DefaultBranch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return &Repo{
		RootDir:  path,
		MygitDir: mygitDir,
		Store:    object.NewStore(mygitDir),
	}, nil
}

// Open searches upward from path for a .mygit/ directory and opens the
// repository. The store's compression level comes from repository config.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		mygitDir := filepath.Join(cur, ".mygit")
		info, err := os.Stat(mygitDir)
		if err == nil && info.IsDir() {
			r := &Repo{
				RootDir:  cur,
				MygitDir: mygitDir,
			}
			cfg, err := r.ReadConfig()
			if err != nil {
				return nil, err
			}
			r.Store = object.NewStore(mygitDir, object.WithCompressionLevel(cfg.Core.Compression))
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .mygit/.
			return nil, fmt.Errorf("open: not a mygit repository (or any parent up to /)")
		}
		cur = parent
	}
}

// Head reads .mygit/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g., "refs/heads/main"). Otherwise it returns the raw content
// as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.MygitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}
