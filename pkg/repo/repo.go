package repo

import (
	"time"

	"mygit/pkg/object"
)

// Repo represents an opened repository. It is an explicit handle: every
// operation goes through it, so tests can run against isolated stores.
type Repo struct {
	RootDir  string        // working directory root
	MygitDir string        // .mygit/ directory
	Store    *object.Store // content-addressed object store

	// Now supplies commit timestamps. Nil means time.Now; tests override it
	// to make commit digests reproducible.
	Now func() time.Time
}

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
