package repo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"mygit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// CommitOptions carries the optional knobs for CommitTree. Zero value means:
// identity from repository config, current time, no signature.
type CommitOptions struct {
	Author    *object.Ident
	Committer *object.Ident
	Signer    CommitSigner
}

// CommitTree creates a commit object referencing tree with the given parents
// (empty for an initial commit) and writes it to the store. The tree and
// every parent must already exist; all validation happens before anything is
// written, so a failed call leaves the store untouched. References are not
// updated; that is the caller's orchestration step.
func (r *Repo) CommitTree(tree object.Hash, parents []object.Hash, message string, opts CommitOptions) (object.Hash, error) {
	if _, err := r.Store.ReadTree(tree); err != nil {
		return "", fmt.Errorf("commit-tree: tree %s: %w", tree, err)
	}
	for _, p := range parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("commit-tree: parent %s: %w", p, err)
		}
	}

	ident := opts.Author
	if ident == nil {
		id, err := r.userIdent()
		if err != nil {
			return "", fmt.Errorf("commit-tree: %w", err)
		}
		ident = &id
	}
	committer := opts.Committer
	if committer == nil {
		committer = ident
	}

	commitObj := &object.CommitObj{
		TreeHash:  tree,
		Parents:   parents,
		Author:    *ident,
		Committer: *committer,
		Message:   message,
	}
	if opts.Signer != nil {
		payload := object.CommitSigningPayload(commitObj)
		signature, err := opts.Signer(payload)
		if err != nil {
			return "", fmt.Errorf("commit-tree: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit-tree: write commit: %w", err)
	}
	return commitHash, nil
}

// userIdent builds the identity stamped into commits: name and email from
// repository config, falling back to $USER, with the current local time.
func (r *Repo) userIdent() (object.Ident, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return object.Ident{}, err
	}

	name := cfg.User.Name
	if name == "" {
		name = os.Getenv("USER")
		if name == "" {
			name = "unknown"
		}
	}
	email := cfg.User.Email
	if email == "" {
		email = name + "@localhost"
	}

	now := r.now()
	_, offset := now.Zone()
	return object.Ident{
		Name:   name,
		Email:  email,
		When:   now.Unix(),
		Offset: offset,
	}, nil
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits in reverse-chronological
// order (newest first).
func (r *Repo) Log(start object.Hash, limit int) ([]*object.CommitObj, error) {
	var commits []*object.CommitObj
	current := start

	for len(commits) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, object.ErrObjectNotFound) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		commits = append(commits, c)

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return commits, nil
}

// CommitTime converts a commit identity's timestamp to a time.Time in the
// identity's recorded zone.
func CommitTime(id object.Ident) time.Time {
	return time.Unix(id.When, 0).In(time.FixedZone("", id.Offset))
}
