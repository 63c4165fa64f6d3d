package repo

import (
	"errors"
	"testing"
	"time"

	"mygit/pkg/object"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0).UTC() }
}

func commitFixtureTree(t *testing.T, r *Repo) object.Hash {
	t.Helper()
	ws := NewWorkingSet()
	ws.Add("a.txt", object.TreeModeFile, []byte("hello"))
	h, err := r.BuildTree(ws)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return h
}

func TestCommitTreeInitialCommit(t *testing.T) {
	r := newTestRepo(t)
	r.Now = fixedClock(1700000000)
	if err := r.WriteConfig(&Config{
		User: UserConfig{Name: "Ada Lovelace", Email: "ada@example.com"},
		Core: CoreConfig{Compression: object.DefaultCompression},
	}); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	treeHash := commitFixtureTree(t, r)
	commitHash, err := r.CommitTree(treeHash, nil, "Initial commit from mygit\n", CommitOptions{})
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}

	c, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.TreeHash != treeHash {
		t.Errorf("TreeHash = %s, want %s", c.TreeHash, treeHash)
	}
	if len(c.Parents) != 0 {
		t.Errorf("Parents = %v, want none", c.Parents)
	}
	if c.Author.Name != "Ada Lovelace" || c.Author.Email != "ada@example.com" {
		t.Errorf("Author = %+v", c.Author)
	}
	if c.Author.When != 1700000000 {
		t.Errorf("When = %d", c.Author.When)
	}
	if c.Message != "Initial commit from mygit\n" {
		t.Errorf("Message = %q", c.Message)
	}
}

func TestCommitTreeReproducibleWithFixedClock(t *testing.T) {
	// Commits embed timestamps: the same tree and message reproduce the same
	// commit digest only when the clock is held fixed.
	build := func(unix int64) object.Hash {
		r := newTestRepo(t)
		r.Now = fixedClock(unix)
		if err := r.WriteConfig(&Config{User: UserConfig{Name: "Ada", Email: "ada@example.com"}}); err != nil {
			t.Fatalf("WriteConfig: %v", err)
		}
		treeHash := commitFixtureTree(t, r)
		h, err := r.CommitTree(treeHash, nil, "Initial commit from mygit\n", CommitOptions{})
		if err != nil {
			t.Fatalf("CommitTree: %v", err)
		}
		return h
	}

	h1 := build(1700000000)
	h2 := build(1700000000)
	if h1 != h2 {
		t.Fatalf("fixed-clock commits differ: %s vs %s", h1, h2)
	}

	h3 := build(1700000001)
	if h3 == h1 {
		t.Fatal("commits at different times must have different digests")
	}
}

func TestCommitTreeUnknownTree(t *testing.T) {
	r := newTestRepo(t)
	missing := object.HashBytes([]byte("no such tree"))

	_, err := r.CommitTree(missing, nil, "m\n", CommitOptions{})
	if !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("err = %v, want ErrObjectNotFound", err)
	}

	// No partial writes: the store contains nothing.
	if r.Store.Has(missing) {
		t.Fatal("store should be empty after failed commit")
	}
}

func TestCommitTreeUnknownParent(t *testing.T) {
	r := newTestRepo(t)
	treeHash := commitFixtureTree(t, r)
	missing := object.HashBytes([]byte("no such parent"))

	_, err := r.CommitTree(treeHash, []object.Hash{missing}, "m\n", CommitOptions{})
	if !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("err = %v, want ErrObjectNotFound", err)
	}
}

func TestCommitTreeRejectsNonCommitParent(t *testing.T) {
	r := newTestRepo(t)
	treeHash := commitFixtureTree(t, r)

	// A tree hash is not a valid parent.
	if _, err := r.CommitTree(treeHash, []object.Hash{treeHash}, "m\n", CommitOptions{}); err == nil {
		t.Fatal("expected error for non-commit parent")
	}
}

func TestCommitTreeParentChainAndLog(t *testing.T) {
	r := newTestRepo(t)
	r.Now = fixedClock(1700000000)
	treeHash := commitFixtureTree(t, r)

	author := &object.Ident{Name: "Ada", Email: "ada@example.com", When: 1700000000, Offset: 0}
	c1, err := r.CommitTree(treeHash, nil, "one\n", CommitOptions{Author: author})
	if err != nil {
		t.Fatalf("CommitTree 1: %v", err)
	}
	c2, err := r.CommitTree(treeHash, []object.Hash{c1}, "two\n", CommitOptions{Author: author})
	if err != nil {
		t.Fatalf("CommitTree 2: %v", err)
	}
	c3, err := r.CommitTree(treeHash, []object.Hash{c2, c1}, "merge\n", CommitOptions{Author: author})
	if err != nil {
		t.Fatalf("CommitTree 3: %v", err)
	}

	commits, err := r.Log(c3, 10)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("log length = %d, want 3", len(commits))
	}
	// First-parent walk: merge, two, one.
	if commits[0].Message != "merge\n" || commits[1].Message != "two\n" || commits[2].Message != "one\n" {
		t.Errorf("log order = %q, %q, %q", commits[0].Message, commits[1].Message, commits[2].Message)
	}

	limited, err := r.Log(c3, 2)
	if err != nil {
		t.Fatalf("Log limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited log length = %d, want 2", len(limited))
	}
}

func TestCommitTreeSigned(t *testing.T) {
	r := newTestRepo(t)
	r.Now = fixedClock(1700000000)
	treeHash := commitFixtureTree(t, r)

	signer := func(payload []byte) (string, error) {
		return "sshsig-v1:ssh-ed25519:cHVi:" + string(object.HashBytes(payload))[:8], nil
	}
	h, err := r.CommitTree(treeHash, nil, "signed\n", CommitOptions{Signer: signer})
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Signature == "" {
		t.Fatal("signature not persisted")
	}
	// The recorded signature covers the payload without the signature line.
	want, _ := signer(object.CommitSigningPayload(c))
	if c.Signature != want {
		t.Errorf("signature = %q, want %q", c.Signature, want)
	}
}

func TestUpdateRefAndResolve(t *testing.T) {
	r := newTestRepo(t)
	treeHash := commitFixtureTree(t, r)
	author := &object.Ident{Name: "Ada", Email: "ada@example.com", When: 1, Offset: 0}
	c1, err := r.CommitTree(treeHash, nil, "one\n", CommitOptions{Author: author})
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}

	if err := r.UpdateRef("refs/heads/main", c1); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	got, err := r.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef(main): %v", err)
	}
	if got != c1 {
		t.Errorf("ResolveRef = %s, want %s", got, c1)
	}

	// HEAD is symbolic and resolves through the branch.
	viaHead, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if viaHead != c1 {
		t.Errorf("HEAD = %s, want %s", viaHead, c1)
	}
}

func TestUpdateRefCAS(t *testing.T) {
	r := newTestRepo(t)
	treeHash := commitFixtureTree(t, r)
	author := &object.Ident{Name: "Ada", Email: "ada@example.com", When: 1, Offset: 0}
	c1, _ := r.CommitTree(treeHash, nil, "one\n", CommitOptions{Author: author})
	c2, _ := r.CommitTree(treeHash, []object.Hash{c1}, "two\n", CommitOptions{Author: author})

	if err := r.UpdateRefCAS("refs/heads/main", c1); err != nil {
		t.Fatalf("UpdateRefCAS initial: %v", err)
	}
	if err := r.UpdateRefCAS("refs/heads/main", c2, c1); err != nil {
		t.Fatalf("UpdateRefCAS advance: %v", err)
	}
	// Stale expected value must fail and leave the ref untouched.
	err := r.UpdateRefCAS("refs/heads/main", c1, c1)
	if !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("err = %v, want ErrRefCASMismatch", err)
	}
	got, _ := r.ResolveRef("main")
	if got != c2 {
		t.Errorf("ref = %s, want %s", got, c2)
	}
}

func TestUpdateRefAppendsReflog(t *testing.T) {
	r := newTestRepo(t)
	treeHash := commitFixtureTree(t, r)
	author := &object.Ident{Name: "Ada", Email: "ada@example.com", When: 1, Offset: 0}
	c1, _ := r.CommitTree(treeHash, nil, "one\n", CommitOptions{Author: author})
	c2, _ := r.CommitTree(treeHash, []object.Hash{c1}, "two\n", CommitOptions{Author: author})

	if err := r.UpdateRef("refs/heads/main", c1); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if err := r.UpdateRef("refs/heads/main", c2); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	entries, err := r.ReadReflog("main", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("reflog entries = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].OldHash != c1 || entries[0].NewHash != c2 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].OldHash != object.Hash(zeroHash) || entries[1].NewHash != c1 {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestListRefs(t *testing.T) {
	r := newTestRepo(t)
	treeHash := commitFixtureTree(t, r)
	author := &object.Ident{Name: "Ada", Email: "ada@example.com", When: 1, Offset: 0}
	c1, _ := r.CommitTree(treeHash, nil, "one\n", CommitOptions{Author: author})

	if err := r.UpdateRef("refs/heads/main", c1); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if err := r.UpdateRef("refs/heads/feature/x", c1); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	refs, err := r.ListRefs("")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if len(refs) != 2 || refs["heads/main"] != c1 || refs["heads/feature/x"] != c1 {
		t.Errorf("refs = %v", refs)
	}
}
