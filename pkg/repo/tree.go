package repo

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mygit/pkg/object"
)

// blobWriteConcurrency bounds parallel blob ingestion during BuildTree.
const blobWriteConcurrency = 8

// WorkFile is one entry in an in-memory working set: file contents for
// regular files, the link target for symlinks.
type WorkFile struct {
	Mode string
	Data []byte
}

// WorkingSet is an owned, flat description of the hierarchy to snapshot,
// keyed by forward-slash paths relative to the root. It decouples the tree
// builder from any particular filesystem, so tests can build trees from
// fixtures directly.
type WorkingSet struct {
	Files map[string]WorkFile
}

func NewWorkingSet() *WorkingSet {
	return &WorkingSet{Files: make(map[string]WorkFile)}
}

// Add records a file at the given forward-slash path.
func (ws *WorkingSet) Add(path, mode string, data []byte) {
	ws.Files[path] = WorkFile{Mode: mode, Data: data}
}

// BuildTree converts a working set into blob and tree objects, writing them
// to the store, and returns the root tree hash. All blobs are written first
// with bounded concurrency; trees are then assembled bottom-up in canonical
// order. An empty working set produces the empty root tree. The same working
// set always yields the same root hash.
func (r *Repo) BuildTree(ws *WorkingSet) (object.Hash, error) {
	blobs, err := r.writeBlobs(ws)
	if err != nil {
		return "", err
	}
	return r.buildTreeDir(ws, blobs, "")
}

// writeBlobs stores one blob per working-set file and returns path -> hash.
// Content addressing makes racing writes of identical content idempotent, so
// the only coordination needed is each goroutine owning its result slot.
func (r *Repo) writeBlobs(ws *WorkingSet) (map[string]object.Hash, error) {
	paths := make([]string, 0, len(ws.Files))
	for p := range ws.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	hashes := make([]object.Hash, len(paths))
	var g errgroup.Group
	g.SetLimit(blobWriteConcurrency)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			h, err := r.Store.WriteBlob(&object.Blob{Data: ws.Files[p].Data})
			if err != nil {
				return fmt.Errorf("write blob %q: %w", p, err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	blobs := make(map[string]object.Hash, len(paths))
	for i, p := range paths {
		blobs[p] = hashes[i]
	}
	return blobs, nil
}

// buildTreeDir builds a TreeObj for the given directory prefix and writes it
// to the store. It returns the tree's hash.
func (r *Repo) buildTreeDir(ws *WorkingSet, blobs map[string]object.Hash, prefix string) (object.Hash, error) {
	// Collect direct children: files and subdirectory names.
	files := make(map[string]WorkFile) // name -> entry
	subdirs := make(map[string]struct{})

	for p, wf := range ws.Files {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = wf
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	var entries []object.TreeEntry
	for name := range files {
		full := name
		if prefix != "" {
			full = prefix + "/" + name
		}
		entries = append(entries, object.TreeEntry{
			Mode: files[name].Mode,
			Name: name,
			Hash: blobs[full],
		})
	}
	for name := range subdirs {
		if _, isFile := files[name]; isFile {
			return "", fmt.Errorf("build tree: %q is both a file and a directory", name)
		}
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		subHash, err := r.buildTreeDir(ws, blobs, childPrefix)
		if err != nil {
			return "", err
		}
		entries = append(entries, object.TreeEntry{
			Mode: object.TreeModeDir,
			Name: name,
			Hash: subHash,
		})
	}

	// WriteTree sorts entries into canonical order before hashing.
	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}
