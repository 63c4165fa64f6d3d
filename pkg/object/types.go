package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool { return e.Mode == TreeModeDir }

// TreeObj holds a list of tree entries. Serialization sorts them into
// canonical order, so callers may supply entries in any order.
type TreeObj struct {
	Entries []TreeEntry
}

// Ident is the author/committer identity stamped into a commit.
type Ident struct {
	Name   string
	Email  string
	When   int64 // unix seconds
	Offset int   // seconds east of UTC
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash // first parent is the mainline
	Author    Ident
	Committer Ident
	Signature string // optional, excluded from the signing payload
	Message   string
}
