package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// treeSortKey is the canonical ordering key for tree entries. Directories
// compare as if their name carried a trailing slash, matching Git, so a
// subtree "foo" sorts after a file "foo.bar".
func treeSortKey(e TreeEntry) string {
	if e.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

func validTreeMode(mode string) bool {
	switch mode {
	case TreeModeDir, TreeModeFile, TreeModeExecutable, TreeModeSymlink:
		return true
	}
	return false
}

// MarshalTree serializes a TreeObj in Git's binary tree format: for each
// entry "mode name\0" followed by the raw digest bytes. Entries are sorted
// by the canonical key, so any permutation of the same entries produces
// byte-identical output.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return treeSortKey(sorted[i]) < treeSortKey(sorted[j])
	})

	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(sorted))
	for _, e := range sorted {
		if e.Name == "" || strings.ContainsAny(e.Name, "/\x00") {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		if !validTreeMode(e.Mode) {
			return nil, fmt.Errorf("marshal tree: invalid mode %q for entry %q", e.Mode, e.Name)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("marshal tree: duplicate entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		raw, err := hex.DecodeString(string(e.Hash))
		if err != nil || len(raw) != RawHashSize {
			return nil, fmt.Errorf("marshal tree: invalid hash %q for entry %q", e.Hash, e.Name)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its serialized form. Entries that are
// out of canonical order, duplicated, or otherwise unparseable are rejected
// as malformed.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	rest := data
	prevKey := ""
	seen := make(map[string]struct{})

	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated entry mode", ErrMalformedObject)
		}
		mode := string(rest[:sp])
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated entry name", ErrMalformedObject)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < RawHashSize {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated digest for %q", ErrMalformedObject, name)
		}
		h := Hash(hex.EncodeToString(rest[:RawHashSize]))
		rest = rest[RawHashSize:]

		entry := TreeEntry{Mode: mode, Name: name, Hash: h}
		if name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("unmarshal tree: %w: invalid entry name %q", ErrMalformedObject, name)
		}
		if !validTreeMode(mode) {
			return nil, fmt.Errorf("unmarshal tree: %w: invalid mode %q for %q", ErrMalformedObject, mode, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("unmarshal tree: %w: duplicate entry %q", ErrMalformedObject, name)
		}
		seen[name] = struct{}{}

		key := treeSortKey(entry)
		if prevKey != "" && key <= prevKey {
			return nil, fmt.Errorf("unmarshal tree: %w: entry %q out of canonical order", ErrMalformedObject, name)
		}
		prevKey = key

		tr.Entries = append(tr.Entries, entry)
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// Ident
// ---------------------------------------------------------------------------

// FormatIdent renders an identity in Git's signature line format:
//
//	Name <email> 1700000000 +0100
func FormatIdent(id Ident) string {
	return fmt.Sprintf("%s <%s> %d %s", id.Name, id.Email, id.When, formatZone(id.Offset))
}

// ParseIdent parses an identity line produced by FormatIdent.
func ParseIdent(s string) (Ident, error) {
	gt := strings.LastIndex(s, ">")
	if gt < 0 {
		return Ident{}, fmt.Errorf("parse ident: %w: missing email in %q", ErrMalformedObject, s)
	}
	lt := strings.Index(s[:gt], " <")
	if lt < 0 {
		return Ident{}, fmt.Errorf("parse ident: %w: missing email in %q", ErrMalformedObject, s)
	}

	fields := strings.Fields(s[gt+1:])
	if len(fields) != 2 {
		return Ident{}, fmt.Errorf("parse ident: %w: missing timestamp in %q", ErrMalformedObject, s)
	}
	when, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Ident{}, fmt.Errorf("parse ident: %w: bad timestamp %q", ErrMalformedObject, fields[0])
	}
	offset, err := parseZone(fields[1])
	if err != nil {
		return Ident{}, fmt.Errorf("parse ident: %w: %v", ErrMalformedObject, err)
	}

	return Ident{
		Name:   s[:lt],
		Email:  s[lt+2 : gt],
		When:   when,
		Offset: offset,
	}, nil
}

func formatZone(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d%02d", sign, offset/3600, (offset%3600)/60)
}

func parseZone(z string) (int, error) {
	if len(z) != 5 || (z[0] != '+' && z[0] != '-') {
		return 0, fmt.Errorf("bad timezone %q", z)
	}
	hours, err := strconv.Atoi(z[1:3])
	if err != nil {
		return 0, fmt.Errorf("bad timezone %q", z)
	}
	minutes, err := strconv.Atoi(z[3:5])
	if err != nil {
		return 0, fmt.Errorf("bad timezone %q", z)
	}
	offset := hours*3600 + minutes*60
	if z[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj in Git's text format:
//
//	tree H
//	parent H     (zero or more)
//	author Name <email> T Z
//	committer Name <email> T Z
//	signature S  (optional)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", FormatIdent(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", FormatIdent(c.Committer))
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrMalformedObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	sawAuthor := false
	sawCommitter := false
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: malformed header line %q", ErrMalformedObject, line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			id, err := ParseIdent(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = id
			sawAuthor = true
		case "committer":
			id, err := ParseIdent(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = id
			sawCommitter = true
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: %w: unknown header key %q", ErrMalformedObject, key)
		}
	}

	if !ValidHash(c.TreeHash) {
		return nil, fmt.Errorf("unmarshal commit: %w: invalid tree hash %q", ErrMalformedObject, c.TreeHash)
	}
	for _, p := range c.Parents {
		if !ValidHash(p) {
			return nil, fmt.Errorf("unmarshal commit: %w: invalid parent hash %q", ErrMalformedObject, p)
		}
	}
	if !sawAuthor || !sawCommitter {
		return nil, fmt.Errorf("unmarshal commit: %w: missing author or committer", ErrMalformedObject)
	}
	return c, nil
}
