package proxy

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RecordReader reads the tokens of a cache record in order.
type RecordReader struct {
	tokens []string
	pos    int
}

// NewRecordReader creates a reader over record tokens.
func NewRecordReader(tokens []string) *RecordReader {
	return &RecordReader{tokens: tokens}
}

// Read returns the next token. field names the expected field for errors.
func (r *RecordReader) Read(field string) (string, error) {
	if r.pos >= len(r.tokens) {
		return "", &CacheError{Field: field, Value: "", Err: errTruncated}
	}
	s := r.tokens[r.pos]
	r.pos++
	return s, nil
}

// Remaining returns the number of unread tokens.
func (r *RecordReader) Remaining() int {
	return len(r.tokens) - r.pos
}

func (r *RecordReader) readID(field string) (uuid.UUID, error) {
	s, err := r.Read(field)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &CacheError{Field: field, Value: s, Err: err}
	}
	return id, nil
}

func (r *RecordReader) readBool(field string) (bool, error) {
	s, err := r.Read(field)
	if err != nil {
		return false, err
	}
	b, err := parseBool(s)
	if err != nil {
		return false, &CacheError{Field: field, Value: s}
	}
	return b, nil
}

func (r *RecordReader) readInt(field string) (int, error) {
	s, err := r.Read(field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &CacheError{Field: field, Value: s, Err: err}
	}
	return n, nil
}

// parseBool accepts "True" and "False" in any letter case, surrounded by
// optional white space. Anything else is rejected.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ReadAction reads one cache record: the kind token followed by the fields
// of that kind. Extra tokens after the record are an error.
func ReadAction(m Manager, r *RecordReader) (Action, error) {
	token, err := r.Read("Kind")
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(token)
	if err != nil {
		return nil, err
	}

	var a Action
	switch kind {
	case KindCommand:
		a, err = ReadCommand(m, r)
	case KindEditor:
		a, err = ReadEditor(m, r)
	case KindFiler:
		a, err = ReadFiler(m, r)
	case KindTool:
		a, err = ReadTool(m, r)
	}
	if err != nil {
		return nil, err
	}

	if n := r.Remaining(); n > 0 {
		return nil, &CacheError{Field: "End", Value: strconv.Itoa(n) + " extra tokens"}
	}
	return a, nil
}

// CacheRecord returns the cache record of an action: the kind token
// followed by the action fields.
func CacheRecord(a Action) []string {
	return a.WriteCache([]string{a.Kind().String()})
}
