// Package model holds the task entity and wire normalization.
package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Task is the domain model for a todo entry as the client sees it.
// Raw keeps the server's original payload for callers that need
// fields we don't model.
type Task struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Completed bool            `json:"completed"`
	Raw       json.RawMessage `json:"-"`
}

// Pending reports whether the task is a local placeholder that has
// not been confirmed by the server yet.
func (t Task) Pending() bool { return IsPendingID(t.ID) }

const pendingPrefix = "pending-"

// NewPendingID returns a fresh placeholder identifier for an
// optimistically inserted task.
func NewPendingID() string {
	return pendingPrefix + uuid.NewString()
}

// IsPendingID reports whether id was generated by NewPendingID.
func IsPendingID(id string) bool {
	return strings.HasPrefix(id, pendingPrefix)
}

// Normalize adapts one raw server record into a Task. Servers in the
// wild disagree on field names, so lookup order is fixed:
//
//	id:        id, todo_id, _id   (string or number)
//	title:     title, text
//	completed: completed, is_completed, done
//
// A record with no resolvable identifier is unusable and reports
// ok=false; callers drop it.
func Normalize(raw json.RawMessage) (Task, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Task{}, false
	}

	id := firstID(fields, "id", "todo_id", "_id")
	if id == "" {
		return Task{}, false
	}

	t := Task{ID: id, Raw: raw}
	for _, k := range []string{"title", "text"} {
		if s, ok := fields[k].(string); ok {
			t.Title = s
			break
		}
	}
	for _, k := range []string{"completed", "is_completed", "done"} {
		if v, ok := fields[k]; ok && truthy(v) {
			t.Completed = true
			break
		}
	}
	return t, true
}

func firstID(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// truthy mirrors the loose boolean coercion of JSON-speaking services:
// false, 0, "" and null are false, everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	case nil:
		return false
	default:
		return true
	}
}
