package model

import (
	"encoding/json"
	"testing"
)

func norm(t *testing.T, raw string) (Task, bool) {
	t.Helper()
	return Normalize(json.RawMessage(raw))
}

func TestNormalize_IDPrecedence(t *testing.T) {
	cases := []struct {
		name, raw, want string
	}{
		{"id wins", `{"id":"a","todo_id":"b","_id":"c"}`, "a"},
		{"todo_id next", `{"todo_id":"b","_id":"c"}`, "b"},
		{"_id last", `{"_id":"c"}`, "c"},
		{"numeric id", `{"id":42}`, "42"},
		{"numeric todo_id", `{"todo_id":7,"_id":"x"}`, "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task, ok := norm(t, tc.raw)
			if !ok {
				t.Fatalf("expected record to normalize: %s", tc.raw)
			}
			if task.ID != tc.want {
				t.Fatalf("id = %q, want %q", task.ID, tc.want)
			}
		})
	}
}

func TestNormalize_DropsRecordsWithoutID(t *testing.T) {
	for _, raw := range []string{
		`{"title":"no id"}`,
		`{"id":""}`,
		`{"id":null,"title":"x"}`,
		`"not an object"`,
	} {
		if _, ok := norm(t, raw); ok {
			t.Errorf("expected %s to be dropped", raw)
		}
	}
}

func TestNormalize_TitleFallsBackToText(t *testing.T) {
	task, ok := norm(t, `{"id":"1","text":"from text"}`)
	if !ok || task.Title != "from text" {
		t.Fatalf("task = %+v, ok = %v", task, ok)
	}
	task, _ = norm(t, `{"id":"1","title":"from title","text":"ignored"}`)
	if task.Title != "from title" {
		t.Fatalf("title = %q, want %q", task.Title, "from title")
	}
}

func TestNormalize_CompletedTruthiness(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`{"id":"1","completed":true}`, true},
		{`{"id":"1","completed":false}`, false},
		{`{"id":"1","is_completed":1}`, true},
		{`{"id":"1","is_completed":0}`, false},
		{`{"id":"1","done":"yes"}`, true},
		{`{"id":"1","done":""}`, false},
		{`{"id":"1","done":null}`, false},
		{`{"id":"1","completed":false,"done":true}`, true},
		{`{"id":"1"}`, false},
	}
	for _, tc := range cases {
		task, ok := norm(t, tc.raw)
		if !ok {
			t.Fatalf("expected record to normalize: %s", tc.raw)
		}
		if task.Completed != tc.want {
			t.Errorf("%s: completed = %v, want %v", tc.raw, task.Completed, tc.want)
		}
	}
}

func TestNormalize_KeepsRawPayload(t *testing.T) {
	raw := `{"id":"1","title":"x","owner":"someone"}`
	task, _ := norm(t, raw)
	if string(task.Raw) != raw {
		t.Fatalf("raw payload not retained: %s", task.Raw)
	}
}

func TestPendingIDs(t *testing.T) {
	id := NewPendingID()
	if !IsPendingID(id) {
		t.Fatalf("expected %q to be a pending id", id)
	}
	if id == NewPendingID() {
		t.Fatal("pending ids must be unique")
	}
	if IsPendingID("42") {
		t.Fatal("server ids must not look pending")
	}
	if !(Task{ID: id}).Pending() {
		t.Fatal("placeholder task should report Pending")
	}
}
