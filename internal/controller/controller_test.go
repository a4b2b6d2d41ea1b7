package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayetkin/todoterm/internal/api"
	"github.com/ayetkin/todoterm/internal/model"
)

func readyController(t *testing.T, tasks ...model.Task) *Controller {
	t.Helper()
	c := New(nil)
	c.StartRefresh()
	c.FinishRefresh(tasks, nil)
	return c
}

func task(id, title string, completed bool) model.Task {
	return model.Task{ID: id, Title: title, Completed: completed}
}

func TestRefresh_ReplacesListWholesale(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	c.StartRefresh()
	if !c.Loading() {
		t.Fatal("expected loading during refresh")
	}
	c.FinishRefresh([]model.Task{task("2", "b", true)}, nil)
	if c.Loading() {
		t.Fatal("expected loading cleared")
	}
	got := c.Tasks()
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("tasks = %+v", got)
	}
}

func TestRefresh_FailureKeepsListAndSurfacesError(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	c.StartRefresh()
	c.FinishRefresh(nil, errors.New("boom"))
	if len(c.Tasks()) != 1 {
		t.Fatalf("tasks = %+v, want previous list kept", c.Tasks())
	}
	if c.Err() != "boom" {
		t.Fatalf("err = %q", c.Err())
	}
}

func TestMutationsRejectedBeforeInitialRefresh(t *testing.T) {
	c := New(nil)
	if _, ok := c.StartAdd("x"); ok {
		t.Error("add must be rejected before the initial refresh")
	}
	if _, ok := c.StartToggle("1"); ok {
		t.Error("toggle must be rejected before the initial refresh")
	}
	if c.StartDelete("1") {
		t.Error("delete must be rejected before the initial refresh")
	}
}

func TestAdd_EmptyTitleIsANoOp(t *testing.T) {
	c := readyController(t)
	for _, title := range []string{"", "   ", "\t\n"} {
		if _, ok := c.StartAdd(title); ok {
			t.Errorf("StartAdd(%q) accepted", title)
		}
	}
	if len(c.Tasks()) != 0 {
		t.Fatalf("tasks = %+v, want no change", c.Tasks())
	}
}

func TestAdd_OptimisticInsertThenReplace(t *testing.T) {
	c := readyController(t, task("1", "existing", false))

	pendingID, ok := c.StartAdd("  Buy milk  ")
	if !ok {
		t.Fatal("StartAdd rejected")
	}
	got := c.Tasks()
	if len(got) != 2 {
		t.Fatalf("len = %d, want optimistic insert before the call resolves", len(got))
	}
	if got[0].ID != pendingID || got[0].Title != "Buy milk" || got[0].Completed {
		t.Fatalf("placeholder = %+v", got[0])
	}
	if !model.IsPendingID(pendingID) {
		t.Fatalf("pendingID = %q", pendingID)
	}
	if c.State(pendingID) != RowPending {
		t.Fatal("placeholder should be in flight")
	}

	refresh := c.FinishAdd(pendingID, task("42", "Buy milk", false), nil)
	if refresh {
		t.Fatal("successful create must not force a refresh")
	}
	got = c.Tasks()
	if len(got) != 2 || got[0].ID != "42" {
		t.Fatalf("tasks = %+v, want placeholder replaced in place", got)
	}
	if c.InFlight("42") || c.InFlight(pendingID) {
		t.Fatal("in-flight marker should be cleared")
	}
}

func TestAdd_FailureRequestsRefresh(t *testing.T) {
	c := readyController(t)
	pendingID, _ := c.StartAdd("x")
	refresh := c.FinishAdd(pendingID, model.Task{}, errors.New("create failed"))
	if !refresh {
		t.Fatal("failed create must request a refresh")
	}
	if c.Err() != "create failed" {
		t.Fatalf("err = %q", c.Err())
	}
	// The refresh discards the placeholder wholesale.
	c.StartRefresh()
	c.FinishRefresh(nil, nil)
	if len(c.Tasks()) != 0 {
		t.Fatalf("tasks = %+v, want placeholder gone", c.Tasks())
	}
}

func TestToggle_FlipsImmediately(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	completed, ok := c.StartToggle("1")
	if !ok || !completed {
		t.Fatalf("StartToggle = (%v, %v)", completed, ok)
	}
	if !c.Tasks()[0].Completed {
		t.Fatal("flip must apply before the network call resolves")
	}
	if refresh := c.FinishMutate("1", nil); refresh {
		t.Fatal("successful toggle must not force a refresh")
	}
	if !c.Tasks()[0].Completed {
		t.Fatal("local state is authoritative after success")
	}
}

func TestToggle_FailureRefreshRestoresServerValue(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	c.StartToggle("1")
	if refresh := c.FinishMutate("1", errors.New("update failed")); !refresh {
		t.Fatal("failed toggle must request a refresh")
	}
	c.StartRefresh()
	c.FinishRefresh([]model.Task{task("1", "a", false)}, nil)
	if c.Tasks()[0].Completed {
		t.Fatal("refresh should restore the server's value")
	}
}

func TestToggle_NoIDIsANoOp(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	if _, ok := c.StartToggle(""); ok {
		t.Fatal("toggle without an id must be rejected")
	}
	if _, ok := c.StartToggle("missing"); ok {
		t.Fatal("toggle on an unknown id must be rejected")
	}
}

func TestSecondMutationOnSameIDRejected(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	if _, ok := c.StartToggle("1"); !ok {
		t.Fatal("first toggle rejected")
	}
	if _, ok := c.StartToggle("1"); ok {
		t.Fatal("second toggle on the same id must be gated")
	}
	if c.StartDelete("1") {
		t.Fatal("delete while a toggle is in flight must be gated")
	}
	c.FinishMutate("1", nil)
	if _, ok := c.StartToggle("1"); !ok {
		t.Fatal("gate must lift once the mutation resolves")
	}
}

func TestEdit_EmptyTitleIsANoOp(t *testing.T) {
	c := readyController(t, task("1", "before", false))
	if c.StartEdit("1", "   ") {
		t.Fatal("empty edit must be rejected")
	}
	if c.Tasks()[0].Title != "before" {
		t.Fatalf("title = %q, want unchanged", c.Tasks()[0].Title)
	}
	if c.InFlight("1") {
		t.Fatal("rejected edit must not mark the row in flight")
	}
}

func TestEdit_AppliesTitleImmediately(t *testing.T) {
	c := readyController(t, task("1", "before", false))
	if !c.StartEdit("1", " after ") {
		t.Fatal("StartEdit rejected")
	}
	if c.Tasks()[0].Title != "after" {
		t.Fatalf("title = %q", c.Tasks()[0].Title)
	}
	if refresh := c.FinishMutate("1", nil); refresh {
		t.Fatal("successful edit must not force a refresh")
	}
}

func TestDelete_RemovesThenRollsBackAtOriginalIndex(t *testing.T) {
	c := readyController(t,
		task("1", "a", false),
		task("2", "b", false),
		task("3", "c", false),
	)
	if !c.StartDelete("2") {
		t.Fatal("StartDelete rejected")
	}
	if len(c.Tasks()) != 2 {
		t.Fatalf("tasks = %+v, want immediate removal", c.Tasks())
	}

	c.FinishDelete("2", errors.New("delete failed"))
	got := c.Tasks()
	if len(got) != 3 || got[1].ID != "2" {
		t.Fatalf("tasks = %+v, want task restored at index 1", got)
	}
	if c.Err() != "delete failed" {
		t.Fatalf("err = %q", c.Err())
	}
	if c.State("2") != RowReverted {
		t.Fatalf("state = %v, want RowReverted", c.State("2"))
	}
}

func TestDelete_SuccessLeavesTaskGone(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	c.StartDelete("1")
	c.FinishDelete("1", nil)
	if len(c.Tasks()) != 0 {
		t.Fatalf("tasks = %+v", c.Tasks())
	}
	if c.Err() != "" {
		t.Fatalf("err = %q", c.Err())
	}
}

func TestCreateThenRefresh_RoundTrip(t *testing.T) {
	stored := []map[string]any{}
	nextID := 41
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(stored)
		case http.MethodPost:
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			nextID++
			rec := map[string]any{"id": nextID, "title": body["title"], "completed": false}
			stored = append(stored, rec)
			json.NewEncoder(w).Encode(rec)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := api.New(srv.URL)
	c := New(client)

	c.StartRefresh()
	tasks, err := client.List(ctx)
	c.FinishRefresh(tasks, err)
	if err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	pendingID, ok := c.StartAdd("Buy milk")
	if !ok {
		t.Fatal("StartAdd rejected")
	}
	created, err := c.Client().Create(ctx, "Buy milk")
	if refresh := c.FinishAdd(pendingID, created, err); refresh {
		t.Fatalf("create failed: %v", err)
	}

	c.StartRefresh()
	tasks, err = client.List(ctx)
	c.FinishRefresh(tasks, err)
	if err != nil {
		t.Fatalf("refresh after create: %v", err)
	}

	got := c.Tasks()
	if len(got) != 1 {
		t.Fatalf("tasks = %+v, want exactly the created task", got)
	}
	if got[0].Title != "Buy milk" {
		t.Errorf("title = %q", got[0].Title)
	}
	if got[0].ID != "42" {
		t.Errorf("id = %q, want the server-assigned id", got[0].ID)
	}
	if model.IsPendingID(got[0].ID) {
		t.Error("the surviving id must not be a placeholder id")
	}
}

func TestErrorBanner_SingleAndClearedOnNextStart(t *testing.T) {
	c := readyController(t, task("1", "a", false))
	c.StartToggle("1")
	c.FinishMutate("1", errors.New("first"))
	c.StartDelete("1")
	c.FinishDelete("1", errors.New("second"))
	if c.Err() != "second" {
		t.Fatalf("err = %q, want only the latest failure", c.Err())
	}
	if _, ok := c.StartToggle("1"); !ok {
		t.Fatal("toggle rejected")
	}
	if c.Err() != "" {
		t.Fatalf("err = %q, want banner cleared when the next operation starts", c.Err())
	}
}
