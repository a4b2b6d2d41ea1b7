// Package controller owns the client-side task list and reconciles
// optimistic mutations against the remote service.
//
// Every operation is split in two: a Start method that applies the
// optimistic state change synchronously, and a Finish method that
// reconciles the outcome of the network call. The event loop runs the
// network phase between the two, so all list mutation happens at
// defined points and never from another goroutine.
package controller

import (
	"context"
	"strings"

	"github.com/ayetkin/todoterm/internal/api"
	"github.com/ayetkin/todoterm/internal/model"
)

// Client is the slice of the api client the controller needs.
type Client interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, title string) (model.Task, error)
	Update(ctx context.Context, id string, patch api.Patch) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// RowState is the per-task mutation state.
type RowState int

const (
	// RowClean means no mutation is in flight for the task.
	RowClean RowState = iota
	// RowPending means a mutation is awaiting the server's answer.
	RowPending
	// RowReverted means the last mutation failed and the optimistic
	// change was undone (or is about to be, via refresh).
	RowReverted
)

type deleteUndo struct {
	task  model.Task
	index int
}

// Controller is the single owner of the in-memory task list.
type Controller struct {
	client Client

	tasks  []model.Task
	rows   map[string]RowState
	undos  map[string]deleteUndo
	errMsg string

	loading bool // a refresh is in flight
	ready   bool // the initial refresh finished (ok or not)
}

// New builds a controller over the given client. The list is empty
// until the first refresh completes.
func New(client Client) *Controller {
	return &Controller{
		client: client,
		rows:   make(map[string]RowState),
		undos:  make(map[string]deleteUndo),
	}
}

// Client returns the wrapped client, for the async phase of each
// operation.
func (c *Controller) Client() Client { return c.client }

// Tasks returns the current list. Callers must treat it as read-only;
// all mutation goes through the named operations.
func (c *Controller) Tasks() []model.Task { return c.tasks }

// Err returns the current error banner text, empty when clear.
func (c *Controller) Err() string { return c.errMsg }

// Loading reports whether a refresh is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Ready reports whether the initial refresh has finished. Mutations
// are rejected until then.
func (c *Controller) Ready() bool { return c.ready }

// State returns the mutation state for a task id.
func (c *Controller) State(id string) RowState { return c.rows[id] }

// InFlight reports whether a mutation on id is awaiting the server.
func (c *Controller) InFlight(id string) bool { return c.rows[id] == RowPending }

// StartRefresh begins a wholesale reload of the list.
func (c *Controller) StartRefresh() {
	c.errMsg = ""
	c.loading = true
}

// FinishRefresh applies the outcome of a refresh. On success the list
// is replaced wholesale and every per-row state is cleared; on
// failure the previous list is kept and the error surfaced.
func (c *Controller) FinishRefresh(tasks []model.Task, err error) {
	c.loading = false
	c.ready = true
	if err != nil {
		c.errMsg = err.Error()
		return
	}
	c.tasks = tasks
	c.rows = make(map[string]RowState)
	c.undos = make(map[string]deleteUndo)
}

// StartAdd optimistically prepends a placeholder task and returns its
// temporary id. ok is false when the trimmed title is empty or the
// controller is not ready; no network call should be made then.
func (c *Controller) StartAdd(title string) (pendingID string, ok bool) {
	title = strings.TrimSpace(title)
	if title == "" || !c.ready {
		return "", false
	}
	c.errMsg = ""
	pendingID = model.NewPendingID()
	placeholder := model.Task{ID: pendingID, Title: title}
	c.tasks = append([]model.Task{placeholder}, c.tasks...)
	c.rows[pendingID] = RowPending
	return pendingID, true
}

// FinishAdd reconciles a create. On success the placeholder is
// replaced in place by the authoritative record, wherever it sits by
// now. On failure the error is surfaced and the caller must refresh;
// the wholesale replace discards the placeholder.
func (c *Controller) FinishAdd(pendingID string, created model.Task, err error) (refresh bool) {
	delete(c.rows, pendingID)
	if err != nil {
		c.errMsg = err.Error()
		c.rows[pendingID] = RowReverted
		return true
	}
	for i := range c.tasks {
		if c.tasks[i].ID == pendingID {
			c.tasks[i] = created
			break
		}
	}
	return false
}

// StartToggle optimistically flips a task's completed flag and
// returns the value to send to the server. Rejected (ok=false) when
// the task is unknown, the controller is not ready, or a mutation on
// the same id is already in flight.
func (c *Controller) StartToggle(id string) (completed bool, ok bool) {
	i := c.index(id)
	if i < 0 || !c.mutable(id) {
		return false, false
	}
	c.errMsg = ""
	c.tasks[i].Completed = !c.tasks[i].Completed
	c.rows[id] = RowPending
	return c.tasks[i].Completed, true
}

// StartEdit optimistically applies a new title. Rejected when the
// trimmed title is empty, the task is unknown, the controller is not
// ready, or the id already has a mutation in flight.
func (c *Controller) StartEdit(id, title string) bool {
	title = strings.TrimSpace(title)
	i := c.index(id)
	if title == "" || i < 0 || !c.mutable(id) {
		return false
	}
	c.errMsg = ""
	c.tasks[i].Title = title
	c.rows[id] = RowPending
	return true
}

// FinishMutate reconciles a toggle or edit. On success local state is
// already correct and nothing moves. On failure the error is surfaced
// and the caller must refresh to restore ground truth.
func (c *Controller) FinishMutate(id string, err error) (refresh bool) {
	delete(c.rows, id)
	if err != nil {
		c.errMsg = err.Error()
		c.rows[id] = RowReverted
		return true
	}
	return false
}

// StartDelete optimistically removes a task, remembering its position
// for rollback. Rejected under the same conditions as StartToggle.
func (c *Controller) StartDelete(id string) bool {
	i := c.index(id)
	if i < 0 || !c.mutable(id) {
		return false
	}
	c.errMsg = ""
	c.undos[id] = deleteUndo{task: c.tasks[i], index: i}
	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	c.rows[id] = RowPending
	return true
}

// FinishDelete reconciles a delete. On failure the task is restored
// at its original index; the prior list is known-correct apart from
// the attempted removal, so no refresh is needed.
func (c *Controller) FinishDelete(id string, err error) {
	delete(c.rows, id)
	undo, hadUndo := c.undos[id]
	delete(c.undos, id)
	if err == nil {
		return
	}
	c.errMsg = err.Error()
	c.rows[id] = RowReverted
	if !hadUndo {
		return
	}
	i := undo.index
	if i > len(c.tasks) {
		i = len(c.tasks)
	}
	c.tasks = append(c.tasks[:i], append([]model.Task{undo.task}, c.tasks[i:]...)...)
}

func (c *Controller) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// mutable gates mutations: the initial load must have finished and no
// other mutation on the same id may be in flight.
func (c *Controller) mutable(id string) bool {
	return c.ready && c.rows[id] != RowPending
}
