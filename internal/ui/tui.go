package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayetkin/todoterm/internal/api"
	"github.com/ayetkin/todoterm/internal/controller"
	"github.com/ayetkin/todoterm/internal/model"
)

// taskItem adapts a task to bubbles/list.Item.
type taskItem struct {
	task  model.Task
	state controller.RowState
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return "" }
func (i taskItem) FilterValue() string { return i.task.Title }

// Messages delivered when the network phase of an operation resolves.
type (
	refreshedMsg struct {
		tasks []model.Task
		err   error
	}
	createdMsg struct {
		pendingID string
		task      model.Task
		err       error
	}
	mutatedMsg struct {
		id  string
		err error
	}
	deletedMsg struct {
		id  string
		err error
	}
)

type modelTUI struct {
	ctrl *controller.Controller
	list list.Model

	width  int
	height int

	// Inline add
	adding bool
	ti     textinput.Model // shared text input model (used for add & edit)
	addErr string

	// Inline edit; the edited row is tracked by id, not index, since
	// the list can be reshuffled by a refresh while editing.
	editing bool
	editID  string
	editErr string
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(taskItem)
	t := Current()

	box := t.Muted.Render(t.BoxUnchecked)
	text := it.task.Title
	if it.task.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}

	line := fmt.Sprintf("%s %s", box, text)
	switch {
	case it.task.Pending():
		line += " " + t.Muted.Render("(creating…)")
	case it.state == controller.RowPending:
		line += " " + t.Muted.Render("(saving…)")
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// RunInteractive starts the Bubble Tea list over the controller. The
// initial refresh runs before any mutation is allowed through.
func RunInteractive(ctrl *controller.Controller) error {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	t := Current()
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")

	// Extend help with our bindings
	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind := key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind := key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "toggle"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	extra := func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, delBind, refreshBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := modelTUI{
		ctrl:   ctrl,
		list:   l,
		width:  80,
		height: 24,
	}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "New task title..."
	m.ti.CharLimit = 200

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m modelTUI) Init() tea.Cmd {
	m.ctrl.StartRefresh()
	return refreshCmd(m.ctrl.Client())
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case refreshedMsg:
		m.ctrl.FinishRefresh(msg.tasks, msg.err)
		m.syncList()
		return m, nil

	case createdMsg:
		if m.ctrl.FinishAdd(msg.pendingID, msg.task, msg.err) {
			m.ctrl.StartRefresh()
			m.syncList()
			return m, refreshCmd(m.ctrl.Client())
		}
		m.syncList()
		return m, nil

	case mutatedMsg:
		if m.ctrl.FinishMutate(msg.id, msg.err) {
			m.ctrl.StartRefresh()
			m.syncList()
			return m, refreshCmd(m.ctrl.Client())
		}
		m.syncList()
		return m, nil

	case deletedMsg:
		m.ctrl.FinishDelete(msg.id, msg.err)
		m.syncList()
		return m, nil
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		switch x := msg.(type) {
		case tea.KeyMsg:
			switch x.String() {
			case "enter":
				title := m.ti.Value()
				pendingID, ok := m.ctrl.StartAdd(title)
				if !ok {
					m.addErr = "Title cannot be empty"
					return m, nil
				}
				m.syncList()
				m.ti.SetValue("")
				m.ti.Blur()
				m.adding = false
				m.addErr = ""
				return m, createCmd(m.ctrl.Client(), pendingID, strings.TrimSpace(title))
			case "esc":
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	// edit mode
	if m.editing {
		var cmd tea.Cmd
		switch x := msg.(type) {
		case tea.KeyMsg:
			switch x.String() {
			case "enter":
				title := strings.TrimSpace(m.ti.Value())
				if !m.ctrl.StartEdit(m.editID, title) {
					// Keep edit mode open on an empty title.
					m.editErr = "Title cannot be empty"
					return m, nil
				}
				id := m.editID
				m.syncList()
				m.ti.SetValue("")
				m.ti.Blur()
				m.editing = false
				m.editErr = ""
				return m, editCmd(m.ctrl.Client(), id, title)
			case "esc":
				m.editing = false
				m.editErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't steal keys from the fuzzy filter input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case " ":
			id := m.cursorID()
			if completed, ok := m.ctrl.StartToggle(id); ok {
				m.syncList()
				return m, toggleCmd(m.ctrl.Client(), id, completed)
			}
			return m, nil
		case "d":
			id := m.cursorID()
			if m.ctrl.StartDelete(id) {
				m.syncList()
				return m, deleteCmd(m.ctrl.Client(), id)
			}
			return m, nil
		case "a":
			if !m.ctrl.Ready() {
				return m, nil
			}
			m.adding = true
			m.ti.SetValue("")
			m.ti.Placeholder = "New task title..."
			m.ti.Focus()
			return m, nil
		case "e":
			id := m.cursorID()
			if id == "" || !m.ctrl.Ready() || m.ctrl.InFlight(id) {
				return m, nil
			}
			if it, ok := m.cursorItem(); ok {
				m.editing = true
				m.editID = id
				m.ti.SetValue(it.task.Title)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit task title..."
				m.ti.Focus()
			}
			return m, nil
		case "r":
			m.ctrl.StartRefresh()
			return m, refreshCmd(m.ctrl.Client())
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) View() string {
	listHeight := m.height - 4
	if m.adding || m.editing {
		listHeight = m.height - 6
	}
	m.list.SetSize(m.width-2, listHeight)

	content := m.list.View()
	t := Current()

	if m.ctrl.Loading() && !m.ctrl.Ready() {
		content += "\n" + t.Muted.Render("Loading…")
	}
	if e := m.ctrl.Err(); e != "" {
		content += "\n" + t.Error.Render("✖ "+e)
	}

	if m.adding || m.editing {
		title := "Add new task"
		if m.editing {
			title = "Edit task"
		}
		if m.addErr != "" && m.adding {
			title += " — " + t.Error.Render(m.addErr)
		}
		if m.editErr != "" && m.editing {
			title += " — " + t.Error.Render(m.editErr)
		}
		inputLine := title + "\n" + m.ti.View()
		content = content + "\n" + t.Border.Render(inputLine)
	}
	return t.Border.Render(content)
}

// syncList rebuilds the visible items and the header counts from the
// controller, keeping the cursor in place where possible.
func (m *modelTUI) syncList() {
	tasks := m.ctrl.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskItem{task: task, state: m.ctrl.State(task.ID)})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	t := Current()
	done, pending := stats(tasks)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(tasks),
	)
}

// cursorItem resolves the row under the cursor. The cursor indexes
// the visible items, which differ from the full set whenever a filter
// is applied, so it must go through SelectedItem rather than Items().
func (m modelTUI) cursorItem() (taskItem, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	return it, ok
}

func (m modelTUI) cursorID() string {
	if it, ok := m.cursorItem(); ok {
		return it.task.ID
	}
	return ""
}

// Commands: the network phase of each operation. The api client
// enforces the request timeout itself.

func refreshCmd(c controller.Client) tea.Cmd {
	return func() tea.Msg {
		tasks, err := c.List(context.Background())
		return refreshedMsg{tasks: tasks, err: err}
	}
}

func createCmd(c controller.Client, pendingID, title string) tea.Cmd {
	return func() tea.Msg {
		task, err := c.Create(context.Background(), title)
		return createdMsg{pendingID: pendingID, task: task, err: err}
	}
}

func toggleCmd(c controller.Client, id string, completed bool) tea.Cmd {
	return func() tea.Msg {
		_, err := c.Update(context.Background(), id, api.Patch{Completed: &completed})
		return mutatedMsg{id: id, err: err}
	}
}

func editCmd(c controller.Client, id, title string) tea.Cmd {
	return func() tea.Msg {
		_, err := c.Update(context.Background(), id, api.Patch{Title: &title})
		return mutatedMsg{id: id, err: err}
	}
}

func deleteCmd(c controller.Client, id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: c.Delete(context.Background(), id)}
	}
}

// small list stats used for the header
func stats(tasks []model.Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
