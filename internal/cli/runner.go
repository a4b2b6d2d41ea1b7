// Package cli routes subcommands against the remote task service.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayetkin/todoterm/internal/api"
	"github.com/ayetkin/todoterm/internal/auth"
	"github.com/ayetkin/todoterm/internal/config"
	"github.com/ayetkin/todoterm/internal/controller"
	"github.com/ayetkin/todoterm/internal/model"
	"github.com/ayetkin/todoterm/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool   // list grouped by pending/done
	APIURL string // overrides the configured service URL
	Debug  bool   // request logging to stderr
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ui.SetTheme(cfg.Theme)

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doInteractive(newClient(cfg, opt))

	case "list":
		return doList(newClient(cfg, opt), opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: todoterm add <title...>")
			return 2
		}
		return doAdd(newClient(cfg, opt), strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: todoterm done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return doToggle(newClient(cfg, opt), n)

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: todoterm rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("rm: not a number: " + a[0])
			return 2
		}
		return doRemove(newClient(cfg, opt), n)

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: todoterm auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin()
		case "logout":
			return doAuthLogout()
		case "status":
			return doAuthStatus()
		case "whoami":
			return doAuthWhoAmI()
		default:
			ui.Fail("usage: todoterm auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`todoterm - a terminal client for your todo service

Usage:
  todoterm <subcommand> [args]

Subcommands:
  ls                 Interactive list (TUI)
  list               Print the list and exit
  add <title...>     Add a new task (title can be multiple words)
  done <index>       Toggle done for task at 1-based index
  rm <index>         Remove task at 1-based index
  auth <login|logout|status|whoami>   Token authentication

Examples:
  todoterm add "Buy milk"
  todoterm ls
  todoterm done 2
  todoterm rm 3

The service URL comes from ~/.todoterm/config.toml or TODOTERM_API_URL
(default http://localhost:3001).
`)
}

// newClient assembles the api client from config, root flags, and any
// stored token.
func newClient(cfg config.Config, opt Options) *api.Client {
	apiURL := cfg.APIURL
	if opt.APIURL != "" {
		apiURL = opt.APIURL
	}
	opts := []api.Option{api.WithTimeout(cfg.Timeout())}
	if ti, _ := auth.GetToken(); ti != nil {
		opts = append(opts, api.WithToken(ti.Token))
	}
	if cfg.Debug || opt.Debug {
		logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
		opts = append(opts, api.WithLogger(logger))
	}
	return api.New(apiURL, opts...)
}

// ---------------------------------------------------
// Auth subcommands (use functions from the auth package)
// ---------------------------------------------------

func doAuthLogin() int {
	fmt.Print("Paste your token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(token, nil); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		ui.Hint("not logged in")
		fmt.Println("Run: todoterm auth login")
		return 0
	}
	fmt.Printf("source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Printf("expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("expires: (unknown)")
	}
	fmt.Println("env override: " + auth.EnvToken)
	return 0
}

// whoami tries to decode JWT locally (unsigned); opaque tokens print basic info.
func doAuthWhoAmI() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		ui.Fail("not logged in. Run: todoterm auth login")
		return 2
	}
	if payload, ok := auth.DecodeJWTPayload(ti.Token); ok {
		fmt.Println("JWT payload:")
		fmt.Println(payload)
		return 0
	}
	fmt.Println("Opaque token (cannot introspect locally).")
	fmt.Println("source:", ti.Source)
	return 0
}

// ---------------------------------------------------
// Core subcommands (remote CRUD)
// ---------------------------------------------------

func doInteractive(client *api.Client) int {
	ctrl := controller.New(client)
	if err := ui.RunInteractive(ctrl); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func doList(client *api.Client, opt Options) int {
	tasks, err := client.List(context.Background())
	if err != nil {
		ui.Fail("list: " + err.Error())
		return 1
	}

	t := ui.Current()
	d, p := stats(tasks)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(tasks),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(tasks)...)
	} else {
		lines = append(lines, flatLines(tasks)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todoterm add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func doAdd(client *api.Client, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail("add: empty title")
		return 2
	}
	if _, err := client.Create(context.Background(), title); err != nil {
		ui.Fail("add: " + err.Error())
		return 1
	}
	ui.OK("added")
	return 0
}

func doToggle(client *api.Client, userIndex int) int {
	ctx := context.Background()
	task, code := taskAtIndex(ctx, client, userIndex)
	if code != 0 {
		return code
	}
	completed := !task.Completed
	if _, err := client.Update(ctx, task.ID, api.Patch{Completed: &completed}); err != nil {
		ui.Fail("done: " + err.Error())
		return 1
	}
	ui.OK("toggled")
	return 0
}

func doRemove(client *api.Client, userIndex int) int {
	ctx := context.Background()
	task, code := taskAtIndex(ctx, client, userIndex)
	if code != 0 {
		return code
	}
	if err := client.Delete(ctx, task.ID); err != nil {
		ui.Fail("rm: " + err.Error())
		return 1
	}
	ui.OK("removed")
	return 0
}

// taskAtIndex resolves a 1-based display index to the task it names,
// fetching the current list first.
func taskAtIndex(ctx context.Context, client *api.Client, userIndex int) (model.Task, int) {
	tasks, err := client.List(ctx)
	if err != nil {
		ui.Fail("list: " + err.Error())
		return model.Task{}, 1
	}
	if userIndex < 1 || userIndex > len(tasks) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(tasks), userIndex))
		ui.Hint("Hint: run `todoterm list` to see valid indexes")
		return model.Task{}, 2
	}
	return tasks[userIndex-1], 0
}

// -------------- rendering helpers --------------

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

func flatLines(tasks []model.Task) []string {
	t := ui.Current()
	if len(tasks) == 0 {
		return []string{t.Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(tasks))
	for i, task := range tasks {
		idx := fmt.Sprintf("%2d.", i+1)
		box := t.Muted.Render(t.BoxUnchecked)
		if task.Completed {
			box = t.Success.Render(t.BoxChecked)
		}
		title := task.Title
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(idx), box, title))
	}
	return out
}

func groupLines(tasks []model.Task) []string {
	t := ui.Current()
	var pend, done []model.Task
	for _, task := range tasks {
		if task.Completed {
			done = append(done, task)
		} else {
			pend = append(pend, task)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
