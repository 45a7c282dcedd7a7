package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Forget(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Deactivate(ctx context.Context, args []string) error
	Reactivate(ctx context.Context, args []string) error
	Regenerate(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
}

type command struct {
	run       func(a execIface, ctx context.Context, args []string) error
	protected bool
}

var commands = map[string]command{
	"login":      {run: execIface.Login},
	"logout":     {run: execIface.Logout, protected: true},
	"forget":     {run: execIface.Forget},
	"whoami":     {run: execIface.WhoAmI, protected: true},
	"users":      {run: execIface.Users, protected: true},
	"search":     {run: execIface.Search, protected: true},
	"filter":     {run: execIface.Filter, protected: true},
	"refresh":    {run: execIface.Refresh, protected: true},
	"show":       {run: execIface.Show, protected: true},
	"create":     {run: execIface.Create, protected: true},
	"edit":       {run: execIface.Edit, protected: true},
	"deactivate": {run: execIface.Deactivate, protected: true},
	"reactivate": {run: execIface.Reactivate, protected: true},
	"regen":      {run: execIface.Regenerate, protected: true},
	"stats":      {run: execIface.Stats, protected: true},
}

const (
	helpSignedOut = "Available commands: login, forget, help, exit"
	helpSignedIn  = "Available commands: users, search <text>, filter <active|inactive|all>, refresh, " +
		"show <id>, create, edit <id>, deactivate <id>, reactivate <id>, regen <id>, stats, whoami, logout, forget, help, exit"
	msgLoginFirst = "Please log in first (type 'login')"
)

// runREPL starts the read-eval-print loop of the admin console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches the remaining tokens to the matching method on a. Commands other
// than login, forget, help and exit need a session; without one the user is sent to
// login instead. The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ua %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if cmd.protected && !a.isLoggedIn() {
			printlnFn(msgLoginFirst)
			continue
		}
		_ = cmd.run(a, ctx, args)
	}
}
