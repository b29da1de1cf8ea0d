package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// Routes the terminal app can be "on". They exist so the degradation
// coordinator has something to capture and restore.
const (
	routeHome   = "/"
	routeLogin  = "/login"
	routePets   = "/pets"
	routeTutors = "/tutores"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	unavailable() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ListPets(ctx context.Context) error
	ShowPet(ctx context.Context, id string) error
	AddPet(ctx context.Context) error
	EditPet(ctx context.Context, id string) error
	DeletePet(ctx context.Context, id string) error
	AttachPetPhoto(ctx context.Context, id, file string) error
	ListTutors(ctx context.Context) error
	ShowTutor(ctx context.Context, id string) error
	AddTutor(ctx context.Context) error
	EditTutor(ctx context.Context, id string) error
	DeleteTutor(ctx context.Context, id string) error
	Status(ctx context.Context) error
	CheckNow(ctx context.Context) error
}

func (a *App) getStatus() string {
	switch {
	case a.unavailable():
		return "unavailable"
	case a.isLoggedIn():
		return "logged in"
	default:
		return "logged out"
	}
}

// runREPL reads lines from in, parses the first token as the command and
// dispatches to e. Unknown commands are reported back. The loop exits on
// EOF or "exit"/"quit". Handlers log their own errors; the loop only does
// I/O. The reader is the same one the interactive prompts consume, so
// piped input is never buffered past the line being dispatched.
func (a *App) runREPL(ctx context.Context, e execIface, statusFn func() string, in *bufio.Reader) {
	for {
		fmt.Fprintf(a.out, "petman (%s)> ", statusFn())
		line, readErr := in.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		if e.unavailable() && !allowedWhileDown(cmd) {
			printlnFn("Service unavailable. Try 'check' to probe again.")
			continue
		}

		switch cmd {
		case "help":
			printHelp(e.isLoggedIn())

		case "login":
			_ = e.Login(ctx)
		case "logout":
			_ = e.Logout(ctx)

		case "pets":
			_ = guarded(e, func() error { return e.ListPets(ctx) })
		case "pet":
			_ = guarded(e, withArg(args, "pet <id>", func(id string) error { return e.ShowPet(ctx, id) }))
		case "addpet":
			_ = guarded(e, func() error { return e.AddPet(ctx) })
		case "editpet":
			_ = guarded(e, withArg(args, "editpet <id>", func(id string) error { return e.EditPet(ctx, id) }))
		case "delpet":
			_ = guarded(e, withArg(args, "delpet <id>", func(id string) error { return e.DeletePet(ctx, id) }))
		case "petphoto":
			if len(args) < 2 {
				printlnFn("Usage: petphoto <id> <file>")
				continue
			}
			_ = guarded(e, func() error { return e.AttachPetPhoto(ctx, args[0], args[1]) })

		case "tutors":
			_ = guarded(e, func() error { return e.ListTutors(ctx) })
		case "tutor":
			_ = guarded(e, withArg(args, "tutor <id>", func(id string) error { return e.ShowTutor(ctx, id) }))
		case "addtutor":
			_ = guarded(e, func() error { return e.AddTutor(ctx) })
		case "edittutor":
			_ = guarded(e, withArg(args, "edittutor <id>", func(id string) error { return e.EditTutor(ctx, id) }))
		case "deltutor":
			_ = guarded(e, withArg(args, "deltutor <id>", func(id string) error { return e.DeleteTutor(ctx, id) }))

		case "status":
			_ = e.Status(ctx)
		case "check", "retry":
			_ = e.CheckNow(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if readErr != nil {
			return
		}
	}
}

func allowedWhileDown(cmd string) bool {
	switch cmd {
	case "status", "check", "retry", "help", "exit", "quit":
		return true
	}
	return false
}

// guarded runs fn only when a session is active.
func guarded(e execIface, fn func() error) error {
	if !e.isLoggedIn() {
		printlnFn("Please 'login' first.")
		return nil
	}
	return fn()
}

func withArg(args []string, usage string, fn func(string) error) func() error {
	return func() error {
		if len(args) == 0 {
			printlnFn("Usage: " + usage)
			return nil
		}
		return fn(args[0])
	}
}

func printHelp(loggedIn bool) {
	if loggedIn {
		printlnFn("Commands: pets, pet <id>, addpet, editpet <id>, delpet <id>, petphoto <id> <file>,")
		printlnFn("          tutors, tutor <id>, addtutor, edittutor <id>, deltutor <id>,")
		printlnFn("          status, check, logout, exit")
	} else {
		printlnFn("Commands: login, status, check, exit")
	}
}
