package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. Every command
// gets the words that followed it on the line.
type execIface interface {
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Schedule(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Paste(ctx context.Context, args []string) error
	Subjects(ctx context.Context, args []string) error
	Exams(ctx context.Context, args []string) error
	Homework(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  login                           log into the portal and store the credentials
  logout                          log out and forget the stored credentials
  status                          session, schedule and last sync
  sync                            sync from the portal now
  schedule [daily|weekly|manual|off] [HH:MM]
                                  show or change the automatic sync
  import <path|s3://bucket/key>   preview and import a .txt, .csv or .json file
  paste [text|csv|json]           preview and import pasted text
  subjects | exams | homework     list planner contents
  help | exit`

// runREPL reads commands from r until EOF, "exit"/"quit" or ctx is done.
// Command errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	commands := map[string]func(context.Context, []string) error{
		"login":    a.Login,
		"logout":   a.Logout,
		"status":   a.Status,
		"sync":     a.Sync,
		"schedule": a.Schedule,
		"import":   a.Import,
		"paste":    a.Paste,
		"subjects": a.Subjects,
		"exams":    a.Exams,
		"homework": a.Homework,
	}

	for ctx.Err() == nil {
		fmt.Fprintf(w, "agendasync (%s)> ", statusFn())
		line, err := r.ReadString('\n')
		if line == "" && err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(w, "error:", err)
			}
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		fn, ok := commands[cmd]
		if !ok {
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}
		if err := fn(ctx, args); err != nil {
			fmt.Fprintln(w, "error:", err)
		}
	}
}
