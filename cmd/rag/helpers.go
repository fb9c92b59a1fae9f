package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abelbrown/ragaweb/internal/app"
	"github.com/abelbrown/ragaweb/internal/config"
	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/dustin/go-humanize"
)

// errUsage means the arguments were wrong; usage has been printed.
var errUsage = errors.New("usage")

// cli carries the streams and context shared by every command.
type cli struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
}

// flags returns a flag set that reports errors instead of exiting.
func (c *cli) flags(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() {
		fmt.Fprintf(c.errOut, "usage: rag %s %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and requires at least n positional arguments.
func parse(fs *flag.FlagSet, args []string, n int) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < n {
		fs.Usage()
		return errUsage
	}
	return nil
}

// open loads the config and starts a runtime. Close it with c.close.
func (c *cli) open() (*app.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.Open(cfg, app.Options{Comp: "cli"})
}

func (c *cli) close(rt *app.Runtime) {
	if err := rt.Close(); err != nil {
		fmt.Fprintf(c.errOut, "rag: %v\n", err)
	}
}

// terminal is the Navigator and Notifier for the CLI. Everything goes to
// stderr so stdout stays scriptable.
type terminal struct {
	w io.Writer
}

func (t terminal) Navigate(r controller.Route) {
	fmt.Fprintf(t.w, "→ %s\n", r.Path())
}

// NavigateAfter reports the destination immediately; the CLI has no page
// to wait on.
func (t terminal) NavigateAfter(r controller.Route, _ time.Duration) {
	t.Navigate(r)
}

func (t terminal) Notify(n controller.Notification) {
	mark := "•"
	switch n.Level {
	case controller.LevelSuccess:
		mark = "✓"
	case controller.LevelError:
		mark = "✗"
	}
	line := mark + " " + n.Title
	if n.Detail != "" {
		line += ": " + n.Detail
	}
	fmt.Fprintln(t.w, line)
}

// printTranscript writes a chat in display order.
func printTranscript(w io.Writer, msgs []model.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "(no messages)")
		return
	}
	for _, m := range msgs {
		who := "ai"
		if m.Role == model.RoleUser {
			who = "you"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Time().Format("15:04:05"), who, m.Content)
	}
}

// age formats a creation time for listings.
func age(t time.Time) string {
	if time.Since(t) < time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}

// question joins the remaining arguments so quoting is optional.
func question(args []string) string {
	return strings.Join(args, " ")
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
