// Command rag is the scriptable CLI for ragaweb. It shares the TUI's
// database, so collections created here show up in the TUI and vice versa.
//
// Usage:
//
//	rag                          Show help
//	rag sites                    List indexed websites
//	rag ingest <url>             Index a website
//	rag ask <name> <question>    Ask an indexed website
//	rag pdfs                     List uploaded PDFs
//	rag upload <file.pdf>        Upload and index a PDF
//	rag ask-pdf <id> <question>  Ask an uploaded PDF
//	rag history [--pdf] <key>    Print a chat
//	rag clear [--pdf] <key>      Clear a chat
//	rag rm [--pdf] <id>          Remove a website or PDF
//	rag health                   Check the backend
//	rag events                   JSONL event log viewer
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const usage = `rag: chat with websites and PDFs from the shell

Usage:
  rag <command> [flags] [args]

Commands:
  sites       List indexed websites
  ingest      Index a website:            rag ingest https://example.com
  ask         Ask an indexed website:     rag ask example_com "what is this?"
  pdfs        List uploaded PDFs
  upload      Upload and index a PDF:     rag upload ~/report.pdf
  ask-pdf     Ask an uploaded PDF:        rag ask-pdf <id> "summarize it"
  history     Print a chat:               rag history [--pdf] <name|id>
  clear       Clear a chat:               rag clear [--pdf] <name|id>
  rm          Remove a website or PDF:    rag rm [--pdf] <id>
  health      Check the backend
  events      JSONL event log viewer

Environment:
  RAGAWEB_API_URL          Backend base url (default http://localhost:8000)
  NEXT_PUBLIC_API_URL      Fallback backend url
  RAGAWEB_DATA_DIR         State directory (default ~/.ragaweb)
  RAGAWEB_TIMEOUT_SECONDS  Backend request timeout

Run 'rag <command> -h' for command-specific help.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return 0
	}

	c := &cli{ctx: ctx, out: stdout, errOut: stderr}
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "sites":
		err = c.runSites(rest)
	case "ingest":
		err = c.runIngest(rest)
	case "ask":
		err = c.runAsk(rest)
	case "pdfs":
		err = c.runPDFs(rest)
	case "upload":
		err = c.runUpload(rest)
	case "ask-pdf":
		err = c.runAskPDF(rest)
	case "history":
		err = c.runHistory(rest)
	case "clear":
		err = c.runClear(rest)
	case "rm":
		err = c.runRemove(rest)
	case "health":
		err = c.runHealth(rest)
	case "events":
		err = c.runEvents(rest)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "rag: unknown command %q\n\n", cmd)
		fmt.Fprint(stderr, usage)
		return 1
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "rag: %v\n", err)
		return 1
	}
}
