// Package controller implements the page controllers of ragaweb.
//
// Controllers sit between the stores (state) and the views (TUI or CLI),
// turning user actions into store mutations and backend calls.
//
// # Architecture
//
//	┌─────────┐     ┌────────────┐     ┌──────┐
//	│  State  │ <── │ Controller │ <── │ View │
//	│ (Store) │     │  + Backend │ ──> │ (UI) │
//	└─────────┘     └────────────┘     └──────┘
//
// Views render straight from the stores. Controllers report back only
// through the Navigator and Notifier they were built with.
//
// # Controllers
//
//   - Dashboard: index a website, or jump to an existing one by url
//   - WebsiteChat: ask questions of an indexed website
//   - DocumentList: upload, list and remove PDFs
//   - DocumentChat: resolve a PDF from its route and ask questions of it
//
// # Concurrency
//
// Controller methods block on the network and take a context. The TUI runs
// them inside tea.Cmds; the CLI calls them directly. Stores serialize their
// own mutations, so controllers hold no locks. A user message is appended
// before its request is sent and the reply after it returns; transient flags
// are always reset on the way out.
package controller

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/abelbrown/ragaweb/internal/backend"
)

// Fixed delays of the page flows.
const (
	// UploadNavigateDelay separates a successful upload from opening its chat.
	UploadNavigateDelay = 500 * time.Millisecond
	// HydrationGrace is how long a document chat waits before deciding an
	// unknown id is really missing.
	HydrationGrace = 100 * time.Millisecond
	// NotFoundRedirectDelay is how long the not-found state shows before
	// returning to the document list.
	NotFoundRedirectDelay = 1500 * time.Millisecond
)

// FallbackAnswer replaces an empty answer from the backend.
const FallbackAnswer = "Sorry, I couldn't find an answer to your question."

// Validation and lookup failures. All are returned before any network call.
var (
	ErrInvalidURL         = errors.New("controller: invalid url")
	ErrEmptyQuery         = errors.New("controller: empty query")
	ErrFileTooLarge       = errors.New("controller: file too large")
	ErrNotPDF             = errors.New("controller: not a pdf")
	ErrCollectionNotFound = errors.New("controller: collection not found")
)

// Backend is the subset of the retrieval backend the controllers call.
// *backend.Client satisfies it.
type Backend interface {
	IngestURL(ctx context.Context, url string) (backend.IngestResult, error)
	IngestFile(ctx context.Context, fileName string, r io.Reader) (backend.FileIngestResult, error)
	Query(ctx context.Context, query, collectionName string) (string, error)
}

// Navigator moves the view to another page.
type Navigator interface {
	Navigate(r Route)
	// NavigateAfter navigates once d has elapsed. It must not block.
	NavigateAfter(r Route, d time.Duration)
}

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a short user-facing message.
type Notification struct {
	Level  Level
	Title  string
	Detail string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

func success(title, detail string) Notification {
	return Notification{Level: LevelSuccess, Title: title, Detail: detail}
}

func failure(title, detail string) Notification {
	return Notification{Level: LevelError, Title: title, Detail: detail}
}
