// Package ui provides the Bubble Tea TUI for ragaweb.
package ui

import (
	"time"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
)

// NavigateMsg moves the App to another page.
type NavigateMsg struct {
	Route controller.Route
}

// NotifyMsg shows a toast.
type NotifyMsg struct {
	Notification controller.Notification
}

// toastExpired removes the toast with the given sequence number.
type toastExpired struct {
	seq int
}

// SubmitDone is sent when a website ingestion finishes.
type SubmitDone struct {
	Collection model.WebsiteCollection
	Err        error
}

// SendDone is sent when a chat answer arrives or fails.
type SendDone struct {
	Key   string // collection name or document id
	Reply model.Message
	Err   error
}

// UploadDone is sent when a PDF upload finishes.
type UploadDone struct {
	Collection model.PDFCollection
	Err        error
}

// resolveTick settles a document chat that opened in the loading state.
type resolveTick struct {
	id string
}

// RefreshTick re-reads the stores for the current page.
type RefreshTick struct{}

// BackendStatus reports the result of a background health check.
type BackendStatus struct {
	Status  string
	Err     error
	Latency time.Duration
	At      time.Time
}
