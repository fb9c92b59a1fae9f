package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/state"
)

// RecentLimit is how many uploads the document list shows.
const RecentLimit = 5

// DocumentList drives the PDF upload and list page.
type DocumentList struct {
	docs *state.DocumentStore
	api  Backend
	nav  Navigator
	note Notifier
	log  *otel.Logger
}

// NewDocumentList creates the document list controller.
func NewDocumentList(docs *state.DocumentStore, api Backend, nav Navigator, note Notifier, log *otel.Logger) *DocumentList {
	return &DocumentList{docs: docs, api: api, nav: nav, note: note, log: log}
}

// Upload validates f, sends it to the backend and records the new
// collection, which becomes current. Its chat opens after
// UploadNavigateDelay. Rejected files never reach the network.
func (l *DocumentList) Upload(ctx context.Context, f File) (model.PDFCollection, error) {
	if err := ValidateUpload(f); err != nil {
		l.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindRejected, Comp: "controller", Msg: f.Name, Err: err.Error()})
		switch {
		case errors.Is(err, ErrFileTooLarge):
			l.note.Notify(failure("File too large", "Please upload a PDF file smaller than 10MB"))
		case errors.Is(err, ErrNotPDF):
			l.note.Notify(failure("Invalid file type", "Please select a PDF file"))
		default:
			l.note.Notify(failure("Failed to upload PDF", err.Error()))
		}
		return model.PDFCollection{}, err
	}

	l.docs.SetUploading(true)
	defer l.docs.SetUploading(false)

	rc, err := f.Open()
	if err != nil {
		l.note.Notify(failure("Failed to upload PDF", "Please try again with a valid PDF file"))
		return model.PDFCollection{}, fmt.Errorf("controller: open upload: %w", err)
	}
	defer rc.Close()

	res, err := l.api.IngestFile(ctx, f.Name, rc)
	if err != nil {
		l.note.Notify(failure("Failed to upload PDF", "Please try again with a valid PDF file"))
		return model.PDFCollection{}, err
	}

	col := l.docs.AddCollection(model.PDFFields{
		FileName:       model.StripExtension(f.Name),
		OriginalName:   f.Name,
		FileSize:       f.Size,
		CollectionName: res.CollectionName,
		PagesProcessed: res.PagesProcessed,
		ChunksCreated:  res.ChunksCreated,
	})
	l.note.Notify(success("PDF uploaded successfully!", "Ready to chat with "+f.Name))
	l.nav.NavigateAfter(DocumentChatRoute(col.ID), UploadNavigateDelay)
	return col, nil
}

// Open navigates to the chat of document id.
func (l *DocumentList) Open(id string) {
	l.nav.Navigate(DocumentChatRoute(id))
}

// Remove deletes document id.
func (l *DocumentList) Remove(id string) {
	if _, ok := l.docs.Collection(id); !ok {
		return
	}
	l.docs.RemoveCollection(id)
	l.note.Notify(success("PDF removed successfully", ""))
}

// Recent lists up to n uploads, most recent first.
func (l *DocumentList) Recent(n int) []model.PDFCollection {
	return l.docs.Recent(n)
}

// All lists every upload, most recent first.
func (l *DocumentList) All() []model.PDFCollection {
	return l.docs.Collections()
}

// Uploading reports whether an upload is in flight.
func (l *DocumentList) Uploading() bool {
	return l.docs.IsUploading()
}
