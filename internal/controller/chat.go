package controller

import (
	"context"

	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/state"
)

// WebsiteChat drives the chat page of an indexed website. Every call is
// keyed by the backend collection name.
type WebsiteChat struct {
	sites *state.WebsiteStore
	api   Backend
	note  Notifier
	log   *otel.Logger
}

// NewWebsiteChat creates the website chat controller.
func NewWebsiteChat(sites *state.WebsiteStore, api Backend, note Notifier, log *otel.Logger) *WebsiteChat {
	return &WebsiteChat{sites: sites, api: api, note: note, log: log}
}

// Send appends text as a user message, asks the backend, and appends the
// answer. On failure the user message stays and no answer is added.
func (c *WebsiteChat) Send(ctx context.Context, collectionName, text string) (model.Message, error) {
	if err := ValidateQuery(text); err != nil {
		c.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindRejected, Comp: "controller", Collection: collectionName, Err: err.Error()})
		return model.Message{}, err
	}
	if _, ok := c.sites.AddMessage(model.UserDraft(text), collectionName); !ok {
		return model.Message{}, ErrCollectionNotFound
	}

	c.sites.SetAITyping(true)
	defer c.sites.SetAITyping(false)

	answer, err := c.api.Query(ctx, text, collectionName)
	if err != nil {
		c.note.Notify(failure("Failed to get response", "Please try again"))
		return model.Message{}, err
	}
	if answer == "" {
		answer = FallbackAnswer
	}
	reply, _ := c.sites.AddMessage(model.AssistantDraft(answer), collectionName)
	return reply, nil
}

// Clear empties the chat.
func (c *WebsiteChat) Clear(collectionName string) {
	c.sites.ClearChat(collectionName)
}

// History returns the chat in display order.
func (c *WebsiteChat) History(collectionName string) []model.Message {
	return c.sites.ChatHistory(collectionName)
}

// Typing reports whether an answer is pending.
func (c *WebsiteChat) Typing() bool {
	return c.sites.IsAITyping()
}

// LoadState is the document chat page's view of its route id.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StateNotFound
)

func (s LoadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateNotFound:
		return "not-found"
	}
	return "loading"
}

// DocumentChat drives the chat page of an uploaded PDF. Calls are keyed by
// the local collection id; the backend is queried with the collection's
// backend name.
type DocumentChat struct {
	docs *state.DocumentStore
	api  Backend
	nav  Navigator
	note Notifier
	log  *otel.Logger
}

// NewDocumentChat creates the document chat controller.
func NewDocumentChat(docs *state.DocumentStore, api Backend, nav Navigator, note Notifier, log *otel.Logger) *DocumentChat {
	return &DocumentChat{docs: docs, api: api, nav: nav, note: note, log: log}
}

// Open makes id current if it exists. An unknown id is reported as loading:
// the caller waits HydrationGrace and then calls Resolve.
func (c *DocumentChat) Open(id string) (model.PDFCollection, LoadState) {
	if col, ok := c.docs.EnsureCollection(id); ok {
		return col, StateReady
	}
	return model.PDFCollection{}, StateLoading
}

// Resolve settles a loading page. A still-unknown id is not found: the user
// is told and sent back to the document list after NotFoundRedirectDelay.
func (c *DocumentChat) Resolve(id string) (model.PDFCollection, LoadState) {
	if col, ok := c.docs.EnsureCollection(id); ok {
		return col, StateReady
	}
	c.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindRejected, Comp: "controller", Collection: id, Err: ErrCollectionNotFound.Error()})
	c.note.Notify(failure("PDF not found", "The PDF you're looking for doesn't exist or has been removed."))
	c.nav.NavigateAfter(DocumentsRoute(), NotFoundRedirectDelay)
	return model.PDFCollection{}, StateNotFound
}

// Send appends text as a user message, asks the backend, and appends the
// answer. On failure the user message stays and no answer is added.
func (c *DocumentChat) Send(ctx context.Context, id, text string) (model.Message, error) {
	if err := ValidateQuery(text); err != nil {
		c.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindRejected, Comp: "controller", Collection: id, Err: err.Error()})
		return model.Message{}, err
	}
	col, ok := c.docs.Collection(id)
	if !ok {
		return model.Message{}, ErrCollectionNotFound
	}
	c.docs.AddMessage(id, model.UserDraft(text))

	c.docs.SetAITyping(true)
	defer c.docs.SetAITyping(false)

	answer, err := c.api.Query(ctx, text, col.CollectionName)
	if err != nil {
		c.note.Notify(failure("Failed to get response", "Please try again"))
		return model.Message{}, err
	}
	if answer == "" {
		answer = FallbackAnswer
	}
	reply, _ := c.docs.AddMessage(id, model.AssistantDraft(answer))
	return reply, nil
}

// Clear empties the chat of id.
func (c *DocumentChat) Clear(id string) {
	if _, ok := c.docs.Collection(id); !ok {
		return
	}
	c.docs.ClearChat(id)
	c.note.Notify(success("Chat cleared", ""))
}

// History returns the chat of id in display order.
func (c *DocumentChat) History(id string) []model.Message {
	return c.docs.ChatHistory(id)
}

// Current returns the selected document.
func (c *DocumentChat) Current() (model.PDFCollection, bool) {
	return c.docs.Current()
}

// Typing reports whether an answer is pending.
func (c *DocumentChat) Typing() bool {
	return c.docs.IsAITyping()
}
