// Package model defines the chat domain shared by the website and document
// stores.
//
// Website collections are keyed by the backend's logical collection name for
// all chat operations. Document collections are keyed by their local id; their
// CollectionName is only sent to the backend. The two key spaces are never
// mixed in one lookup.
package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one entry in a chat history. Immutable after creation.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

// Time returns the creation instant.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Draft is a message before the store assigns its id and timestamp.
type Draft struct {
	Role    Role
	Content string
}

// UserDraft is shorthand for a user-authored draft.
func UserDraft(content string) Draft {
	return Draft{Role: RoleUser, Content: content}
}

// AssistantDraft is shorthand for an assistant-authored draft.
func AssistantDraft(content string) Draft {
	return Draft{Role: RoleAssistant, Content: content}
}

// WebsiteCollection is an indexed website and its chat.
type WebsiteCollection struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`  // as submitted, not normalized
	Name        string    `json:"name"` // backend logical collection name; chat key
	CreatedAt   int64     `json:"createdAt"`
	ChatHistory []Message `json:"chatHistory"`
}

// Created returns the creation instant.
func (c WebsiteCollection) Created() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// Clone returns a copy that shares no slice memory with c.
func (c WebsiteCollection) Clone() WebsiteCollection {
	c.ChatHistory = cloneMessages(c.ChatHistory)
	return c
}

// PDFCollection is an uploaded document and its chat.
type PDFCollection struct {
	ID             string    `json:"id"`       // local store and route key
	FileName       string    `json:"fileName"` // extension stripped
	OriginalName   string    `json:"originalName"`
	FileSize       int64     `json:"fileSize"`
	UploadedAt     int64     `json:"uploadedAt"`
	CollectionName string    `json:"collectionName"` // backend key
	ChatHistory    []Message `json:"chatHistory"`

	PagesProcessed int `json:"pagesProcessed,omitempty"`
	ChunksCreated  int `json:"chunksCreated,omitempty"`
}

// Uploaded returns the upload instant.
func (c PDFCollection) Uploaded() time.Time {
	return time.UnixMilli(c.UploadedAt)
}

// Clone returns a copy that shares no slice memory with c.
func (c PDFCollection) Clone() PDFCollection {
	c.ChatHistory = cloneMessages(c.ChatHistory)
	return c
}

// PDFFields are the caller-supplied fields of a new PDFCollection.
type PDFFields struct {
	FileName       string
	OriginalName   string
	FileSize       int64
	CollectionName string
	PagesProcessed int
	ChunksCreated  int
}

// PDFPatch is a partial update. Nil fields are left unchanged.
// Id, upload instant and chat history cannot be patched.
type PDFPatch struct {
	FileName       *string
	OriginalName   *string
	FileSize       *int64
	CollectionName *string
	PagesProcessed *int
	ChunksCreated  *int
}

// Apply merges p into c.
func (p PDFPatch) Apply(c *PDFCollection) {
	if p.FileName != nil {
		c.FileName = *p.FileName
	}
	if p.OriginalName != nil {
		c.OriginalName = *p.OriginalName
	}
	if p.FileSize != nil {
		c.FileSize = *p.FileSize
	}
	if p.CollectionName != nil {
		c.CollectionName = *p.CollectionName
	}
	if p.PagesProcessed != nil {
		c.PagesProcessed = *p.PagesProcessed
	}
	if p.ChunksCreated != nil {
		c.ChunksCreated = *p.ChunksCreated
	}
}

// StripExtension removes the final extension from a file name:
// "report.final.pdf" becomes "report.final".
func StripExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func cloneMessages(in []Message) []Message {
	if in == nil {
		return []Message{}
	}
	out := make([]Message, len(in))
	copy(out, in)
	return out
}
