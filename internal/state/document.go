package state

import (
	"sync"

	"github.com/abelbrown/ragaweb/internal/ident"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
)

// DocumentStore holds uploaded documents, most recent first, plus the
// current selection.
//
// Every operation is keyed by the local collection id. The current
// selection is kept as an id and resolved against the list on read, so a
// removed or patched collection can never be observed through a stale copy.
type DocumentStore struct {
	storage Storage
	ids     *ident.Generator
	log     *otel.Logger

	mu          sync.RWMutex
	collections []model.PDFCollection
	currentID   string
	uploading   bool
	aiTyping    bool
}

// NewDocumentStore creates an empty store. storage may be nil for a purely
// in-memory store. Call Hydrate to load persisted collections.
func NewDocumentStore(storage Storage, ids *ident.Generator, log *otel.Logger) *DocumentStore {
	if ids == nil {
		ids = ident.New()
	}
	return &DocumentStore{storage: storage, ids: ids, log: log}
}

// Hydrate replaces the in-memory list with the persisted one. The current
// selection and transient flags reset to their defaults.
func (s *DocumentStore) Hydrate() error {
	list, err := loadList[model.PDFCollection](s.storage, DocumentKey)
	if err != nil {
		s.log.Error(otel.KindStoreError, "state", err)
		return err
	}

	s.mu.Lock()
	s.collections = list
	s.resetLocked()
	s.mu.Unlock()

	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindHydrate, Comp: "state", Msg: DocumentKey, Count: len(list)})
	return nil
}

// ResetSession clears the current selection and transient flags.
func (s *DocumentStore) ResetSession() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// AddCollection builds a collection from f, prepends it, makes it current
// and returns it.
func (s *DocumentStore) AddCollection(f model.PDFFields) model.PDFCollection {
	at := s.ids.Now()
	c := model.PDFCollection{
		ID:             s.ids.DocumentID(f.FileName, at),
		FileName:       f.FileName,
		OriginalName:   f.OriginalName,
		FileSize:       f.FileSize,
		UploadedAt:     at.UnixMilli(),
		CollectionName: f.CollectionName,
		ChatHistory:    []model.Message{},
		PagesProcessed: f.PagesProcessed,
		ChunksCreated:  f.ChunksCreated,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append([]model.PDFCollection{c}, s.collections...)
	s.currentID = c.ID
	s.persistLocked()
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionAdd, Comp: "state", Collection: c.ID})
	return c.Clone()
}

// RemoveCollection deletes the collection with the given id and clears the
// current selection if it pointed there. Unknown ids are ignored.
func (s *DocumentStore) RemoveCollection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return
	}
	s.collections = append(s.collections[:i:i], s.collections[i+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	s.persistLocked()
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionRemove, Comp: "state", Collection: id})
}

// AddMessage appends a message to the chat of collection id and returns it.
// The bool is false when no such collection exists.
func (s *DocumentStore) AddMessage(id string, d model.Draft) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return model.Message{}, false
	}
	c := &s.collections[i]
	m := model.Message{
		ID:        s.ids.NewID(),
		Role:      d.Role,
		Content:   d.Content,
		Timestamp: nextTimestamp(c.ChatHistory, s.ids.Now()),
	}
	c.ChatHistory = append(c.ChatHistory, m)
	s.persistLocked()
	return m, true
}

// ClearChat empties the chat of collection id.
func (s *DocumentStore) ClearChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return
	}
	s.collections[i].ChatHistory = []model.Message{}
	s.persistLocked()
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindChatClear, Comp: "state", Collection: id})
}

// UpdateCollection merges p into collection id. Unknown ids are ignored.
func (s *DocumentStore) UpdateCollection(id string, p model.PDFPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return
	}
	p.Apply(&s.collections[i])
	s.persistLocked()
}

// ChatHistory returns a copy of collection id's chat, or an empty slice.
func (s *DocumentStore) ChatHistory(id string) []model.Message {
	c, ok := s.Collection(id)
	if !ok {
		return []model.Message{}
	}
	return c.ChatHistory
}

// Collection looks up a collection by id without touching the selection.
func (s *DocumentStore) Collection(id string) (model.PDFCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexByID(id)
	if i < 0 {
		return model.PDFCollection{}, false
	}
	return s.collections[i].Clone(), true
}

// EnsureCollection looks up a collection by id and makes it current.
// false means the collection does not exist, not that it is loading; the
// selection is left unchanged in that case.
func (s *DocumentStore) EnsureCollection(id string) (model.PDFCollection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return model.PDFCollection{}, false
	}
	s.currentID = id
	return s.collections[i].Clone(), true
}

// Current returns the selected collection, if any.
func (s *DocumentStore) Current() (model.PDFCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentID == "" {
		return model.PDFCollection{}, false
	}
	i := s.indexByID(s.currentID)
	if i < 0 {
		return model.PDFCollection{}, false
	}
	return s.collections[i].Clone(), true
}

// SetCurrentCollection selects collection id. Returns false, leaving the
// selection unchanged, if id is unknown.
func (s *DocumentStore) SetCurrentCollection(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexByID(id) < 0 {
		return false
	}
	s.currentID = id
	return true
}

// ClearCurrent drops the selection.
func (s *DocumentStore) ClearCurrent() {
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()
}

// Collections returns a copy of every collection, most recent first.
func (s *DocumentStore) Collections() []model.PDFCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PDFCollection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c.Clone()
	}
	return out
}

// Recent returns up to n collections, most recent first.
func (s *DocumentStore) Recent(n int) []model.PDFCollection {
	all := s.Collections()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Len returns the number of collections.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections)
}

func (s *DocumentStore) SetUploading(v bool) {
	s.mu.Lock()
	s.uploading = v
	s.mu.Unlock()
}

func (s *DocumentStore) IsUploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading
}

func (s *DocumentStore) SetAITyping(v bool) {
	s.mu.Lock()
	s.aiTyping = v
	s.mu.Unlock()
}

func (s *DocumentStore) IsAITyping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aiTyping
}

func (s *DocumentStore) resetLocked() {
	s.currentID = ""
	s.uploading = false
	s.aiTyping = false
}

func (s *DocumentStore) indexByID(id string) int {
	for i := range s.collections {
		if s.collections[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *DocumentStore) persistLocked() {
	persistList(s.storage, s.log, DocumentKey, s.collections)
}
