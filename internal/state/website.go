package state

import (
	"sync"

	"github.com/abelbrown/ragaweb/internal/ident"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
)

// WebsiteStore holds indexed websites, most recent first.
//
// Chat operations are keyed by the backend collection name, never by id.
// The store does not deduplicate: two collections may share a url or name.
type WebsiteStore struct {
	storage Storage
	ids     *ident.Generator
	log     *otel.Logger

	mu          sync.RWMutex
	collections []model.WebsiteCollection
	processing  bool
	aiTyping    bool
}

// NewWebsiteStore creates an empty store. storage may be nil for a purely
// in-memory store. Call Hydrate to load persisted collections.
func NewWebsiteStore(storage Storage, ids *ident.Generator, log *otel.Logger) *WebsiteStore {
	if ids == nil {
		ids = ident.New()
	}
	return &WebsiteStore{storage: storage, ids: ids, log: log}
}

// Hydrate replaces the in-memory list with the persisted one and resets
// transient flags.
func (s *WebsiteStore) Hydrate() error {
	list, err := loadList[model.WebsiteCollection](s.storage, WebsiteKey)
	if err != nil {
		s.log.Error(otel.KindStoreError, "state", err)
		return err
	}

	s.mu.Lock()
	s.collections = list
	s.processing = false
	s.aiTyping = false
	s.mu.Unlock()

	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindHydrate, Comp: "state", Msg: WebsiteKey, Count: len(list)})
	return nil
}

// ResetSession clears the transient flags. Collections are untouched.
func (s *WebsiteStore) ResetSession() {
	s.mu.Lock()
	s.processing = false
	s.aiTyping = false
	s.mu.Unlock()
}

// AddCollection prepends a new collection with an empty chat history.
func (s *WebsiteStore) AddCollection(url, name string) {
	c := model.WebsiteCollection{
		ID:          s.ids.NewID(),
		URL:         url,
		Name:        name,
		CreatedAt:   s.ids.Now().UnixMilli(),
		ChatHistory: []model.Message{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append([]model.WebsiteCollection{c}, s.collections...)
	s.persistLocked()
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionAdd, Comp: "state", Collection: name})
}

// RemoveCollection deletes the collection with the given id.
// Unknown ids are ignored.
func (s *WebsiteStore) RemoveCollection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return
	}
	name := s.collections[i].Name
	s.collections = append(s.collections[:i:i], s.collections[i+1:]...)
	s.persistLocked()
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionRemove, Comp: "state", Collection: name})
}

// AddMessage appends a message to the chat of the collection named
// collectionName and returns it. The bool is false, and nothing is created,
// when no collection has that name.
func (s *WebsiteStore) AddMessage(d model.Draft, collectionName string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByName(collectionName)
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

// ClearChat empties the chat of the collection named collectionName.
func (s *WebsiteStore) ClearChat(collectionName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByName(collectionName)
	if i < 0 {
		return
	}
	s.collections[i].ChatHistory = []model.Message{}
	s.persistLocked()
	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindChatClear, Comp: "state", Collection: collectionName})
}

// ChatHistory returns a copy of the named collection's chat, or an empty
// slice if there is no such collection.
func (s *WebsiteStore) ChatHistory(collectionName string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexByName(collectionName)
	if i < 0 {
		return []model.Message{}
	}
	return s.collections[i].Clone().ChatHistory
}

// Collections returns a copy of every collection, most recent first.
func (s *WebsiteStore) Collections() []model.WebsiteCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.WebsiteCollection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c.Clone()
	}
	return out
}

// Collection returns the first collection named collectionName.
func (s *WebsiteStore) Collection(collectionName string) (model.WebsiteCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexByName(collectionName)
	if i < 0 {
		return model.WebsiteCollection{}, false
	}
	return s.collections[i].Clone(), true
}

// FindByURL returns the first collection whose url equals url exactly.
func (s *WebsiteStore) FindByURL(url string) (model.WebsiteCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.collections {
		if c.URL == url {
			return c.Clone(), true
		}
	}
	return model.WebsiteCollection{}, false
}

// Len returns the number of collections.
func (s *WebsiteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections)
}

func (s *WebsiteStore) SetProcessing(v bool) {
	s.mu.Lock()
	s.processing = v
	s.mu.Unlock()
}

func (s *WebsiteStore) IsProcessing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

func (s *WebsiteStore) SetAITyping(v bool) {
	s.mu.Lock()
	s.aiTyping = v
	s.mu.Unlock()
}

func (s *WebsiteStore) IsAITyping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aiTyping
}

func (s *WebsiteStore) indexByID(id string) int {
	for i := range s.collections {
		if s.collections[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WebsiteStore) indexByName(name string) int {
	for i := range s.collections {
		if s.collections[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *WebsiteStore) persistLocked() {
	persistList(s.storage, s.log, WebsiteKey, s.collections)
}
