package state

import (
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abelbrown/ragaweb/internal/ident"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/store"
)

// memStorage is a synchronous in-memory Storage.
type memStorage struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Load(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[name], nil
}

func (m *memStorage) Persist(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = data
	m.writes++
}

// fakeClock steps through the given instants, repeating the last one.
type fakeClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func fixedIDs(t time.Time) *ident.Generator {
	return ident.New().WithClock(func() time.Time { return t })
}

func TestNextTimestampClamps(t *testing.T) {
	base := time.UnixMilli(10_000)
	history := []model.Message{{Timestamp: 12_000}}

	if got := nextTimestamp(history, base); got != 12_000 {
		t.Errorf("nextTimestamp with earlier clock = %d, want 12000", got)
	}
	if got := nextTimestamp(history, time.UnixMilli(13_000)); got != 13_000 {
		t.Errorf("nextTimestamp with later clock = %d, want 13000", got)
	}
	if got := nextTimestamp(nil, base); got != 10_000 {
		t.Errorf("nextTimestamp on empty history = %d, want 10000", got)
	}
}

func TestLoadListMissingAndCorrupt(t *testing.T) {
	st := newMemStorage()

	list, err := loadList[model.WebsiteCollection](st, WebsiteKey)
	if err != nil || list != nil {
		t.Fatalf("loadList(empty) = %v, %v", list, err)
	}

	st.data[WebsiteKey] = []byte("{not json")
	if _, err := loadList[model.WebsiteCollection](st, WebsiteKey); err == nil {
		t.Error("expected decode error for corrupt record")
	}
}

func TestPersistedRecordShape(t *testing.T) {
	st := newMemStorage()
	ws := NewWebsiteStore(st, nil, nil)
	ws.AddCollection("https://example.com", "example_com_1")

	raw := string(st.data[WebsiteKey])
	for _, field := range []string{`"collections"`, `"chatHistory":[]`, `"createdAt"`, `"name":"example_com_1"`} {
		if !strings.Contains(raw, field) {
			t.Errorf("persisted record %s missing %s", raw, field)
		}
	}
	for _, transient := range []string{"processing", "aiTyping", "isAiTyping"} {
		if strings.Contains(raw, transient) {
			t.Errorf("persisted record should not carry %q: %s", transient, raw)
		}
	}
}

func TestRoundTripThroughSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragaweb.db")

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	w := store.NewWriter(st, nil)

	ws := NewWebsiteStore(w, nil, nil)
	ds := NewDocumentStore(w, nil, nil)
	if err := ws.Hydrate(); err != nil {
		t.Fatalf("website Hydrate: %v", err)
	}
	if err := ds.Hydrate(); err != nil {
		t.Fatalf("document Hydrate: %v", err)
	}

	ws.AddCollection("https://example.com", "example_com_1")
	ws.AddMessage(model.UserDraft("hi"), "example_com_1")
	ws.AddMessage(model.AssistantDraft("hello"), "example_com_1")
	ws.SetProcessing(true)
	ws.SetAITyping(true)

	doc := ds.AddCollection(model.PDFFields{FileName: "report", OriginalName: "report.pdf", FileSize: 2048, CollectionName: "report_pdf"})
	ds.AddMessage(doc.ID, model.UserDraft("summary?"))
	ds.SetUploading(true)
	ds.SetAITyping(true)

	wantSites := ws.Collections()
	wantDocs := ds.Collections()

	// simulated restart
	w.Close()
	st.Close()

	st, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	w = store.NewWriter(st, nil)
	defer w.Close()

	ws2 := NewWebsiteStore(w, nil, nil)
	ds2 := NewDocumentStore(w, nil, nil)
	if err := ws2.Hydrate(); err != nil {
		t.Fatalf("website Hydrate after restart: %v", err)
	}
	if err := ds2.Hydrate(); err != nil {
		t.Fatalf("document Hydrate after restart: %v", err)
	}

	if got := ws2.Collections(); !reflect.DeepEqual(got, wantSites) {
		t.Errorf("website collections after restart:\n got %+v\nwant %+v", got, wantSites)
	}
	if got := ds2.Collections(); !reflect.DeepEqual(got, wantDocs) {
		t.Errorf("document collections after restart:\n got %+v\nwant %+v", got, wantDocs)
	}
	if ws2.IsProcessing() || ws2.IsAITyping() {
		t.Error("website flags should reset after restart")
	}
	if ds2.IsUploading() || ds2.IsAITyping() {
		t.Error("document flags should reset after restart")
	}
	if _, ok := ds2.Current(); ok {
		t.Error("current selection should reset after restart")
	}
}

func TestStoresAreIndependent(t *testing.T) {
	st := newMemStorage()
	ws := NewWebsiteStore(st, nil, nil)
	ds := NewDocumentStore(st, nil, nil)

	ws.AddCollection("https://example.com", "shared")
	if ds.Len() != 0 {
		t.Error("website collection leaked into document store")
	}
	ds.AddCollection(model.PDFFields{FileName: "a", CollectionName: "shared"})
	if ws.Len() != 1 {
		t.Error("document collection leaked into website store")
	}

	ds2 := NewDocumentStore(st, nil, nil)
	ds2.Hydrate()
	if ds2.Len() != 1 {
		t.Errorf("document store hydrated %d collections, want 1", ds2.Len())
	}
}
