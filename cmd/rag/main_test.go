package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/abelbrown/ragaweb/internal/model"
)

// fakeBackend serves the four backend endpoints with canned answers.
type fakeBackend struct {
	ingests atomic.Int32
	uploads atomic.Int32
	queries atomic.Int32
	down    atomic.Bool
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if f.down.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"backend unavailable"}`))
		return
	}
	switch r.URL.Path {
	case "/ingestion":
		f.ingests.Add(1)
		w.Write([]byte(`{"collection_name":"example_com"}`))
	case "/ingestfile":
		f.uploads.Add(1)
		file, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		io.Copy(io.Discard, file)
		file.Close()
		json.NewEncoder(w).Encode(map[string]any{
			"collection_name": "pdf_" + strings.TrimSuffix(hdr.Filename, ".pdf"),
			"filename":        hdr.Filename,
			"chunks_created":  7,
			"pages_processed": 2,
		})
	case "/query":
		f.queries.Add(1)
		w.Write([]byte(`{"response":"42"}`))
	case "/health":
		w.Write([]byte(`{"status":"OK"}`))
	default:
		http.NotFound(w, r)
	}
}

// setup points the CLI at a fresh data dir and a fake backend.
func setup(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	t.Setenv("RAGAWEB_DATA_DIR", t.TempDir())
	t.Setenv("RAGAWEB_API_URL", srv.URL)
	t.Setenv("NEXT_PUBLIC_API_URL", "")
	t.Setenv("RAGAWEB_TIMEOUT_SECONDS", "")
	return fb
}

// rag runs one command and returns its exit code and output.
func rag(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNoArgsPrintsUsage(t *testing.T) {
	code, out, _ := rag(t)
	if code != 0 || !strings.Contains(out, "Commands:") {
		t.Errorf("code=%d out=%q", code, out)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := rag(t, "bogus")
	if code != 1 || !strings.Contains(errOut, `unknown command "bogus"`) {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestMissingArgumentsIsUsageError(t *testing.T) {
	setup(t)
	for _, args := range [][]string{
		{"ingest"},
		{"ask", "example_com"},
		{"upload"},
		{"ask-pdf", "id"},
		{"clear"},
		{"rm", "--pdf"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, _, errOut := rag(t, args...)
			if code != 2 {
				t.Errorf("code = %d, want 2", code)
			}
			if !strings.Contains(errOut, "usage: rag "+args[0]) {
				t.Errorf("stderr = %q", errOut)
			}
		})
	}
}

func TestHelpFlag(t *testing.T) {
	setup(t)
	code, _, errOut := rag(t, "sites", "-h")
	if code != 0 || !strings.Contains(errOut, "usage: rag sites") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestIngestAskHistory(t *testing.T) {
	fb := setup(t)

	code, out, errOut := rag(t, "ingest", "https://example.com")
	if code != 0 {
		t.Fatalf("ingest: code=%d stderr=%q", code, errOut)
	}
	if strings.TrimSpace(out) != "example_com" {
		t.Errorf("ingest stdout = %q", out)
	}
	if !strings.Contains(errOut, "Website successfully indexed!") || !strings.Contains(errOut, "→ /dashboard/example_com") {
		t.Errorf("ingest stderr = %q", errOut)
	}

	code, out, errOut = rag(t, "ask", "example_com", "what", "is", "this?")
	if code != 0 {
		t.Fatalf("ask: code=%d stderr=%q", code, errOut)
	}
	if strings.TrimSpace(out) != "42" {
		t.Errorf("ask stdout = %q", out)
	}

	_, out, _ = rag(t, "history", "example_com")
	if !strings.Contains(out, "you: what is this?") || !strings.Contains(out, "ai: 42") {
		t.Errorf("history = %q", out)
	}

	_, out, _ = rag(t, "sites")
	if !strings.Contains(out, "example_com") || !strings.Contains(out, "2 msgs") {
		t.Errorf("sites = %q", out)
	}

	if fb.ingests.Load() != 1 || fb.queries.Load() != 1 {
		t.Errorf("ingests=%d queries=%d", fb.ingests.Load(), fb.queries.Load())
	}
}

func TestIngestSameURLShortCircuits(t *testing.T) {
	fb := setup(t)
	rag(t, "ingest", "https://example.com")

	code, out, errOut := rag(t, "ingest", "https://example.com")
	if code != 0 || strings.TrimSpace(out) != "example_com" {
		t.Errorf("code=%d out=%q", code, out)
	}
	if strings.Contains(errOut, "successfully indexed") {
		t.Errorf("second ingest should not re-index: %q", errOut)
	}
	if fb.ingests.Load() != 1 {
		t.Errorf("backend ingests = %d, want 1", fb.ingests.Load())
	}
}

func TestIngestInvalidURL(t *testing.T) {
	fb := setup(t)
	code, _, errOut := rag(t, "ingest", "not a url")
	if code != 1 || !strings.Contains(errOut, "Invalid URL") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
	if fb.ingests.Load() != 0 {
		t.Error("invalid url reached the backend")
	}
}

func TestAskUnknownCollection(t *testing.T) {
	fb := setup(t)
	code, _, errOut := rag(t, "ask", "nope", "hello")
	if code != 1 || !strings.Contains(errOut, "collection not found") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
	if fb.queries.Load() != 0 {
		t.Error("unknown collection reached the backend")
	}
}

func TestClearAndRemoveWebsite(t *testing.T) {
	setup(t)
	rag(t, "ingest", "https://example.com")
	rag(t, "ask", "example_com", "hi")

	code, _, errOut := rag(t, "clear", "example_com")
	if code != 0 || !strings.Contains(errOut, "Chat cleared") {
		t.Fatalf("clear: code=%d stderr=%q", code, errOut)
	}
	_, out, _ := rag(t, "history", "example_com")
	if strings.TrimSpace(out) != "(no messages)" {
		t.Errorf("history after clear = %q", out)
	}

	_, out, _ = rag(t, "sites", "-json")
	var sites []model.WebsiteCollection
	if err := json.Unmarshal([]byte(out), &sites); err != nil || len(sites) != 1 {
		t.Fatalf("sites -json = %q (%v)", out, err)
	}

	if code, _, _ := rag(t, "rm", "no-such-id"); code != 1 {
		t.Errorf("rm unknown id: code = %d", code)
	}
	if code, _, errOut := rag(t, "rm", sites[0].ID); code != 0 {
		t.Fatalf("rm: code=%d stderr=%q", code, errOut)
	}
	_, out, _ = rag(t, "sites")
	if !strings.Contains(out, "No websites yet") {
		t.Errorf("sites after rm = %q", out)
	}
}

func TestUploadAskPDF(t *testing.T) {
	fb := setup(t)
	path := writePDF(t, "report.pdf")

	code, out, errOut := rag(t, "upload", path)
	if code != 0 {
		t.Fatalf("upload: code=%d stderr=%q", code, errOut)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("upload printed no id")
	}
	if !strings.Contains(errOut, "PDF uploaded successfully!") || !strings.Contains(errOut, "→ /pdf/"+id) {
		t.Errorf("upload stderr = %q", errOut)
	}

	_, out, _ = rag(t, "pdfs", "-json")
	var docs []model.PDFCollection
	if err := json.Unmarshal([]byte(out), &docs); err != nil || len(docs) != 1 {
		t.Fatalf("pdfs -json = %q (%v)", out, err)
	}
	if docs[0].FileName != "report" || docs[0].CollectionName != "pdf_report" || docs[0].ChunksCreated != 7 {
		t.Errorf("doc = %+v", docs[0])
	}

	code, out, errOut = rag(t, "ask-pdf", id, "summarize")
	if code != 0 || strings.TrimSpace(out) != "42" {
		t.Fatalf("ask-pdf: code=%d out=%q stderr=%q", code, out, errOut)
	}

	_, out, _ = rag(t, "history", "--pdf", id)
	if !strings.Contains(out, "you: summarize") {
		t.Errorf("history = %q", out)
	}

	if code, _, _ := rag(t, "clear", "--pdf", id); code != 0 {
		t.Errorf("clear --pdf: code = %d", code)
	}
	if code, _, errOut := rag(t, "rm", "--pdf", id); code != 0 || !strings.Contains(errOut, "PDF removed successfully") {
		t.Errorf("rm --pdf: code=%d stderr=%q", code, errOut)
	}
	_, out, _ = rag(t, "pdfs")
	if !strings.Contains(out, "No PDFs uploaded yet") {
		t.Errorf("pdfs after rm = %q", out)
	}

	if fb.uploads.Load() != 1 || fb.queries.Load() != 1 {
		t.Errorf("uploads=%d queries=%d", fb.uploads.Load(), fb.queries.Load())
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	fb := setup(t)
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("just some text\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, errOut := rag(t, "upload", path)
	if code != 1 || !strings.Contains(errOut, "Invalid file type") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
	if fb.uploads.Load() != 0 {
		t.Error("non-PDF reached the backend")
	}
}

func TestAskPDFUnknownID(t *testing.T) {
	fb := setup(t)
	code, _, errOut := rag(t, "ask-pdf", "missing", "hello")
	if code != 1 || !strings.Contains(errOut, "collection not found") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
	if fb.queries.Load() != 0 {
		t.Error("unknown document reached the backend")
	}
}

func TestHealth(t *testing.T) {
	fb := setup(t)
	code, out, _ := rag(t, "health")
	if code != 0 || !strings.HasPrefix(out, "OK ") {
		t.Errorf("code=%d out=%q", code, out)
	}

	fb.down.Store(true)
	code, _, errOut := rag(t, "health")
	if code != 1 || !strings.Contains(errOut, "backend unavailable") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestEventsFilterByKind(t *testing.T) {
	setup(t)
	rag(t, "ingest", "https://example.com")

	code, out, errOut := rag(t, "events", "-kind", "backend.ingest")
	if code != 0 {
		t.Fatalf("events: code=%d stderr=%q", code, errOut)
	}
	if !strings.Contains(out, "backend.ingest_complete") {
		t.Errorf("missing ingest event: %q", out)
	}
	if strings.Contains(out, "sys.startup") {
		t.Errorf("kind filter leaked other events: %q", out)
	}
}

func TestEventsMissingLog(t *testing.T) {
	setup(t)
	code, _, errOut := rag(t, "events")
	if code != 1 || !strings.Contains(errOut, "event log not found") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestReadTailLines(t *testing.T) {
	log := strings.Join([]string{
		`{"kind":"a.one","level":"info"}`,
		`not json`,
		`{"kind":"b.two","level":"warn"}`,
		``,
		`{"kind":"a.three","level":"error"}`,
	}, "\n")

	all := readTailLines(strings.NewReader(log), 10, func(eventRecord) bool { return true })
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	last := readTailLines(strings.NewReader(log), 1, func(eventRecord) bool { return true })
	if len(last) != 1 || last[0].ev.Kind != "a.three" {
		t.Errorf("tail 1 = %+v", last)
	}

	f := eventFilter{minLevel: "warn"}
	severe := readTailLines(strings.NewReader(log), 10, f.match)
	if len(severe) != 2 {
		t.Errorf("warn+ = %d events, want 2", len(severe))
	}

	if got := readTailLines(strings.NewReader(log), 0, f.match); got != nil {
		t.Errorf("tail 0 = %v", got)
	}
}

func TestFormatEvent(t *testing.T) {
	line := formatEvent(eventRecord{
		Level:      "error",
		Kind:       "backend.query_error",
		Comp:       "backend",
		RequestID:  "0123456789abcdef",
		DurMs:      12.5,
		Collection: "example_com",
		Err:        "backend: 500: boom",
	})
	for _, want := range []string{"ERROR", "backend.query_error", "(12.5ms)", "col=example_com", "rid=01234567", "err=backend: 500: boom"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatEvent missing %q: %q", want, line)
		}
	}
}
