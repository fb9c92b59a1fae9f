package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStripExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report"},
		{"report.final.pdf", "report.final"},
		{"noext", "noext"},
		{".pdf", ".pdf"},
	}
	for _, tt := range tests {
		if got := StripExtension(tt.in); got != tt.want {
			t.Errorf("StripExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	c := WebsiteCollection{ID: "1", ChatHistory: []Message{{ID: "m1", Content: "a"}}}
	cp := c.Clone()
	cp.ChatHistory[0].Content = "changed"

	if c.ChatHistory[0].Content != "a" {
		t.Error("mutating clone changed original history")
	}
}

func TestCloneNilHistoryEncodesAsEmptyArray(t *testing.T) {
	c := PDFCollection{ID: "doc"}.Clone()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"chatHistory":[]`) {
		t.Errorf("expected empty chatHistory array, got %s", data)
	}
	if strings.Contains(string(data), "pagesProcessed") {
		t.Errorf("zero pagesProcessed should be omitted, got %s", data)
	}
}

func TestPDFPatchApply(t *testing.T) {
	c := PDFCollection{ID: "doc", FileName: "old", CollectionName: "old_pdf_vectors", FileSize: 10}
	name := "new"
	PDFPatch{FileName: &name}.Apply(&c)

	if c.FileName != "new" {
		t.Errorf("FileName = %q, want new", c.FileName)
	}
	if c.CollectionName != "old_pdf_vectors" || c.FileSize != 10 || c.ID != "doc" {
		t.Errorf("unset fields changed: %+v", c)
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("system is not a chat role")
	}
}
