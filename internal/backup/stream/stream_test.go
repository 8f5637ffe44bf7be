package stream

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testFreet struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func writeArchive(t *testing.T, path string, entries []testFreet) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := NewWriter(zw, "entities/freets.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != len(entries) {
		t.Errorf("Count() = %d, want %d", w.Count(), len(entries))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "freets.zip")

	entries := []testFreet{
		{ID: "1", Content: "first <b>freet</b>"},
		{ID: "2", Content: "café & crème"},
		{ID: "3", Content: "line\nbreak"},
	}
	writeArchive(t, zipPath, entries)

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	rc, err := OpenFile(&zr.Reader, "entities/freets.jsonl")
	if err != nil {
		t.Fatal(err)
	}

	var got []testFreet
	for entity, err := range NewReader[testFreet](rc).All() {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, entity)
	}

	if len(got) != len(entries) {
		t.Fatalf("got %d entities, want %d", len(got), len(entries))
	}
	for i, e := range got {
		if e != entries[i] {
			t.Errorf("entity %d: got %+v, want %+v", i, e, entries[i])
		}
	}
}

func TestWriter_DoesNotEscapeHTML(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "freets.zip")
	writeArchive(t, zipPath, []testFreet{{ID: "1", Content: "<3"}})

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	rc, err := OpenFile(&zr.Reader, "entities/freets.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"content":"<3"`) {
		t.Errorf("expected raw html in %q", raw)
	}
}

func TestOpenFile_NotFound(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := OpenFile(zr, "nonexistent.jsonl"); err != ErrFileNotFound {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestReader_ContinuesOnParseError(t *testing.T) {
	jsonl := `{"id":"1","content":"good"}
{bad json}

{"id":"2","content":"also good"}
`
	rc := io.NopCloser(strings.NewReader(jsonl))

	var good []testFreet
	var failures int
	for entity, err := range NewReader[testFreet](rc).All() {
		if err != nil {
			failures++
			continue
		}
		good = append(good, entity)
	}

	if len(good) != 2 {
		t.Errorf("got %d good entities, want 2", len(good))
	}
	if failures != 1 {
		t.Errorf("got %d errors, want 1", failures)
	}
}
