package linkscan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
<dl class="resource-values">
  <dt>Subject</dt>
  <dd><a class="uri-value-link" href="http://id.loc.gov/authorities/subjects/sh85129960.html">Subways</a></dd>
  <dt>Creator</dt>
  <dd><a class="metadata-browse uri-value-link" href=" https://www.wikidata.org/wiki/Q42 ">Douglas Adams</a></dd>
  <dd><a class="uri-value-link" href="http://id.loc.gov/authorities/subjects/sh85129960.html">duplicate</a></dd>
  <dd><a class="other-link" href="https://example.org/ignored">ignored</a></dd>
  <dd><a class="uri-value-link-extra" href="https://example.org/also-ignored">ignored</a></dd>
  <dd><a class="uri-value-link">no href</a></dd>
</dl>
</body></html>`

func TestScan(t *testing.T) {
	got, err := Scan(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://id.loc.gov/authorities/subjects/sh85129960.html",
		"https://www.wikidata.org/wiki/Q42",
	}, got)
}

func TestScan_NoLinks(t *testing.T) {
	got, err := Scan(strings.NewReader("<p>nothing here</p>"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "items", "show")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(nested, "b.html"), []byte(page), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"),
		[]byte(`<a class="uri-value-link" href="https://viaf.org/viaf/113230702">VIAF</a>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte(`<a class="uri-value-link" href="https://example.org/x">x</a>`), 0o644))

	links, err := ScanFiles(filepath.Join(dir, "**", "*.html"), filepath.Join(dir, "*.html"))
	require.NoError(t, err)
	require.Len(t, links, 3)

	assert.Equal(t, Link{File: filepath.Join(dir, "a.html"), URI: "https://viaf.org/viaf/113230702"}, links[0])
	assert.Equal(t, filepath.Join(nested, "b.html"), links[1].File)
	assert.Equal(t, "http://id.loc.gov/authorities/subjects/sh85129960.html", links[1].URI)
	assert.Equal(t, "https://www.wikidata.org/wiki/Q42", links[2].URI)
}

func TestScanFiles_BadPattern(t *testing.T) {
	_, err := ScanFiles("[")
	assert.Error(t, err)
}

func writeAtomic(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func nextEvent(t *testing.T, w *Watcher) WatchEvent {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return WatchEvent{}
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(WatchConfig{DebounceDelay: 20 * time.Millisecond}, dir, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	page := filepath.Join(dir, "item.html")
	v1 := `<a class="uri-value-link" href="https://viaf.org/viaf/113230702">VIAF</a>`
	writeAtomic(t, page, v1)

	ev := nextEvent(t, w)
	assert.Equal(t, page, ev.Path)
	assert.Equal(t, WatchOpCreate, ev.Operation)
	assert.Equal(t, []string{"https://viaf.org/viaf/113230702"}, ev.Links)

	// Unchanged content is not reported; the next event is the other page.
	writeAtomic(t, page, v1)
	other := filepath.Join(dir, "other.html")
	writeAtomic(t, other, `<p>none</p>`)
	ev = nextEvent(t, w)
	assert.Equal(t, other, ev.Path)
	assert.Empty(t, ev.Links)

	writeAtomic(t, page, `<a class="uri-value-link" href="https://www.wikidata.org/wiki/Q42">Q42</a>`)
	ev = nextEvent(t, w)
	assert.Equal(t, page, ev.Path)
	assert.Equal(t, WatchOpModify, ev.Operation)
	assert.Equal(t, []string{"https://www.wikidata.org/wiki/Q42"}, ev.Links)

	require.NoError(t, os.Remove(page))
	ev = nextEvent(t, w)
	assert.Equal(t, page, ev.Path)
	assert.Equal(t, WatchOpDelete, ev.Operation)

	cancel()
	for range w.Events() {
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(WatchConfig{DebounceDelay: 20 * time.Millisecond, FileExtensions: []string{"htm"}}, dir, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	writeAtomic(t, filepath.Join(dir, "notes.html"), `<a class="uri-value-link" href="x">x</a>`)
	writeAtomic(t, filepath.Join(dir, "page.htm"), `<a class="uri-value-link" href="y">y</a>`)

	ev := nextEvent(t, w)
	assert.Equal(t, filepath.Join(dir, "page.htm"), ev.Path)
	assert.Equal(t, []string{"y"}, ev.Links)
	assert.Zero(t, w.DroppedEvents())
}
