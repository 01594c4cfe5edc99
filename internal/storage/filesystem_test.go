package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWriteAndPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://cdn.local/static/")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	key, err := store.Write(context.Background(), "generated/videos/job-1/clip.mp4", []byte("bytes"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if key != "generated/videos/job-1/clip.mp4" {
		t.Fatalf("key = %q", key)
	}

	data, err := os.ReadFile(filepath.Join(dir, "generated", "videos", "job-1", "clip.mp4"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "bytes" {
		t.Fatalf("data = %q", data)
	}

	if got := store.PublicURL(key); got != "http://cdn.local/static/generated/videos/job-1/clip.mp4" {
		t.Fatalf("public url = %q", got)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.mp4", []byte("x")); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}
