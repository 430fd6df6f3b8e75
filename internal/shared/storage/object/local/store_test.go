package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/util"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	key, size, mime, err := store.Save(ctx, "google:1", "kontrak kerja.pdf", bytes.NewReader([]byte("%PDF-1.4\nhello")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != 14 {
		t.Fatalf("expected size 14, got %d", size)
	}
	if mime != util.MimePDF {
		t.Fatalf("expected pdf mime, got %q", mime)
	}
	if !strings.HasPrefix(key, util.HashUserKey("google:1")+"/") {
		t.Fatalf("expected key under hashed user dir, got %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4\nhello" {
		t.Fatalf("unexpected contents %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("deleting a missing object should be a no-op, got %v", err)
	}
}

func TestKeysCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	if _, err := store.Open(ctx, "../secret"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := store.SaveWithKey(ctx, "/abs/path", "text/plain", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
