package images

import (
	"testing"
	"time"
)

func TestInMemoryPendingStorePutGet(t *testing.T) {
	store := NewInMemoryPendingStore(time.Hour)

	id := store.Put(PendingUpload{DraftID: "draft-1", Bytes: []byte{1, 2, 3}, FileName: "a.jpg"})
	if id == "" {
		t.Fatal("Put returned an empty token")
	}

	upload, ok := store.Get("draft-1", id)
	if !ok {
		t.Fatal("Get failed for a stored token")
	}
	if upload.FileName != "a.jpg" || len(upload.Bytes) != 3 {
		t.Errorf("stored upload mangled: %+v", upload)
	}
	if upload.ID != id {
		t.Errorf("upload.ID = %q, want %q", upload.ID, id)
	}
}

func TestInMemoryPendingStoreDraftScoping(t *testing.T) {
	store := NewInMemoryPendingStore(time.Hour)

	id := store.Put(PendingUpload{DraftID: "draft-1", Bytes: []byte{1}})
	if _, ok := store.Get("draft-2", id); ok {
		t.Error("token from draft-1 was visible to draft-2")
	}
}

func TestInMemoryPendingStoreExpiry(t *testing.T) {
	store := NewInMemoryPendingStore(time.Nanosecond)

	id := store.Put(PendingUpload{DraftID: "draft-1", Bytes: []byte{1}})
	time.Sleep(5 * time.Millisecond)

	if _, ok := store.Get("draft-1", id); ok {
		t.Error("expired token was still returned")
	}
}

func TestInMemoryPendingStoreDelete(t *testing.T) {
	store := NewInMemoryPendingStore(time.Hour)

	id := store.Put(PendingUpload{DraftID: "draft-1", Bytes: []byte{1}})
	store.Delete(id)

	if _, ok := store.Get("draft-1", id); ok {
		t.Error("deleted token was still returned")
	}
}
