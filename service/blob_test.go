package service

import (
	"bytes"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := fs.Get("users"); err != nil || ok {
		t.Fatalf("Get absent = (ok=%v, err=%v), want absent", ok, err)
	}

	want := []byte(`[{"username":"alice"}]`)
	if err := fs.Set("users", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := fs.Get("users")
	if err != nil || !ok {
		t.Fatalf("Get = (ok=%v, err=%v), want present", ok, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get = %s, want %s", got, want)
	}

	if err := fs.Delete("users"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := fs.Get("users"); ok {
		t.Fatal("blob still present after delete")
	}
	// Deleting an absent blob is not an error.
	if err := fs.Delete("users"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}
