package thumbcache

import (
	"bytes"
	"testing"
	"time"

	"github.com/fpang/photoswipe/internal/filehandler"
)

func TestKey(t *testing.T) {
	mod := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	base := Key("/p/a.jpg", 100, mod, 512)

	if base != Key("/p/a.jpg", 100, mod, 512) {
		t.Error("Key() is not deterministic")
	}
	variants := []string{
		Key("/p/b.jpg", 100, mod, 512),
		Key("/p/a.jpg", 101, mod, 512),
		Key("/p/a.jpg", 100, mod.Add(time.Second), 512),
		Key("/p/a.jpg", 100, mod, 256),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d has the same key as the base", i)
		}
	}
}

func TestPersistentCache(t *testing.T) {
	dir := t.TempDir()
	thumb := filehandler.Thumbnail{Data: []byte{0xff, 0xd8, 1, 2, 3}, MIMEType: "image/jpeg"}

	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Get() on empty cache ok = true")
	}
	if err := c.Put("k", thumb); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("k")
	if !ok {
		t.Fatal("Get() after reopen ok = false")
	}
	if !bytes.Equal(got.Data, thumb.Data) || got.MIMEType != thumb.MIMEType {
		t.Errorf("Get() = %+v, want %+v", got, thumb)
	}
	if n := reopened.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestMemoryOnlyCache(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	c.maxEntries = 2

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Put(k, filehandler.Thumbnail{Data: []byte(k), MIMEType: "image/jpeg"}); err != nil {
			t.Fatal(err)
		}
	}
	if n := c.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2 (bounded)", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("most recent entry missing")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on memory cache error = %v", err)
	}
}
