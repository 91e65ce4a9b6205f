package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDrops_InitialScanEmitsOnlyImages(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "code.png")
	if err := os.WriteFile(img, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drops, _, err := WatchDrops(ctx, DropConfig{Root: dir, InitialScan: true})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	select {
	case got := <-drops:
		if got != img {
			t.Fatalf("got %q, want %q", got, img)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no drop emitted for existing image")
	}

	// The text file must never appear.
	select {
	case got := <-drops:
		t.Fatalf("unexpected drop: %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchDrops_RapidBurstWithDebounce(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drops, _, err := WatchDrops(ctx, DropConfig{Root: dir, Debounce: time.Millisecond})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	const n = 200
	want := map[string]bool{}
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("code-%03d.png", i))
		want[p] = true
		if err := os.WriteFile(p, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case p := <-drops:
			got[p] = true
		case <-deadline:
			t.Fatalf("received %d of %d drops", len(got), n)
		}
	}
	for p := range want {
		if !got[p] {
			t.Fatalf("missing drop %q", p)
		}
	}
}

func TestWatchDrops_CancelWithDebouncePendingCloses(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	drops, _, err := WatchDrops(ctx, DropConfig{Root: dir, Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Queue a pending drop behind the debounce, then cancel before it fires.
	if err := os.WriteFile(filepath.Join(dir, "late.png"), []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-drops:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("drop channel never closed after cancel")
		}
	}
}

func TestWatchDrops_RequiresRoot(t *testing.T) {
	if _, _, err := WatchDrops(context.Background(), DropConfig{}); err == nil {
		t.Fatal("expected error with no root")
	}
}
