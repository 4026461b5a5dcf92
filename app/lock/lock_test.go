package lock

import (
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")

	lease, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if lease == nil {
		t.Fatal("Expected a lease on an uncontended lock")
	}

	if err := lease.Release(); err != nil {
		t.Errorf("Release failed: %v", err)
	}
}

func TestAcquireContended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Release()

	second, err := Acquire(path)
	if err != nil {
		t.Fatalf("Contended acquire must not error: %v", err)
	}
	if second != nil {
		t.Error("Expected nil lease while the lock is held")
	}
}

func TestReleaseNilLease(t *testing.T) {
	var lease *Lease
	if err := lease.Release(); err != nil {
		t.Errorf("Releasing a nil lease must be a no-op, got %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}

	second, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	if second == nil {
		t.Fatal("Expected a lease after the previous one was released")
	}
	second.Release()
}
