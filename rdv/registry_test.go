package rdv

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aistorelabs/rendezvous/cmn/cos"
)

func TestCreateConflict(t *testing.T) {
	r := NewRegistry(4, 16)
	exp := time.Now().Add(time.Hour)
	if err := r.Create("abc", "xyz", 5, exp); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := r.Create("abc", "other", 5, exp); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestEnqueueAndDequeueFIFO(t *testing.T) {
	r := NewRegistry(4, 16)
	exp := time.Now().Add(time.Hour)
	if err := r.Create("abc", "xyz", 5, exp); err != nil {
		t.Fatalf("create: %v", err)
	}

	f1, err := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("first")))
	if err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}
	f2, err := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("secnd")))
	if err != nil {
		t.Fatalf("enqueue 2: %v", err)
	}

	got1, err := r.Dequeue("abc", time.Hour)
	if err != nil || got1 != f1 {
		t.Fatalf("expected FIFO first dequeue == f1, got %v err %v", got1, err)
	}
	got2, err := r.Dequeue("abc", time.Hour)
	if err != nil || got2 != f2 {
		t.Fatalf("expected FIFO second dequeue == f2, got %v err %v", got2, err)
	}
}

func TestEnqueueWrongSecretAndLength(t *testing.T) {
	r := NewRegistry(4, 16)
	exp := time.Now().Add(time.Hour)
	r.Create("abc", "xyz", 5, exp)

	if _, err := r.EnqueueUploader("abc", "wrong", 5, io.NopCloser(strings.NewReader("hello"))); err != ErrWrongSecret {
		t.Fatalf("expected ErrWrongSecret, got %v", err)
	}
	if _, err := r.EnqueueUploader("abc", "xyz", 6, io.NopCloser(strings.NewReader("hello!"))); err != ErrLengthMismatch {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := r.EnqueueUploader("nope", "xyz", 5, io.NopCloser(strings.NewReader("hello"))); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !cos.IsErrNotFound(ErrNotFound) {
		t.Fatal("expected rdv.ErrNotFound to satisfy cos.IsErrNotFound")
	}
}

func TestQueueAdmissionCap(t *testing.T) {
	r := NewRegistry(1, 1) // cap of 1 uploader queued
	exp := time.Now().Add(time.Hour)
	r.Create("abc", "xyz", 5, exp)

	if _, err := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("hello"))); err != nil {
		t.Fatalf("first enqueue should succeed: %v", err)
	}
	if _, err := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("hello"))); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDequeueSkipsStale(t *testing.T) {
	r := NewRegistry(1, 16)
	exp := time.Now().Add(time.Hour)
	r.Create("abc", "xyz", 5, exp)

	stale, _ := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("stale")))
	stale.Cancel() // uploader disconnected before being matched

	live, _ := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("live!")))

	got, err := r.Dequeue("abc", time.Hour)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got != live {
		t.Fatalf("expected stale entry skipped and live dequeued")
	}
}

func TestRemoveDropsQueuedUploaders(t *testing.T) {
	r := NewRegistry(1, 16)
	exp := time.Now().Add(time.Hour)
	r.Create("abc", "xyz", 5, exp)

	f, _ := r.EnqueueUploader("abc", "xyz", 5, io.NopCloser(strings.NewReader("hello")))
	if err := r.Remove("abc", "xyz"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	select {
	case <-f.Done():
	default:
		t.Fatal("expected queued Forwarder canceled on Remove")
	}
	if f.Success() {
		t.Fatal("canceled Forwarder must not report Success")
	}
	if err := r.Remove("abc", "xyz"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestSweepExpires(t *testing.T) {
	r := NewRegistry(4, 16)
	r.Create("abc", "xyz", 5, time.Now().Add(-time.Second)) // already expired
	r.Create("def", "uvw", 5, time.Now().Add(time.Hour))

	removed := r.Sweep(time.Now())
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if r.Exists("abc") {
		t.Fatal("expected abc swept")
	}
	if !r.Exists("def") {
		t.Fatal("expected def to survive sweep")
	}
}

func TestDownloadRefreshesExpirationOnlyOnLiveDequeue(t *testing.T) {
	r := NewRegistry(1, 16)
	shortExp := time.Now().Add(50 * time.Millisecond)
	r.Create("abc", "xyz", 5, shortExp)

	// no uploader queued: a failed dequeue must not refresh expiration.
	if _, err := r.Dequeue("abc", time.Hour); err != ErrNoUploader {
		t.Fatalf("expected ErrNoUploader, got %v", err)
	}
	if r.Sweep(time.Now().Add(60*time.Millisecond)) != 1 {
		t.Fatal("expected transfer with no successful dequeue to still expire on schedule")
	}
}

// P8: operations on ids that hash to different shards never block each
// other. Proven by holding one shard's lock directly (simulating an
// in-flight operation on idA) while an operation on idB, chosen to land on a
// different shard, completes without waiting on it.
func TestShardsAreIndependent(t *testing.T) {
	r := NewRegistry(4, 16)

	var idA, idB string
	for i := 0; idB == ""; i++ {
		id := fmt.Sprintf("shard-test-%d", i)
		switch {
		case idA == "":
			idA = id
		case r.shardFor(id) != r.shardFor(idA):
			idB = id
		}
	}
	shardA := r.shardFor(idA)
	if shardA == r.shardFor(idB) {
		t.Fatal("test setup bug: idA and idB landed on the same shard")
	}

	shardA.mu.Lock() // simulates an in-flight operation blocked on idA's shard

	opBDone := make(chan struct{})
	go func() {
		defer close(opBDone)
		if err := r.Create(idB, "secret", 5, time.Now().Add(time.Hour)); err != nil {
			t.Errorf("create on independent shard: %v", err)
		}
	}()

	select {
	case <-opBDone:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("operation on an unrelated shard blocked behind idA's shard lock")
	}

	shardA.mu.Unlock()
}
