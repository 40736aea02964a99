package rdv

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/aistorelabs/rendezvous/cmn/cos"
)

// Sentinel errors returned by Registry operations; handlers map these
// directly onto the HTTP status codes in the endpoint table. ErrNotFound and
// ErrWrongSecret reuse cos's typed not-found/forbidden errors rather than
// plain errors.New, since "unknown id" and "wrong secret" are exactly the
// lookup-failure and capability-check cases those types exist for.
var (
	ErrConflict       = errors.New("rdv: id already exists")
	ErrNotFound       = cos.NewErrNotFound("rdv: transfer")
	ErrWrongSecret    = cos.NewErrForbidden("rdv: wrong secret")
	ErrLengthMismatch = errors.New("rdv: content-length does not match transfer length")
	ErrQueueFull      = errors.New("rdv: uploader queue full")
	ErrNoUploader     = errors.New("rdv: no uploader currently queued")
)

type shard struct {
	mu   sync.Mutex
	data map[string]*Transfer
}

// Registry is the process-wide id -> Transfer mapping, sharded by
// xxhash of the id into independent lock domains so operations on
// unrelated ids never contend (P8).
type Registry struct {
	shards        []*shard
	maxQueueDepth int
}

// NewRegistry builds a Registry with numShards independent lock domains,
// each bounding its Transfers' uploader queues at maxQueueDepth.
func NewRegistry(numShards, maxQueueDepth int) *Registry {
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{data: make(map[string]*Transfer)}
	}
	return &Registry{shards: shards, maxQueueDepth: maxQueueDepth}
}

func (r *Registry) shardFor(id string) *shard {
	h := xxhash.ChecksumString64S(id, 0)
	return r.shards[h%uint64(len(r.shards))]
}

// Create inserts a new Transfer under id, or returns ErrConflict if id is
// already registered -- the caller (request_id) regenerates id and retries.
func (r *Registry) Create(id, secret string, length uint64, expiration time.Time) error {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[id]; exists {
		return ErrConflict
	}
	s.data[id] = newTransfer(secret, length, expiration, r.maxQueueDepth)
	return nil
}

// Remove validates secret and deletes the Transfer, cancelling any queued
// uploaders. Used by retire_id.
func (r *Registry) Remove(id, secret string) error {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	if t.Secret != secret {
		return ErrWrongSecret
	}
	delete(s.data, id)
	t.dropAll()
	return nil
}

// EnqueueUploader validates id/secret/contentLength, admits a new Forwarder
// into the Transfer's uploader queue (subject to the per-Transfer queue
// depth cap, I7), and returns it so the upload handler can await its
// completion signal.
func (r *Registry) EnqueueUploader(id, secret string, contentLength uint64, inbound io.ReadCloser) (*Forwarder, error) {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	if t.Secret != secret {
		return nil, ErrWrongSecret
	}
	if t.Length != contentLength {
		return nil, ErrLengthMismatch
	}
	if !t.TryAdmit() {
		return nil, ErrQueueFull
	}
	f := NewForwarder(contentLength, inbound)
	t.enqueue(f)
	return f, nil
}

// Dequeue pops the front-most live Forwarder for id, skipping any already
// canceled (stale upload), and refreshes the Transfer's expiration on
// success -- only a live dequeue resets it, per the preserved Open
// Question decision in DESIGN.md.
func (r *Registry) Dequeue(id string, refresh time.Duration) (*Forwarder, error) {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	f := t.dequeueLive()
	if f == nil {
		return nil, ErrNoUploader
	}
	t.Expiration = time.Now().Add(refresh)
	return f, nil
}

// Exists reports whether id is registered at all, without validating a
// secret. Used by download's first-attempt-only 404 check.
func (r *Registry) Exists(id string) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	return ok
}

// Sweep removes every Transfer whose expiration has passed, cancelling
// their queued uploaders, and returns the count removed.
func (r *Registry) Sweep(now time.Time) int {
	removed := 0
	for _, s := range r.shards {
		s.mu.Lock()
		for id, t := range s.data {
			if !t.Expiration.After(now) {
				delete(s.data, id)
				t.dropAll()
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Count returns the total number of registered Transfers across all shards.
func (r *Registry) Count() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.data)
		s.mu.Unlock()
	}
	return n
}

// TransferSnapshot is a secret-free, point-in-time view of one Transfer,
// used by the debug dump endpoint.
type TransferSnapshot struct {
	ID         string    `json:"id"`
	Length     uint64    `json:"length"`
	Expiration time.Time `json:"expiration"`
	QueueDepth int       `json:"queue_depth"`
}

// Snapshot returns a point-in-time view of every registered Transfer. Never
// includes a secret.
func (r *Registry) Snapshot() []TransferSnapshot {
	var out []TransferSnapshot
	for _, s := range r.shards {
		s.mu.Lock()
		for id, t := range s.data {
			out = append(out, TransferSnapshot{
				ID:         id,
				Length:     t.Length,
				Expiration: t.Expiration,
				QueueDepth: t.QueueDepth(),
			})
		}
		s.mu.Unlock()
	}
	return out
}
