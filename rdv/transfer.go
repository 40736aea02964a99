// Package rdv implements the rendezvous engine: the Transfer registry, the
// Forwarder streaming pipe, and the tagged-union response body that lets
// every endpoint return the same shape regardless of whether it serves
// static bytes or a live upload-to-download pipe.
package rdv

import (
	"time"

	"golang.org/x/sync/semaphore"
)

// Transfer is one pending rendezvous: a declared length, the secret that
// authorizes upload/retire, an expiration deadline, and the FIFO of
// uploaders currently waiting for a downloader to claim them.
type Transfer struct {
	Secret     string
	Length     uint64
	Expiration time.Time

	uploaders []*Forwarder
	admit     *semaphore.Weighted // bounds len(uploaders); see registry.go MaxQueueDepth
}

func newTransfer(secret string, length uint64, expiration time.Time, maxQueueDepth int) *Transfer {
	return &Transfer{
		Secret:     secret,
		Length:     length,
		Expiration: expiration,
		admit:      semaphore.NewWeighted(int64(maxQueueDepth)),
	}
}

// enqueue appends f to the uploader queue. Call only while holding the
// owning shard's lock; the caller must have already reserved a slot via
// TryAdmit.
func (t *Transfer) enqueue(f *Forwarder) {
	t.uploaders = append(t.uploaders, f)
}

// TryAdmit attempts to reserve one uploader-queue slot, returning false if
// MaxQueueDepth uploaders are already queued for this Transfer. Call before
// acquiring the registry lock to enqueue.
func (t *Transfer) TryAdmit() bool {
	return t.admit.TryAcquire(1)
}

// dequeueLive pops Forwarders off the front of the queue until it finds one
// whose completion signal has not already been canceled (a stale, abandoned
// upload), or the queue empties. Call only while holding the shard lock.
func (t *Transfer) dequeueLive() *Forwarder {
	for len(t.uploaders) > 0 {
		f := t.uploaders[0]
		t.uploaders = t.uploaders[1:]
		t.admit.Release(1)
		if !f.canceledBeforeDequeue() {
			return f
		}
	}
	return nil
}

// dropAll cancels every still-queued Forwarder, releasing their inbound
// bodies and completion signals. Used when a Transfer is retired or swept.
func (t *Transfer) dropAll() {
	for _, f := range t.uploaders {
		f.Cancel()
		t.admit.Release(1)
	}
	t.uploaders = nil
}

// QueueDepth reports the number of uploaders currently queued. Call only
// while holding the shard lock.
func (t *Transfer) QueueDepth() int { return len(t.uploaders) }
