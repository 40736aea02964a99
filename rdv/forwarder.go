package rdv

import (
	"io"
	"sync"
	"sync/atomic"
)

// Forwarder is the streaming pipe: it reads an uploader's request body on
// demand and is itself read as the downloader's response body, counting
// bytes and firing a one-shot completion signal back to the uploader's
// waiting HTTP handler exactly once, whichever of three ways streaming
// ends (declared length reached, inbound EOS before that, or cancellation).
//
// This is the Go expression of the state machine a poll-based runtime would
// drive through an explicit Pending/Fused enum and a manually-advanced
// poll_data method: here, a single goroutine's blocking Read calls on the
// inbound body already provide the pull-based backpressure a poll loop
// would otherwise have to simulate, so Fused is tracked as one atomic flag
// rather than as driver-visible state.
type Forwarder struct {
	length    uint64
	bytesSent uint64 // atomic
	inbound   io.ReadCloser

	done      chan struct{}
	closeOnce sync.Once
	success   uint32 // atomic; 1 once Done closes because length was reached
	fused     uint32 // atomic
}

// NewForwarder wraps inbound (an uploader's request body) as a Forwarder
// that relays at most length declared bytes before transitioning to Fused.
func NewForwarder(length uint64, inbound io.ReadCloser) *Forwarder {
	return &Forwarder{length: length, inbound: inbound, done: make(chan struct{})}
}

// Done is closed exactly once: either because the Forwarder reached Fused
// naturally (declared length met, or anomalous early inbound EOS) or
// because it was Canceled by the registry before a downloader finished
// consuming it. The uploader's handler blocks on this channel.
func (f *Forwarder) Done() <-chan struct{} { return f.done }

// Success reports whether Done closed via successful completion
// (bytesSent >= length) rather than Cancel or anomalous early EOS.
func (f *Forwarder) Success() bool { return atomic.LoadUint32(&f.success) == 1 }

// BytesSent returns the number of bytes relayed to the downloader so far.
func (f *Forwarder) BytesSent() uint64 { return atomic.LoadUint64(&f.bytesSent) }

// canceledBeforeDequeue reports whether this Forwarder already reached its
// terminal state before a downloader ever claimed it -- e.g. the uploader
// disconnected while still queued. The registry's dequeueLive uses this to
// skip stale entries without blocking.
func (f *Forwarder) canceledBeforeDequeue() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Read implements io.Reader so a Forwarder can be streamed directly as an
// http.ResponseWriter body via io.Copy. Each call is one "pull": it relays
// at most one chunk from the inbound body, updates bytesSent, and fires
// completion exactly once when the declared length is reached, exceeded, or
// the inbound body ends early.
func (f *Forwarder) Read(p []byte) (int, error) {
	if atomic.LoadUint32(&f.fused) == 1 {
		return 0, io.EOF
	}

	n, rerr := f.inbound.Read(p)
	if n > 0 {
		atomic.AddUint64(&f.bytesSent, uint64(n))
	}

	sent := atomic.LoadUint64(&f.bytesSent)
	switch {
	case sent >= f.length:
		// final chunk (or the uploader overran length, I3): emit it, then fuse.
		f.complete(true)
		return n, nil
	case rerr != nil:
		// inbound ended before length was reached: anomalous early EOS.
		f.complete(false)
		if n > 0 {
			return n, nil
		}
		return 0, io.EOF
	default:
		return n, rerr
	}
}

func (f *Forwarder) complete(success bool) {
	f.closeOnce.Do(func() {
		if success {
			atomic.StoreUint32(&f.success, 1)
		}
		atomic.StoreUint32(&f.fused, 1)
		close(f.done)
		f.inbound.Close()
	})
}

// Cancel releases the Forwarder's inbound body and fires its completion
// signal without marking it successful. The uploader handler sees Done
// closed with Success() == false and replies with its internal-error
// response. Used when the registry drops a Forwarder still queued or
// in flight (retire, expiration sweep, downloader disconnect).
func (f *Forwarder) Cancel() {
	f.closeOnce.Do(func() {
		atomic.StoreUint32(&f.fused, 1)
		close(f.done)
		f.inbound.Close()
	})
}
