package rdvsrv

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aistorelabs/rendezvous/assets"
	"github.com/aistorelabs/rendezvous/cmn/cos"
	"github.com/aistorelabs/rendezvous/rdv"
)

// writeBody drains body (a static blob or a live Forwarder -- the tagged
// union of §9's "streaming adapter as a tagged variant") to w as a 200
// response, setting Content-Type/Content-Length first so both cases are
// framed identically regardless of which one the caller passed.
func writeBody(w http.ResponseWriter, contentType string, body rdv.Body) {
	w.Header().Set(cos.HdrContentType, contentType)
	w.Header().Set(cos.HdrContentLength, strconv.FormatInt(body.ContentLength(), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeBody(w, cos.ContentHTML, rdv.NewStaticBody(assets.Home))
}

func (s *Server) favicon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/favicon.ico" {
		http.NotFound(w, r)
		return
	}
	writeBody(w, cos.ContentICO, rdv.NewStaticBody(assets.Favicon))
}

func (s *Server) clientJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/client.js" {
		http.NotFound(w, r)
		return
	}
	writeBody(w, cos.ContentJS, rdv.NewStaticBody(assets.ClientJS))
}

// requestID implements POST /1/id/request: creates a Transfer and returns
// its freshly generated (id, secret) pair.
func (s *Server) requestID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/1/id/request" {
		http.NotFound(w, r)
		return
	}
	if !s.limiter.Allow() {
		cos.WriteErr(w, http.StatusTooManyRequests, "Rate limited")
		return
	}

	q, err := strictQuery(r.URL.Query(), "length")
	if err != nil {
		cos.WriteErr(w, http.StatusBadRequest, err.Error())
		return
	}
	lengthStr, ok := q["length"]
	if !ok {
		cos.WriteErr(w, http.StatusBadRequest, "Missing length")
		return
	}
	length, err := strconv.ParseUint(lengthStr, 10, 64)
	if err != nil {
		cos.WriteErr(w, http.StatusBadRequest, "Invalid length")
		return
	}
	if length > uint64(s.cfg.MaxContentLength) {
		cos.WriteErr(w, http.StatusBadRequest, "Length exceeds maximum")
		return
	}

	expiration := time.Now().Add(time.Duration(s.cfg.TimeoutSecs) * time.Second)
	for {
		id := rdv.NewToken(s.cfg.TokenLength)
		secret := rdv.NewToken(s.cfg.TokenLength)
		switch err := s.registry.Create(id, secret, length, expiration); err {
		case nil:
			s.stats.TransfersCreated.Inc()
			s.stats.ActiveTransfers.Set(float64(s.registry.Count()))
			cos.WriteText(w, http.StatusOK, id+","+secret)
			return
		case rdv.ErrConflict:
			continue
		default:
			cos.WriteErr(w, http.StatusInternalServerError, "Internal error")
			return
		}
	}
}

// retireID implements POST /1/id/retire.
func (s *Server) retireID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/1/id/retire" {
		http.NotFound(w, r)
		return
	}
	q, err := strictQuery(r.URL.Query(), "id", "secret")
	if err != nil {
		cos.WriteErr(w, http.StatusBadRequest, err.Error())
		return
	}
	id, secret := q["id"], q["secret"]
	if id == "" || secret == "" {
		cos.WriteErr(w, http.StatusBadRequest, "Missing id or secret")
		return
	}
	switch err := s.registry.Remove(id, secret); err {
	case nil:
		s.stats.TransfersRetired.Inc()
		s.stats.ActiveTransfers.Set(float64(s.registry.Count()))
		cos.WriteText(w, http.StatusOK, "Removed")
	case rdv.ErrWrongSecret:
		cos.WriteErr(w, http.StatusForbidden, "Bad secret")
	case rdv.ErrNotFound:
		cos.WriteErr(w, http.StatusNotFound, "Unknown id")
	default:
		cos.WriteErr(w, http.StatusInternalServerError, "Internal error")
	}
}

// upload implements POST /1/file/upload: enqueues the request body as a
// Forwarder and blocks until a downloader relays it to completion, the
// downloader disconnects, or admission is refused.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/1/file/upload" {
		http.NotFound(w, r)
		return
	}
	q, err := strictQuery(r.URL.Query(), "id", "secret")
	if err != nil {
		cos.WriteErr(w, http.StatusBadRequest, err.Error())
		return
	}
	id, secret := q["id"], q["secret"]
	if id == "" || secret == "" {
		cos.WriteErr(w, http.StatusBadRequest, "Missing id or secret")
		return
	}
	if r.ContentLength < 0 {
		cos.WriteErr(w, http.StatusLengthRequired, "Missing Content-Length")
		return
	}
	if r.ContentLength > s.cfg.MaxContentLength {
		cos.WriteErr(w, http.StatusRequestEntityTooLarge, "Content too large")
		return
	}

	fwd, err := s.registry.EnqueueUploader(id, secret, uint64(r.ContentLength), r.Body)
	switch err {
	case nil:
	case rdv.ErrNotFound:
		cos.WriteErr(w, http.StatusNotFound, "Unknown id")
		return
	case rdv.ErrWrongSecret:
		s.stats.UploadsRejected.WithLabelValues("bad_secret").Inc()
		cos.WriteErr(w, http.StatusForbidden, "Bad secret")
		return
	case rdv.ErrLengthMismatch:
		s.stats.UploadsRejected.WithLabelValues("length_mismatch").Inc()
		cos.WriteErr(w, http.StatusBadRequest, "Wrong length")
		return
	case rdv.ErrQueueFull:
		s.stats.UploadsRejected.WithLabelValues("queue_full").Inc()
		cos.WriteErr(w, http.StatusTooManyRequests, "Queue full")
		return
	default:
		cos.WriteErr(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.stats.QueuedUploaders.Inc()
	<-fwd.Done()
	s.stats.QueuedUploaders.Dec()

	if fwd.Success() {
		s.stats.TransfersCompleted.Inc()
		s.stats.BytesRelayed.Add(float64(fwd.BytesSent()))
		cos.WriteText(w, http.StatusOK, "Sent!")
		return
	}
	cos.WriteErr(w, http.StatusInternalServerError, "Downloader disconnected")
}

// download implements GET /1/file/download: dequeues the front-most live
// Forwarder for id, retrying on a delay if none is queued yet.
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/1/file/download" {
		http.NotFound(w, r)
		return
	}
	q, err := strictQuery(r.URL.Query(), "id")
	if err != nil {
		cos.WriteErr(w, http.StatusBadRequest, err.Error())
		return
	}
	id := q["id"]
	if id == "" {
		cos.WriteErr(w, http.StatusBadRequest, "Missing id")
		return
	}
	if !s.registry.Exists(id) {
		cos.WriteErr(w, http.StatusNotFound, "Unknown id")
		return
	}

	refresh := time.Duration(s.cfg.TimeoutSecs) * time.Second
	retryDelay := time.Duration(s.cfg.DownloadRetryMs) * time.Millisecond

	var fwd *rdv.Forwarder
	for attempt := 0; attempt <= s.cfg.DownloadMaxRetries; attempt++ {
		f, err := s.registry.Dequeue(id, refresh)
		if err == nil {
			fwd = f
			break
		}
		if err == rdv.ErrNotFound {
			cos.WriteErr(w, http.StatusNotFound, "Unknown id")
			return
		}
		if attempt == s.cfg.DownloadMaxRetries {
			break
		}
		time.Sleep(retryDelay)
	}
	if fwd == nil {
		cos.WriteErr(w, http.StatusServiceUnavailable, "No uploader available")
		return
	}

	w.Header().Set(cos.HdrContentLength, strconv.FormatInt(fwd.ContentLength(), 10))
	w.WriteHeader(http.StatusOK)

	// If the downloader disconnects mid-stream, neither a failed Write nor
	// a blocked inbound Read is guaranteed to surface that here -- watch
	// the request context too, so the cancellation cascade (§4.3/§5)
	// always reaches the waiting uploader.
	copyDone := make(chan struct{})
	go func() {
		select {
		case <-r.Context().Done():
			fwd.Cancel()
		case <-copyDone:
		}
	}()
	_, _ = io.Copy(w, fwd)
	close(copyDone)
	fwd.Cancel() // no-op if Done already closed naturally
}
