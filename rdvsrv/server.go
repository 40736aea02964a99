// Package rdvsrv wires the rendezvous engine (package rdv) up to HTTP: an
// explicit method+path dispatcher and one handler per endpoint, built on
// http.NewServeMux the way the teacher's own test-only mock target wires a
// handful of handlers (ais/test/target_mock.go's runMockTarget), generalized
// to the relay's own route table.
package rdvsrv

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/aistorelabs/rendezvous/cfg"
	"github.com/aistorelabs/rendezvous/rdv"
	"github.com/aistorelabs/rendezvous/stats"
)

// Server holds everything an HTTP handler needs to serve one relay: the
// loaded configuration, the Transfer registry, the stats tracker, and a
// request_id rate limiter.
type Server struct {
	cfg      cfg.Config
	registry *rdv.Registry
	stats    *stats.Tracker
	limiter  *rate.Limiter
	mux      *http.ServeMux
}

// New builds a Server ready to ServeHTTP. tracker may be nil in tests that
// don't care about metrics.
func New(c cfg.Config, registry *rdv.Registry, tracker *stats.Tracker) *Server {
	if tracker == nil {
		tracker = stats.New()
	}
	burst := int(c.RequestIDRatePerSec) + 1
	s := &Server{
		cfg:      c,
		registry: registry,
		stats:    tracker,
		limiter:  rate.NewLimiter(rate.Limit(c.RequestIDRatePerSec), burst),
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.home)
	s.mux.HandleFunc("/favicon.ico", s.favicon)
	s.mux.HandleFunc("/client.js", s.clientJS)
	s.mux.HandleFunc("/1/id/request", s.requestID)
	s.mux.HandleFunc("/1/id/retire", s.retireID)
	s.mux.HandleFunc("/1/file/upload", s.upload)
	s.mux.HandleFunc("/1/file/download", s.download)
	s.mux.HandleFunc("/dump", s.dump)
	s.mux.Handle("/debug/metrics", tracker.Handler())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }
