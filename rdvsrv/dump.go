package rdvsrv

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/aistorelabs/rendezvous/cmn/nlog"
)

var dumpJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// dump implements GET /dump: a no-op 404 in release builds. In debug
// builds (see dump_debug.go), it first writes a JSON snapshot of the
// registry to the log at Info severity, continuing the teacher's broad use
// of jsoniter as its encoding/json substitute (e.g. stats/common_statsd.go,
// ais/test/target_mock.go), then still returns 404.
func (s *Server) dump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/dump" {
		http.NotFound(w, r)
		return
	}
	if debugDumpEnabled {
		snap := s.registry.Snapshot()
		b, err := dumpJSON.MarshalIndent(snap, "", "  ")
		if err != nil {
			nlog.Errorf("dump: marshal snapshot: %v", err)
		} else {
			nlog.Infof("dump: %s", b)
		}
	}
	http.NotFound(w, r)
}
