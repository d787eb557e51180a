// Package endpoints serves the scheduler's admin http surface: a health
// check and a JSON rendering of the stats registry.
package endpoints

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/louishp/marathon/common/stats"
)

func NewAdminServer(addr string, stat stats.StatsReceiver) *AdminServer {
	return &AdminServer{
		Addr:  addr,
		Stats: stat,
	}
}

type AdminServer struct {
	Addr  string
	Stats stats.StatsReceiver
}

func (s *AdminServer) Serve() error {
	log.Info("Serving http & stats on ", s.Addr)
	return http.ListenAndServe(s.Addr, s.Handler())
}

func (s *AdminServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", helpHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/admin/metrics.json", s.statsHandler)
	return mux
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Common paths: '/health', '/admin/metrics.json'", 501)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok")
}

func (s *AdminServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	const contentTypeHdr = "Content-Type"
	const contentTypeVal = "application/json; charset=utf-8"
	w.Header().Set(contentTypeHdr, contentTypeVal)

	pretty := r.URL.Query().Get("pretty") == "true"
	str := s.Stats.Render(pretty)
	if _, err := io.Copy(w, bytes.NewBuffer(str)); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}

type StatScope string

func MakeStatsReceiver(scope StatScope) stats.StatsReceiver {
	return stats.NewCustomStatsReceiver(stats.NewFinagleStatsRegistry).Scope(string(scope))
}
