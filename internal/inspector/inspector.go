// Package inspector serves a minimal read-only HTTP view of a single
// in-flight run: the computed Plan and a live snapshot of RunData's
// accumulated productions. It exists purely for operator visibility; it
// never mutates anything the scheduling core owns.
package inspector

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bramford/steprunner/internal/plan"
	"github.com/bramford/steprunner/internal/rundata"
)

// Server wraps a *mux.Router exposing /plan and /rundata. Construct one per
// run via New, mount it with http.Serve, and discard it when the run ends.
type Server struct {
	router *mux.Router
}

// New builds a Server reporting on p and rd. Both are read, never written.
func New(p *plan.Plan, rd *rundata.RunData) *Server {
	s := &Server{router: mux.NewRouter()}
	s.router.HandleFunc("/plan", s.handlePlan(p)).Methods(http.MethodGet)
	s.router.HandleFunc("/rundata", s.handleRunData(rd)).Methods(http.MethodGet)
	return s
}

// Handler returns the underlying http.Handler, for embedding in a caller's
// own server or for http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.router
}

type planSet struct {
	Classes []string `json:"classes"`
}

type planView struct {
	Sets []planSet `json:"sets"`
}

func (s *Server) handlePlan(p *plan.Plan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := planView{Sets: make([]planSet, len(p.Sets))}
		for i, set := range p.Sets {
			names := make([]string, len(set))
			for j, c := range set {
				names[j] = c.Name()
			}
			view.Sets[i] = planSet{Classes: names}
		}
		writeJSON(w, view)
	}
}

type runDataView struct {
	Productions map[string]any `json:"productions"`
}

func (s *Server) handleRunData(rd *rundata.RunData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, runDataView{Productions: rd.Productions()})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
