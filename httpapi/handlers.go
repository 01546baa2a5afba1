package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/gateway"
)

const questionRequired = "question is required"

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, gateway.ModeCatalog())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	mode := string(core.DefaultMode)
	if params.Has("mode") {
		mode = params.Get("mode")
	}

	if !params.Has("question") {
		msg := questionRequired
		s.writeJSON(w, http.StatusUnprocessableEntity, gateway.Envelope{
			Status: gateway.StatusError,
			Error:  &msg,
			Mode:   mode,
		})
		return
	}
	question := params.Get("question")

	withSources, _ := strconv.ParseBool(params.Get("sources"))

	var env gateway.Envelope
	if withSources {
		env = s.gateway.QueryWithSources(r.Context(), question, mode)
	} else {
		env = s.gateway.Query(r.Context(), question, mode)
	}

	modeLabel := mode
	if !core.Mode(mode).Valid() {
		modeLabel = "invalid"
	}
	s.metrics.queries.WithLabelValues(modeLabel, string(env.Status)).Inc()

	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("error writing response", "err", err)
	}
}
