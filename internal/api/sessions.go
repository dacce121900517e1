package api

import (
	"encoding/json"
	"net/http"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/httputil"
)

// stateResponse is the wire form of a session's selection state.
type stateResponse struct {
	SessionID string            `json:"session_id"`
	Version   uint64            `json:"version"`
	Filters   map[string]string `json:"filters"`
}

// interactionRequest is a chart click. Category distinguishes three
// cases the same way the click event does: a JSON string selects or
// deselects that value, an explicit null clears the dimension, and an
// absent key marks a malformed event that must be ignored.
type interactionRequest struct {
	Dimension string          `json:"dimension"`
	Category  json.RawMessage `json:"category"`
}

// interactionResponse reports what an interaction did. Status is
// "applied", "reset" or "ignored".
type interactionResponse struct {
	Status  string            `json:"status"`
	Version uint64            `json:"version"`
	Filters map[string]string `json:"filters"`
}

// createSession opens a fresh session and returns its first board, so
// the client can paint without a second round trip.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, err)
		return
	}

	board, err := s.comp.Board(sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, board)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(r.PathValue("id")) {
		httputil.NotFound(w, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) showState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	state, version := sess.Store().Current()
	httputil.WriteJSONOK(w, stateResponse{
		SessionID: sess.ID,
		Version:   version,
		Filters:   activeFilters(state),
	})
}

// applyInteraction handles one chart click. Clicking a category toggles
// it: selecting it if it was unselected, clearing it if it was already
// selected. Malformed events return an "ignored" status with the state
// untouched; an unknown dimension is a client error.
func (s *Server) applyInteraction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	var req interactionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	in, ok := decodeInteraction(req)
	if !ok {
		_, version := sess.Store().Current()
		httputil.WriteJSONOK(w, interactionResponse{
			Status:  "ignored",
			Version: version,
		})
		return
	}

	state, version, err := sess.Store().Apply(in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	httputil.WriteJSONOK(w, interactionResponse{
		Status:  "applied",
		Version: version,
		Filters: activeFilters(state),
	})
}

// decodeInteraction translates the wire payload into a store
// interaction. The second return is false for payloads that must be
// ignored rather than applied.
func decodeInteraction(req interactionRequest) (crossfilter.Interaction, bool) {
	if req.Dimension == "" || req.Category == nil {
		return crossfilter.Interaction{}, false
	}

	in := crossfilter.Interaction{Dimension: req.Dimension}
	if string(req.Category) == "null" {
		in.Clear = true
		return in, true
	}

	var category string
	if err := json.Unmarshal(req.Category, &category); err != nil {
		// A category that is neither a string nor null is not a click
		// event we understand.
		return crossfilter.Interaction{}, false
	}
	in.Category = category
	return in, true
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	state, version := sess.Store().Reset()
	httputil.WriteJSONOK(w, interactionResponse{
		Status:  "reset",
		Version: version,
		Filters: activeFilters(state),
	})
}
