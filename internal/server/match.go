package server

import (
	"iter"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"SeqSearch/internal/automaton"
)

// matchRequest searches a pattern in a subject supplied with the request.
// Text fields are matched byte by byte; token fields element by element.
// Count is an absolute exclusive bound and defaults to the subject length.
type matchRequest struct {
	Pattern       string   `json:"pattern"`
	Subject       string   `json:"subject"`
	PatternTokens []string `json:"pattern_tokens"`
	SubjectTokens []string `json:"subject_tokens"`
	Start         int      `json:"start"`
	Count         *int     `json:"count"`
	All           bool     `json:"all"`
}

func (m *matchRequest) tokens() bool {
	return len(m.PatternTokens) > 0 || len(m.SubjectTokens) > 0
}

func (m *matchRequest) subjectBytes() int64 {
	if !m.tokens() {
		return int64(len(m.Subject))
	}
	var n int64
	for _, tok := range m.SubjectTokens {
		n += int64(len(tok))
	}
	return n
}

// matcher is a validated match request bound to its searcher.
type matcher struct {
	first func() (int, error)
	all   func() (iter.Seq[int], error)
}

func newMatcher(req *matchRequest) (*matcher, error) {
	if req.tokens() {
		return bindMatcher(req.PatternTokens, req.SubjectTokens, req.Start, req.Count)
	}
	return bindMatcher([]byte(req.Pattern), []byte(req.Subject), req.Start, req.Count)
}

func bindMatcher[T comparable](pattern, subject []T, start int, count *int) (*matcher, error) {
	s, err := automaton.NewPatternSearcher(pattern)
	if err != nil {
		return nil, err
	}
	end := len(subject)
	if count != nil {
		end = *count
	}
	return &matcher{
		first: func() (int, error) { return s.Match(subject, start, end) },
		all:   func() (iter.Seq[int], error) { return s.Matches(subject, start, end) },
	}, nil
}

func (h *Handler) readMatch(w http.ResponseWriter, r *http.Request) (*matchRequest, bool) {
	var req matchRequest
	if !h.decode(w, r, &req) {
		return nil, false
	}
	if req.subjectBytes() > h.config.MaxSubjectBytes {
		h.tooLarge(w)
		return nil, false
	}
	return &req, true
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := h.readMatch(w, r)
	if !ok {
		return
	}
	m, err := newMatcher(req)
	if err != nil {
		h.fail(w, err)
		return
	}

	if !req.All {
		index, err := m.first()
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"index": index})
		return
	}

	seq, err := m.all()
	if err != nil {
		h.fail(w, err)
		return
	}
	indices := []int{}
	for index := range seq {
		if r.Context().Err() != nil {
			return
		}
		indices = append(indices, index)
	}
	writeJSON(w, http.StatusOK, map[string]any{"indices": indices})
}

// handleMatchStream writes one NDJSON line per occurrence as the scan
// produces it. The All flag is implied.
func (h *Handler) handleMatchStream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := h.readMatch(w, r)
	if !ok {
		return
	}
	m, err := newMatcher(req)
	if err != nil {
		h.fail(w, err)
		return
	}
	seq, err := m.all()
	if err != nil {
		h.fail(w, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	enc := jsonAPI.NewEncoder(w)
	sent := 0
	for index := range seq {
		if ctx.Err() != nil {
			break
		}
		if err := enc.Encode(map[string]int{"index": index}); err != nil {
			h.logger.Debug("stream write failed", "error", err, "sent", sent)
			break
		}
		sent++
		if flusher != nil {
			flusher.Flush()
		}
	}
	h.logger.Debug("stream finished", "sent", sent, "client_gone", ctx.Err() != nil)
}
