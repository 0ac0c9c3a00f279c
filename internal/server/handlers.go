package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowscope/pkg/buildinfo"
	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/graphio"
	"github.com/matzehuels/flowscope/pkg/layout"
	"github.com/matzehuels/flowscope/pkg/observability"
	"github.com/matzehuels/flowscope/pkg/pipeline"
	"github.com/matzehuels/flowscope/pkg/render"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// documentInfo is the list/upload response shape.
type documentInfo struct {
	ID        string         `json:"id"`
	Summary   string         `json:"summary"`
	Hierarchy string         `json:"hierarchy,omitempty"`
	Stats     vizstate.Stats `json:"stats"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func sessionInfo(sess *Session) documentInfo {
	var info documentInfo
	sess.View(func(state *vizstate.State) {
		info = documentInfo{
			ID:        sess.ID,
			Summary:   sess.Document.Summary(),
			Hierarchy: sess.Hierarchy,
			Stats:     state.Stats(),
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		}
	})
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleUpload ingests a document from the request body and builds its
// initial state. Query parameters: hierarchy (choice id), labels=full.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	doc, err := graphio.Parse(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	hierarchy := r.URL.Query().Get("hierarchy")
	labels := graphio.LabelShort
	if r.URL.Query().Get("labels") == "full" {
		labels = graphio.LabelFull
	}

	state, err := graphio.BuildState(doc, graphio.BuildOptions{
		ChoiceID: hierarchy,
		Labels:   labels,
		Config:   &s.cfg,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	sess := s.store.Put(doc, state, hierarchy)
	s.logger.Infof("Uploaded document %s (%s)", sess.ID, doc.Summary())
	writeJSON(w, http.StatusCreated, sessionInfo(sess))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sessions := s.store.List()
	out := make([]documentInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionInfo(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var snap graphio.Snapshot
	sess.View(func(state *vizstate.State) {
		snap = graphio.TakeSnapshot(state)
	})
	writeJSON(w, http.StatusOK, snap)
}

// handleVisible returns only the currently visible projection.
func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body map[string]any
	sess.View(func(state *vizstate.State) {
		body = map[string]any{
			"nodes":      state.VisibleNodes(),
			"edges":      state.VisibleEdges(),
			"containers": state.VisibleContainers(),
			"hyperedges": state.HyperEdges(),
		}
	})
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.store.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, func(state *vizstate.State, id string) {
		state.CollapseContainer(id)
		observability.State().OnCollapse(r.Context(), id, len(state.HyperEdges()))
	})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, func(state *vizstate.State, id string) {
		state.ExpandContainer(id)
		observability.State().OnExpand(r.Context(), id, len(state.HyperEdges()))
	})
}

// toggle applies a collapse or expand to one container and responds with the
// updated visibility summary.
func (s *Server) toggle(w http.ResponseWriter, r *http.Request, fn func(*vizstate.State, string)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	containerID := chi.URLParam(r, "containerID")

	// The response reads inside the same Do call, so it reflects exactly
	// this mutation even under concurrent requests.
	var body map[string]any
	err := sess.Do(func(state *vizstate.State) error {
		if _, ok := state.Container(containerID); !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown container %q", containerID)
		}
		fn(state, containerID)
		body = map[string]any{
			"collapsed": state.CollapsedContainers(),
			"stats":     state.Stats(),
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCollapseAll(w http.ResponseWriter, r *http.Request) {
	s.toggleAll(w, r, func(state *vizstate.State, id string) {
		state.CollapseContainer(id)
	})
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	s.toggleAll(w, r, func(state *vizstate.State, id string) {
		state.ExpandContainer(id)
	})
}

func (s *Server) toggleAll(w http.ResponseWriter, r *http.Request, fn func(*vizstate.State, string)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var body map[string]any
	_ = sess.Do(func(state *vizstate.State) error {
		for _, c := range state.Containers() {
			fn(state, c.ID)
		}
		body = map[string]any{
			"collapsed": state.CollapsedContainers(),
			"stats":     state.Stats(),
		}
		return nil
	})

	writeJSON(w, http.StatusOK, body)
}

// handleRender produces an artifact for the current visibility state.
// Query parameters: format (dot, json, svg, pdf, png), detailed, legend.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	opts := render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
		Legend:   r.URL.Query().Get("legend") == "true",
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	err = sess.Do(func(state *vizstate.State) error {
		switch format {
		case pipeline.FormatDOT:
			data = []byte(render.ToDOT(state, s.cfg, opts))
			contentType = "text/vnd.graphviz"
			return nil
		case pipeline.FormatJSON:
			contentType = "application/json"
			var exportErr error
			data, exportErr = graphio.Export(state)
			return exportErr
		}

		if layoutErr := layout.Compute(r.Context(), state, s.cfg); layoutErr != nil {
			return layoutErr
		}
		dot := render.ToDOT(state, s.cfg, opts)
		var renderErr error
		switch format {
		case pipeline.FormatSVG:
			contentType = "image/svg+xml"
			data, renderErr = render.RenderSVG(r.Context(), dot)
		case pipeline.FormatPDF:
			contentType = "application/pdf"
			data, renderErr = render.RenderPDF(r.Context(), dot)
		case pipeline.FormatPNG:
			contentType = "image/png"
			data, renderErr = render.RenderPNG(r.Context(), dot, pipeline.DefaultScale)
		}
		return renderErr
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// session resolves the docID path parameter, writing a 404 on miss.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "docID")
	sess, ok := s.store.Get(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeDocumentNotFound, "unknown document %q", id))
		return nil, false
	}
	return sess, true
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error response shape.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidHierarchy, errors.ErrCodeUnknownNode,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
