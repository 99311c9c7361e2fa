// Package server exposes the sublayer state of composite layers over HTTP
// so a map UI can render its layer list and toggle sublayers.
package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/dimfeld/httptreemux"

	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/internal/log"
)

const (
	paramLayer    = "layer"
	paramSublayer = "idx"
)

// Server routes requests to a fixed set of composite layers.
type Server struct {
	layers map[string]*composite.Layer
	ids    []string
}

// New returns a server for layers. Layer ids must be unique.
func New(layers []*composite.Layer) *Server {
	s := &Server{layers: make(map[string]*composite.Layer, len(layers))}
	for _, l := range layers {
		s.layers[l.ID] = l
		s.ids = append(s.ids, l.ID)
	}
	sort.Strings(s.ids)
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := httptreemux.New()

	r.GET("/layers", s.handleLayers)
	r.GET("/layers/:layer/sublayers", s.handleSublayers)
	r.GET("/layers/:layer/sublayers/:idx/scale", s.handleScale)
	r.PUT("/layers/:layer/sublayers/:idx/visibility", s.handleVisibility)
	r.PUT("/layers/:layer/sublayers/:idx/opacity", s.handleOpacity)

	return r
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("starting server on %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) layer(w http.ResponseWriter, params map[string]string) (*composite.Layer, bool) {
	l, ok := s.layers[params[paramLayer]]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown layer "+params[paramLayer])
	}
	return l, ok
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps layer errors to HTTP statuses. Anything unknown came from
// the provider.
func statusFor(err error) int {
	switch err.(type) {
	case composite.ErrUnknownSublayer:
		return http.StatusNotFound
	case composite.ErrNotResolved:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
