package server

import (
	"encoding/json"
	"net/http"

	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

type layerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Loaded  bool   `json:"loaded"`
	Visible []int  `json:"visible"`
}

type sublayerView struct {
	Index        string                                   `json:"index"`
	Name         string                                   `json:"name"`
	Resolved     bool                                     `json:"resolved"`
	Visible      bool                                     `json:"visible"`
	Opacity      *float64                                 `json:"opacity,omitempty"`
	LayerType    sublayer.Optional[sublayer.LayerType]    `json:"layerType"`
	GeometryType sublayer.Optional[sublayer.GeometryType] `json:"geometryType"`
	FeatureCount sublayer.Optional[int]                   `json:"featureCount"`
	Symbology    []symbology.Entry                        `json:"symbology"`
}

func viewOf(s *composite.Slot) sublayerView {
	f := s.Facade()
	v := sublayerView{
		Index:     s.Index(),
		Name:      f.Name(),
		Resolved:  f.Resolved(),
		Visible:   f.Visible(),
		LayerType: f.LayerType(),
		Symbology: f.Symbology().Entries(),
	}
	if d, ok := f.(*sublayer.Dynamic); ok {
		o := d.Opacity()
		v.Opacity = &o
		v.GeometryType = d.GeometryType()
		v.FeatureCount = d.FeatureCount()
	}
	return v
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request, params map[string]string) {
	views := make([]layerView, 0, len(s.ids))
	for _, id := range s.ids {
		l := s.layers[id]
		views = append(views, layerView{
			ID:      l.ID,
			Name:    l.Name,
			Loaded:  l.Loaded(),
			Visible: l.VisibleIDs(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSublayers(w http.ResponseWriter, r *http.Request, params map[string]string) {
	l, ok := s.layer(w, params)
	if !ok {
		return
	}

	slots := l.Sublayers()
	views := make([]sublayerView, len(slots))
	for i := range slots {
		views[i] = viewOf(slots[i])
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request, params map[string]string) {
	l, ok := s.layer(w, params)
	if !ok {
		return
	}

	ss, err := l.ScaleSet(r.Context(), params[paramSublayer])
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

type visibilityBody struct {
	Visible *bool `json:"visible"`
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request, params map[string]string) {
	l, ok := s.layer(w, params)
	if !ok {
		return
	}

	var body visibilityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Visible == nil {
		writeError(w, http.StatusBadRequest, `expected {"visible": bool}`)
		return
	}

	idx := params[paramSublayer]
	if err := l.SetVisibility(idx, *body.Visible); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	slot, _ := l.Sublayer(idx)
	writeJSON(w, http.StatusOK, viewOf(slot))
}

type opacityBody struct {
	Opacity *float64 `json:"opacity"`
}

func (s *Server) handleOpacity(w http.ResponseWriter, r *http.Request, params map[string]string) {
	l, ok := s.layer(w, params)
	if !ok {
		return
	}

	var body opacityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Opacity == nil {
		writeError(w, http.StatusBadRequest, `expected {"opacity": number}`)
		return
	}
	if *body.Opacity < 0 || *body.Opacity > 1 {
		writeError(w, http.StatusBadRequest, "opacity must be in [0,1]")
		return
	}

	idx := params[paramSublayer]
	if _, err := l.SetOpacity(idx, *body.Opacity); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	slot, _ := l.Sublayer(idx)
	writeJSON(w, http.StatusOK, viewOf(slot))
}
