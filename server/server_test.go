package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/provider/test"
	"github.com/atlasdatatech/sublayer/server"
	"github.com/atlasdatatech/sublayer/sublayer"
)

type sublayerJSON struct {
	Index        string   `json:"index"`
	Name         string   `json:"name"`
	Resolved     bool     `json:"resolved"`
	Visible      bool     `json:"visible"`
	Opacity      *float64 `json:"opacity"`
	LayerType    *string  `json:"layerType"`
	GeometryType *string  `json:"geometryType"`
	FeatureCount *int     `json:"featureCount"`
}

func newTestLayer(t *testing.T, load bool) (*composite.Layer, *test.Provider) {
	p := &test.Provider{
		Dynamic: true,
		Sublayers: []test.Layer{
			{Index: "0", Title: "roads", Geom: geom.LineString{}, Type: sublayer.LayerTypeFeature, Min: 50000, Count: 10},
			{Index: "2", Title: "parks", Geom: geom.Polygon{}, Type: sublayer.LayerTypeFeature, Count: 3},
		},
	}
	l := composite.New("base", "Base", []composite.Declared{
		{Index: "0", Config: sublayer.Config{Visible: true, Opacity: 1}},
		{Index: "2", Config: sublayer.Config{Name: "Parks", Visible: false, Opacity: 0.5}},
	}, p)
	if load {
		if err := l.Load(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	return l, p
}

func do(t *testing.T, h http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSublayers(t *testing.T) {
	l, _ := newTestLayer(t, true)
	h := server.New([]*composite.Layer{l}).Handler()

	w := do(t, h, http.MethodGet, "/layers/base/sublayers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	var got []sublayerJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sublayers, got %d", len(got))
	}

	roads := got[0]
	if roads.Name != "roads" || !roads.Resolved || !roads.Visible {
		t.Errorf("unexpected roads view %+v", roads)
	}
	if roads.LayerType == nil || *roads.LayerType != "feature" {
		t.Errorf("unexpected layer type %v", roads.LayerType)
	}
	if roads.GeometryType == nil || *roads.GeometryType != "linestring" {
		t.Errorf("unexpected geometry type %v", roads.GeometryType)
	}
	if roads.FeatureCount == nil || *roads.FeatureCount != 10 {
		t.Errorf("unexpected feature count %v", roads.FeatureCount)
	}

	parks := got[1]
	if parks.Name != "Parks" || parks.Visible || parks.Opacity == nil || *parks.Opacity != 0.5 {
		t.Errorf("unexpected parks view %+v", parks)
	}
}

func TestSublayersPlaceholders(t *testing.T) {
	l, _ := newTestLayer(t, false)
	h := server.New([]*composite.Layer{l}).Handler()

	w := do(t, h, http.MethodGet, "/layers/base/sublayers", "")
	var got []sublayerJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	for _, s := range got {
		if s.Resolved || !s.Visible || s.Opacity != nil || s.GeometryType != nil {
			t.Errorf("unexpected placeholder view %+v", s)
		}
		if s.LayerType == nil || *s.LayerType != "unknown" {
			t.Errorf("placeholder layer type: %v", s.LayerType)
		}
	}

	w = do(t, h, http.MethodPut, "/layers/base/sublayers/0/visibility", `{"visible": false}`)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for a placeholder, got %d", w.Code)
	}
}

func TestUpdates(t *testing.T) {
	l, _ := newTestLayer(t, true)
	h := server.New([]*composite.Layer{l}).Handler()

	tests := map[string]struct {
		url    string
		body   string
		status int
	}{
		"hide":          {url: "/layers/base/sublayers/0/visibility", body: `{"visible": false}`, status: http.StatusOK},
		"show":          {url: "/layers/base/sublayers/2/visibility", body: `{"visible": true}`, status: http.StatusOK},
		"opacity":       {url: "/layers/base/sublayers/2/opacity", body: `{"opacity": 0.25}`, status: http.StatusOK},
		"bad body":      {url: "/layers/base/sublayers/2/opacity", body: `{"opacity": "x"}`, status: http.StatusBadRequest},
		"missing field": {url: "/layers/base/sublayers/2/visibility", body: `{}`, status: http.StatusBadRequest},
		"out of range":  {url: "/layers/base/sublayers/2/opacity", body: `{"opacity": 2}`, status: http.StatusBadRequest},
		"unknown idx":   {url: "/layers/base/sublayers/9/visibility", body: `{"visible": true}`, status: http.StatusNotFound},
		"unknown layer": {url: "/layers/nope/sublayers/0/visibility", body: `{"visible": true}`, status: http.StatusNotFound},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			w := do(t, h, http.MethodPut, tc.url, tc.body)
			if w.Code != tc.status {
				t.Errorf("expected %d got %d: %s", tc.status, w.Code, w.Body)
			}
		})
	}

	// map iteration order is random; only check the end state
	if diff := deep.Equal(l.VisibleIDs(), []int{2}); diff != nil {
		t.Error(diff)
	}
	if opts, _ := l.DrawingOptions(2); opts.Transparency != 75 {
		t.Errorf("expected transparency 75, got %v", opts.Transparency)
	}
}

func TestScale(t *testing.T) {
	l, p := newTestLayer(t, true)
	h := server.New([]*composite.Layer{l}).Handler()

	w := do(t, h, http.MethodGet, "/layers/base/sublayers/0/scale", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var ss sublayer.ScaleSet
	if err := json.Unmarshal(w.Body.Bytes(), &ss); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(ss, sublayer.ScaleSet{MinScale: 50000}); diff != nil {
		t.Error(diff)
	}

	p.LayerDataErr = errors.New("service unavailable")
	w = do(t, h, http.MethodGet, "/layers/base/sublayers/2/scale", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestLayers(t *testing.T) {
	l, _ := newTestLayer(t, true)
	h := server.New([]*composite.Layer{l}).Handler()

	w := do(t, h, http.MethodGet, "/layers", "")
	var got []struct {
		ID      string `json:"id"`
		Loaded  bool   `json:"loaded"`
		Visible []int  `json:"visible"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "base" || !got[0].Loaded {
		t.Fatalf("unexpected layers %+v", got)
	}
	if diff := deep.Equal(got[0].Visible, []int{0}); diff != nil {
		t.Error(diff)
	}
}
