package composite_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/provider/test"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

var testSublayer0 = test.Layer{
	Index: "0",
	Title: "test-layer-0",
	Geom:  geom.Point{},
	Type:  sublayer.LayerTypeFeature,
	Min:   100000,
	Max:   5000,
	Count: 42,
	Symbols: []symbology.Entry{
		{Name: "a", Color: "#ff0000"},
		{Name: "b", Color: "#00ff00"},
	},
}

var testSublayer3 = test.Layer{
	Index: "3",
	Title: "test-layer-3",
	Geom:  geom.LineString{},
	Type:  sublayer.LayerTypeFeature,
	Count: -1,
}

var testSublayer7 = test.Layer{
	Index: "7",
	Title: "test-layer-7",
	Type:  sublayer.LayerTypeRaster,
}

var testDecls = []composite.Declared{
	{Index: "0", Config: sublayer.Config{Name: "Points", Visible: true, Opacity: 1}},
	{Index: "3", Config: sublayer.Config{Visible: true, Opacity: 0.5}},
	{Index: "7", Config: sublayer.Config{Name: "Imagery", Visible: false, Opacity: 0.25}},
}

func newTestProvider() *test.Provider {
	return &test.Provider{
		Dynamic:   true,
		Sublayers: []test.Layer{testSublayer0, testSublayer3, testSublayer7},
	}
}

func TestNewCreatesPlaceholders(t *testing.T) {
	l := composite.New("roads", "Roads", testDecls, newTestProvider())

	if l.Loaded() {
		t.Fatal("a new layer must not be loaded")
	}
	slots := l.Sublayers()
	if len(slots) != len(testDecls) {
		t.Fatalf("expected %d slots, got %d", len(testDecls), len(slots))
	}
	for i, s := range slots {
		f := s.Facade()
		if f == nil || f.Resolved() {
			t.Errorf("slot %v: expected a placeholder, got %T", s.Index(), f)
			continue
		}
		if !f.Visible() {
			t.Errorf("slot %v: placeholders are visible", s.Index())
		}
		if f.Name() != testDecls[i].Config.Name {
			t.Errorf("slot %v: expected name %q got %q", s.Index(), testDecls[i].Config.Name, f.Name())
		}
	}
	if n := l.VisibleLayers().Len(); n != 0 {
		t.Errorf("placeholders must not touch the visible set, got %v", l.VisibleIDs())
	}
	if l.UUID == "" {
		t.Error("expected a uuid")
	}
}

func TestLoad(t *testing.T) {
	l := composite.New("roads", "Roads", testDecls, newTestProvider())
	before := map[string]*composite.Slot{}
	for _, s := range l.Sublayers() {
		before[s.Index()] = s
	}

	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !l.Loaded() {
		t.Fatal("expected the layer to be loaded")
	}

	for _, s := range l.Sublayers() {
		if before[s.Index()] != s {
			t.Errorf("slot %v identity changed", s.Index())
		}
		if _, ok := s.Dynamic(); !ok {
			t.Errorf("slot %v did not resolve", s.Index())
		}
	}

	if diff := deep.Equal(l.VisibleIDs(), []int{0, 3}); diff != nil {
		t.Errorf("visible ids: %v", diff)
	}

	tests := map[int]float64{0: 0, 3: 50, 7: 75}
	for idx, want := range tests {
		opts, ok := l.DrawingOptions(idx)
		if !ok || opts.Transparency != want {
			t.Errorf("sublayer %d: expected transparency %v, got %v (%v)", idx, want, opts.Transparency, ok)
		}
	}

	s, _ := l.Sublayer("0")
	d, _ := s.Dynamic()
	if d.Name() != "Points" {
		t.Errorf("config name must win, got %q", d.Name())
	}
	if n, ok := d.FeatureCount().Get(); !ok || n != 42 {
		t.Errorf("feature count: %v %v", n, ok)
	}
	if gt, _ := d.GeometryType().Get(); gt != sublayer.GeometryTypePoint {
		t.Errorf("geometry type: %v", gt)
	}
	l.WaitSymbology()
	if diff := deep.Equal(d.Symbology().Entries(), testSublayer0.Symbols); diff != nil {
		t.Errorf("symbology: %v", diff)
	}

	s, _ = l.Sublayer("3")
	d, _ = s.Dynamic()
	if d.Name() != "test-layer-3" {
		t.Errorf("expected service name fallback, got %q", d.Name())
	}
	if d.FeatureCount().IsKnown() {
		t.Error("a negative count means unknown")
	}

	s, _ = l.Sublayer("7")
	d, _ = s.Dynamic()
	if lt, _ := d.LayerType().Get(); lt != sublayer.LayerTypeRaster {
		t.Errorf("layer type: %v", lt)
	}

	// loading again is a no-op
	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(l.VisibleIDs(), []int{0, 3}); diff != nil {
		t.Errorf("visible ids after second load: %v", diff)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := map[string]struct {
		prv      func() *test.Provider
		checkErr func(error) bool
	}{
		"service down": {
			prv: func() *test.Provider {
				p := newTestProvider()
				p.LayersErr = errors.New("connection refused")
				return p
			},
			checkErr: func(err error) bool { return err != nil },
		},
		"missing sublayer": {
			prv: func() *test.Provider {
				p := newTestProvider()
				p.Sublayers = p.Sublayers[:2]
				return p
			},
			checkErr: func(err error) bool {
				e, ok := err.(composite.ErrSublayerNotFound)
				return ok && e.Index == "7"
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			l := composite.New("roads", "Roads", testDecls, tc.prv())
			err := l.Load(context.Background())
			if !tc.checkErr(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if l.Loaded() {
				t.Error("layer must not be loaded")
			}
			for _, s := range l.Sublayers() {
				if s.Facade().Resolved() {
					t.Errorf("slot %v resolved after a failed load", s.Index())
				}
			}
			if l.VisibleLayers().Len() != 0 {
				t.Errorf("visible set touched: %v", l.VisibleIDs())
			}
		})
	}
}

func TestLoadSymbologyFailureKeepsInitialEntry(t *testing.T) {
	p := newTestProvider()
	p.SymbologyErr = errors.New("legend unavailable")
	l := composite.New("roads", "Roads", testDecls, p)

	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.WaitSymbology()
	if _, _, n := p.Calls(); n != len(testDecls) {
		t.Errorf("expected %d symbology requests, got %d", len(testDecls), n)
	}
	for _, s := range l.Sublayers() {
		d, _ := s.Dynamic()
		if d.StyleState() != sublayer.StyleUnresolved {
			t.Errorf("sublayer %v: expected unresolved style", s.Index())
		}
		es := d.Symbology().Entries()
		if len(es) != 1 || es[0].Color != symbology.DefaultColor {
			t.Errorf("sublayer %v: unexpected symbology %+v", s.Index(), es)
		}
	}
}

func TestLoadDoesNotWaitForSymbology(t *testing.T) {
	p := newTestProvider()
	// Gate holds back symbology; the layer definition is not gated
	p.Gate = make(chan struct{})
	l := composite.New("roads", "Roads", testDecls, p)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}
	s, _ := l.Sublayer("0")
	d, _ := s.Dynamic()
	if d.StyleState() != sublayer.StyleUnresolved {
		t.Fatal("symbology resolved before the service answered")
	}

	close(p.Gate)
	l.WaitSymbology()
	if d.StyleState() != sublayer.StyleResolved {
		t.Error("expected symbology to resolve once the service answered")
	}
	if diff := deep.Equal(d.Symbology().Entries(), testSublayer0.Symbols); diff != nil {
		t.Errorf("symbology: %v", diff)
	}
}

func TestLoadSymbologyTimeout(t *testing.T) {
	p := newTestProvider()
	p.Gate = make(chan struct{})
	defer close(p.Gate)
	l := composite.New("roads", "Roads", testDecls, p, composite.WithSymbologyTimeout(10*time.Millisecond))

	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.WaitSymbology()
	for _, s := range l.Sublayers() {
		d, _ := s.Dynamic()
		if d.StyleState() != sublayer.StyleUnresolved {
			t.Errorf("sublayer %v: expected unresolved style", s.Index())
		}
		if es := d.Symbology().Entries(); len(es) != 1 || es[0].Color != symbology.DefaultColor {
			t.Errorf("sublayer %v: unexpected symbology %+v", s.Index(), es)
		}
	}
}

func TestScaleSetFetchTimeout(t *testing.T) {
	p := newTestProvider()
	l := composite.New("roads", "Roads", testDecls, p, composite.WithFetchTimeout(10*time.Millisecond))
	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.WaitSymbology()

	// the service stops answering; the caller has no deadline of its own
	p.Gate = make(chan struct{})
	if _, err := l.ScaleSet(context.Background(), "0"); err == nil {
		t.Fatal("expected the fetch to time out")
	}

	close(p.Gate)
	ss, err := l.ScaleSet(context.Background(), "0")
	if err != nil {
		t.Fatalf("expected the retry to succeed: %v", err)
	}
	if diff := deep.Equal(ss, sublayer.ScaleSet{MinScale: 100000, MaxScale: 5000}); diff != nil {
		t.Error(diff)
	}
}

func TestSlotNeverEmptyDuringLoad(t *testing.T) {
	p := newTestProvider()
	l := composite.New("roads", "Roads", testDecls, p)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			for _, s := range l.Sublayers() {
				if s.Facade() == nil {
					t.Error("observed a slot without a facade")
					return
				}
			}
		}
	}()

	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(done)
	wg.Wait()
}

func TestLayerOperations(t *testing.T) {
	l := composite.New("roads", "Roads", testDecls, newTestProvider())

	err := l.SetVisibility("0", false)
	if _, ok := err.(composite.ErrNotResolved); !ok {
		t.Errorf("expected ErrNotResolved before load, got %v", err)
	}

	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := l.SetVisibility("0", false); err != nil {
		t.Fatal(err)
	}
	if err := l.SetVisibility("7", true); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(l.VisibleIDs(), []int{3, 7}); diff != nil {
		t.Error(diff)
	}

	c, err := l.SetOpacity("3", 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Applied || c.Transparency != 25 {
		t.Errorf("unexpected change %+v", c)
	}
	if opts, _ := l.DrawingOptions(3); opts.Transparency != 25 {
		t.Errorf("expected transparency 25, got %v", opts.Transparency)
	}

	ss, err := l.ScaleSet(context.Background(), "0")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(ss, sublayer.ScaleSet{MinScale: 100000, MaxScale: 5000}); diff != nil {
		t.Error(diff)
	}

	err = l.SetVisibility("12", true)
	if _, ok := err.(composite.ErrUnknownSublayer); !ok {
		t.Errorf("expected ErrUnknownSublayer, got %v", err)
	}
}

func TestNoDynamicLayerSupport(t *testing.T) {
	p := newTestProvider()
	p.Dynamic = false
	l := composite.New("roads", "Roads", testDecls, p)

	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{0, 3, 7} {
		if _, ok := l.DrawingOptions(idx); ok {
			t.Errorf("sublayer %d: unexpected drawing options", idx)
		}
	}
	s, _ := l.Sublayer("3")
	d, _ := s.Dynamic()
	if d.Opacity() != 0.5 {
		t.Errorf("expected stored opacity 0.5, got %v", d.Opacity())
	}
}

func TestNewPanicsOnDuplicateIndex(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	composite.New("dup", "", []composite.Declared{{Index: "1"}, {Index: "1"}}, newTestProvider())
}
