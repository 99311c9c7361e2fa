package sublayer

import (
	"sync"

	"github.com/atlasdatatech/sublayer/symbology"
)

// Placeholder gives the UI enough to draw a row while the parent layer is
// still loading. It holds no visibility state of its own.
type Placeholder struct {
	parent Parent
	name   string

	mu        sync.RWMutex
	layerType LayerType

	symbology *symbology.Stack
}

var _ Facade = (*Placeholder)(nil)

// NewPlaceholder creates a placeholder named name. The symbology holds a
// single entry whose colour is derived from the name.
func NewPlaceholder(parent Parent, name string, gen symbology.Generator) *Placeholder {
	label := name
	if label == "" {
		label = "?"
	}

	return &Placeholder{
		parent:    parent,
		name:      name,
		layerType: LayerTypeUnknown,
		symbology: symbology.NewStack(gen.Placeholder(label, symbology.PlaceholderColor(name))),
	}
}

func (p *Placeholder) Parent() Parent { return p.parent }
func (p *Placeholder) Name() string   { return p.name }

// Visible is always true for placeholders.
func (p *Placeholder) Visible() bool { return true }

func (p *Placeholder) Resolved() bool { return false }

func (p *Placeholder) Symbology() *symbology.Stack { return p.symbology }

func (p *Placeholder) LayerType() Optional[LayerType] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Known(p.layerType)
}

func (p *Placeholder) SetLayerType(lt LayerType) {
	p.mu.Lock()
	p.layerType = lt
	p.mu.Unlock()
}
