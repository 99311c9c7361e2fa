package register

import (
	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/config"
	"github.com/atlasdatatech/sublayer/provider"
)

func declaredFromConfig(subs []config.Sublayer) []composite.Declared {
	decls := make([]composite.Declared, len(subs))
	for i, s := range subs {
		decls[i] = composite.Declared{
			Index:  s.Index,
			Config: s.Config(),
		}
	}
	return decls
}

// Layers builds a composite layer, holding placeholders, for every layer in
// cfg. The layers still need to be loaded.
func Layers(layers []config.Layer, providers map[string]provider.Provider, opts ...composite.Option) ([]*composite.Layer, error) {
	built := make([]*composite.Layer, 0, len(layers))

	for _, l := range layers {
		prv, ok := providers[l.Provider]
		if !ok {
			return nil, ErrProviderNotFound{Provider: l.Provider}
		}
		built = append(built, composite.New(l.ID, l.Name, declaredFromConfig(l.Sublayers), prv, opts...))
	}
	return built, nil
}
