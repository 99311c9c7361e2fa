package register

import (
	"github.com/pkg/errors"

	"github.com/atlasdatatech/sublayer/dict"
	"github.com/atlasdatatech/sublayer/provider"
)

// Providers creates a provider for every config section, keyed by name.
func Providers(providers []dict.Dict) (map[string]provider.Provider, error) {
	registered := make(map[string]provider.Provider, len(providers))

	for i, p := range providers {
		name, err := p.String(provider.ConfigKeyName, nil)
		if err != nil || name == "" {
			return registered, ErrProviderNameRequired{Pos: i}
		}
		if _, ok := registered[name]; ok {
			return registered, ErrProviderAlreadyRegistered{Provider: name}
		}

		ptype, err := p.String(provider.ConfigKeyType, nil)
		if err != nil || ptype == "" {
			return registered, ErrProviderTypeRequired{Provider: name}
		}

		prov, err := provider.For(ptype, p)
		if err != nil {
			return registered, errors.Wrapf(err, "creating provider %v", name)
		}
		registered[name] = prov
	}

	return registered, nil
}
