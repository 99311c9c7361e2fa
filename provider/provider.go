// Package provider defines the metadata sources a composite layer loads its
// sublayer definitions from, and a registry of provider drivers.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/atlasdatatech/sublayer/dict"
	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

// config keys shared by all providers
const (
	ConfigKeyName = "name"
	ConfigKeyType = "type"
)

// Provider is a remote (or local) layer definition service.
type Provider interface {
	// Layers returns information about the sublayers the provider publishes
	Layers(ctx context.Context) ([]LayerInfo, error)
	// LayerData returns the metadata of sublayer idx
	LayerData(ctx context.Context, idx int) (sublayer.LayerData, error)
	// Symbology returns the legend entries of sublayer idx
	Symbology(ctx context.Context, idx int) ([]symbology.Entry, error)
	// SupportsDynamicLayers reports whether per sublayer drawing options
	// are honoured by the service
	SupportsDynamicLayers() bool
}

// InitFunc creates a provider from its config section.
type InitFunc func(config dict.Dicter) (Provider, error)

// CleanupFunc is called when the program shuts down.
type CleanupFunc func()

type pfns struct {
	init    InitFunc
	cleanup CleanupFunc
}

var (
	mu        sync.Mutex
	providers map[string]pfns
)

// ErrProviderAlreadyExists is returned when a driver name is registered twice
type ErrProviderAlreadyExists struct {
	Name string
}

func (err ErrProviderAlreadyExists) Error() string {
	return fmt.Sprintf("provider %v already exists", err.Name)
}

// ErrUnknownProvider is returned for a driver name nothing registered
type ErrUnknownProvider struct {
	Name           string
	KnownProviders []string
}

func (err ErrUnknownProvider) Error() string {
	return fmt.Sprintf("no providers registered by the name %v, known providers: %v", err.Name, err.KnownProviders)
}

// ErrSublayerNotFound is returned when a provider has no sublayer idx
type ErrSublayerNotFound struct {
	Provider string
	Index    int
}

func (err ErrSublayerNotFound) Error() string {
	return fmt.Sprintf("provider %v has no sublayer %v", err.Provider, err.Index)
}

// Register a provider driver. cleanup may be nil.
func Register(name string, init InitFunc, cleanup CleanupFunc) error {
	mu.Lock()
	defer mu.Unlock()

	if providers == nil {
		providers = make(map[string]pfns)
	}
	if _, ok := providers[name]; ok {
		return ErrProviderAlreadyExists{Name: name}
	}
	providers[name] = pfns{
		init:    init,
		cleanup: cleanup,
	}
	return nil
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	mu.Lock()
	defer mu.Unlock()

	var names []string
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// For creates a provider of driver name.
func For(name string, config dict.Dicter) (Provider, error) {
	mu.Lock()
	p, ok := providers[name]
	mu.Unlock()

	if !ok {
		return nil, ErrUnknownProvider{Name: name, KnownProviders: Drivers()}
	}
	return p.init(config)
}

// Cleanup runs the cleanup function of every driver.
func Cleanup() {
	mu.Lock()
	defer mu.Unlock()

	log.Info("cleaning up providers")
	for _, p := range providers {
		if p.cleanup != nil {
			p.cleanup()
		}
	}
}
