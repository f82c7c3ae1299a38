package notification

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/simple-verify/pkg/config"
)

// ProviderFactory builds a provider for a channel key from its configuration.
type ProviderFactory func(channelKey string, cfg config.ProviderConfig) (Provider, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]ProviderFactory)
)

// RegisterProviderFactory registers a provider implementation under a
// configuration name. Built-in providers register themselves in init;
// applications may add their own before configuration load.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = factory
}

// NewProvider builds the provider selected by cfg.Name for a channel key.
func NewProvider(channelKey string, cfg config.ProviderConfig) (Provider, error) {
	factoryMu.RLock()
	factory, ok := factories[cfg.Name]
	factoryMu.RUnlock()

	if !ok {
		available := registeredNames()
		if len(available) == 0 {
			return nil, fmt.Errorf("provider %q is not installed, no providers are registered", cfg.Name)
		}
		return nil, fmt.Errorf("provider %q is not installed, available providers: %s",
			cfg.Name, strings.Join(available, ", "))
	}
	return factory(channelKey, cfg)
}

func registeredNames() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
