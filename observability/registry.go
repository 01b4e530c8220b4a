package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnknownObserver is returned when a name resolves to no registered
// observer.
var ErrUnknownObserver = errors.New("unknown observer")

var (
	mu        sync.RWMutex
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
)

// GetObserver resolves a registered observer by name. "noop" and "slog" are
// pre-registered, so configuration files can name them without any process
// setup.
func GetObserver(name string) (Observer, error) {
	mu.RLock()
	defer mu.RUnlock()

	observer, exists := observers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObserver, name)
	}
	return observer, nil
}

// RegisterObserver adds or replaces a named observer, making it resolvable
// from config Observer fields.
func RegisterObserver(name string, observer Observer) {
	mu.Lock()
	defer mu.Unlock()

	observers[name] = observer
}
