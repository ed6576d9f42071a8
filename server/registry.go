package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// HandlerFactory builds a handler for one invocation. The client is scoped
// to the invoking user's session.
type HandlerFactory func(sapio *client.Client) webhook.Handler

// Endpoint is one registered webhook endpoint.
type Endpoint struct {
	Path    string
	Name    string
	Factory HandlerFactory
}

// Registry holds the endpoint table the router is built from. Registration
// happens once at startup, before Listen.
type Registry struct {
	mu        sync.Mutex
	endpoints []Endpoint
	byPath    map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]struct{})}
}

// Register adds an endpoint under the given path. It panics on a duplicate
// or malformed path: both are programming errors in the endpoint table.
func (r *Registry) Register(path, name string, factory HandlerFactory) {
	if !strings.HasPrefix(path, "/") {
		panic(fmt.Sprintf("endpoint path %q must start with /", path))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPath[path]; ok {
		panic(fmt.Sprintf("endpoint path %q registered twice", path))
	}

	r.byPath[path] = struct{}{}
	r.endpoints = append(r.endpoints, Endpoint{Path: path, Name: name, Factory: factory})
}

// Endpoints returns the registered endpoints in registration order.
func (r *Registry) Endpoints() []Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}
