// Package ports defines interfaces between layers in the hexagonal architecture.
// Service ports are implemented by the application layer and called by handlers.
// Repository ports are implemented by storage adapters and called by services.
// Gateway ports are implemented by outbound clients and called by the client store.
package ports
