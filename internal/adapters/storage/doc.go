// Package storage groups the persistence adapters that implement
// ports.TodoRepository. Each backend lives in its own subpackage and shares
// the same table layout:
//
//	todos(id, owner_id, title, description, is_completed, created_at, updated_at)
//
// with an index on (owner_id, is_completed). Every query is scoped to the
// owner; rows belonging to other owners behave as absent. Lists are ordered
// by created_at descending with id descending as the tie-breaker.
package storage
