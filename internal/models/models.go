// Package models holds the persisted marketplace entities.
package models

// All lists every model for schema creation, parents first.
func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderItem{}}
}
