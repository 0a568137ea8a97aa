package content

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Visible interface {
	IsVisible() bool
}

// Orderable is anything the public site shows in a configurable order.
type Orderable interface {
	Visible
	GetOrder() int
}

// Entity is an admin managed record of one of the ordered collections.
type Entity interface {
	Orderable
	GetID() int
	SetID(id int)
	SetVisible(visible bool)
	SetOrder(order int)
}

// Repo is the store of a single collection. All returns records in insertion order.
type Repo[E Entity] interface {
	All(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id int) (E, error)
	Add(ctx context.Context, entity E) error
	Update(ctx context.Context, entity E) error
	Delete(ctx context.Context, id int) error
	ToggleVisible(ctx context.Context, id int) (E, error)
	SetOrder(ctx context.Context, id, order int) error
}
