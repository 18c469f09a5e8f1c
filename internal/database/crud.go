package database

import (
	"context"

	"github.com/mrlokans/wordstudy/internal/database/paging"
)

// Reader is the read half of an entity repository.
type Reader[E any] interface {
	Get(ctx context.Context, id uint) (*E, error)
	Page(ctx context.Context, req paging.Request) ([]E, int64, error)
}

// CRUD is implemented once per mutable entity. C and U are the entity's
// create and partial-update inputs.
type CRUD[E, C, U any] interface {
	Reader[E]
	Create(ctx context.Context, in C) (*E, error)
	Update(ctx context.Context, id uint, in U) (*E, error)
	Delete(ctx context.Context, id uint) error
}
