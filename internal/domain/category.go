package domain

import "context"

// Category classifies events. Category CRUD lives outside the core; event
// creation only checks existence, and category deletion is blocked while
// events reference it (via EventRepository.ExistsByCategory).
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines the category storage the core consumes. The core
// only checks existence; full category reads belong to the CRUD layer.
type CategoryRepository interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}
