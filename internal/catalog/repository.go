package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/domain"
)

// ErrProductNotFound is returned when no product exists for the given id.
// Callers treat this as a normal outcome, not a failure.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository owns catalog records: lookup, persistence and deletion.
type ProductRepository interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)

	// GetAllAdminProducts returns products newest-first (descending id),
	// the ordering used by the admin listing.
	GetAllAdminProducts(ctx context.Context) ([]*domain.Product, error)

	// GetProduct returns ErrProductNotFound when the id has no product.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// CreateProduct stores a new product and assigns its id.
	CreateProduct(ctx context.Context, p *domain.Product) error

	// SaveProduct overwrites an existing product record.
	SaveProduct(ctx context.Context, p *domain.Product) error

	// DeleteProduct removes the product. Deleting an absent id returns
	// ErrProductNotFound.
	DeleteProduct(ctx context.Context, id int64) error

	Close() error
}
