package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
)

// ProductModel is the string-typed form model for creating or updating a
// catalog entry. Price and Quantity arrive as raw form input and are parsed
// after validation.
type ProductModel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Details     string `json:"details"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
}

// ProductService owns catalog mutation and post-checkout stock
// reconciliation. It is the component that honors the cart sweep contract:
// DeleteProduct removes the product from every live cart before deleting the
// catalog record, so no cart keeps a line for a product that is gone.
type ProductService struct {
	repo  catalog.ProductRepository
	carts *cart.Registry
}

func NewProductService(repo catalog.ProductRepository, carts *cart.Registry) *ProductService {
	return &ProductService{repo: repo, carts: carts}
}

func (s *ProductService) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.GetAllProducts(ctx)
}

func (s *ProductService) GetAllAdminProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.GetAllAdminProducts(ctx)
}

// GetByProductID returns catalog.ErrProductNotFound for an unknown id.
func (s *ProductService) GetByProductID(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}

// CreateProduct parses the form model and stores the product. Callers are
// expected to run CheckProductIsValid first; a parse failure here is an
// error, not a validation message.
func (s *ProductService) CreateProduct(ctx context.Context, model ProductModel) (*domain.Product, error) {
	p, err := productFromModel(model)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// UpdateProduct overwrites the catalog record identified by model.ID.
func (s *ProductService) UpdateProduct(ctx context.Context, model ProductModel) (*domain.Product, error) {
	p, err := productFromModel(model)
	if err != nil {
		return nil, err
	}
	p.ID = model.ID

	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func productFromModel(model ProductModel) (*domain.Product, error) {
	price, err := strconv.ParseFloat(model.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", model.Price, err)
	}
	quantity, err := strconv.Atoi(model.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", model.Quantity, err)
	}

	return &domain.Product{
		Name:        model.Name,
		Description: model.Description,
		Details:     model.Details,
		Price:       price,
		Quantity:    quantity,
	}, nil
}

// IsStringDouble reports whether s parses as a float.
func IsStringDouble(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// IsStringInteger reports whether s parses as an int.
func IsStringInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// CheckProductIsValid returns the message keys of all validation failures for
// the model. An empty result means the model is valid.
func (s *ProductService) CheckProductIsValid(model ProductModel) []string {
	var errs []string

	if strings.TrimSpace(model.Name) == "" {
		errs = append(errs, "product.MissingName")
	}

	switch {
	case strings.TrimSpace(model.Price) == "":
		errs = append(errs, "product.MissingPrice")
	case !IsStringDouble(model.Price):
		errs = append(errs, "product.PriceNotANumber")
	default:
		if price, _ := strconv.ParseFloat(model.Price, 64); price <= 0 {
			errs = append(errs, "product.PriceNotGreaterThanZero")
		}
	}

	switch {
	case strings.TrimSpace(model.Quantity) == "":
		errs = append(errs, "product.MissingQuantity")
	case !IsStringInteger(model.Quantity):
		errs = append(errs, "product.QuantityNotAnInteger")
	default:
		if quantity, _ := strconv.Atoi(model.Quantity); quantity <= 0 {
			errs = append(errs, "product.QuantityNotGreaterThanZero")
		}
	}

	return errs
}

// DeleteProduct removes the product from every live cart, then deletes the
// catalog record.
func (s *ProductService) DeleteProduct(ctx context.Context, productID int64) error {
	s.carts.RemoveFromAllCarts(ctx, productID)
	return s.repo.DeleteProduct(ctx, productID)
}

// UpdateProductQuantities applies a finalized order's lines to catalog stock.
// Per line: a product missing from the catalog is skipped; otherwise its
// quantity is decremented by the ordered amount, and a product whose
// remaining quantity falls below one is deleted from the catalog rather than
// saved at zero. Each line is handled independently; one line's failure never
// stops the others.
func (s *ProductService) UpdateProductQuantities(ctx context.Context, lines []*domain.CartLine) []StockAdjustment {
	adjustments := make([]StockAdjustment, 0, len(lines))

	for _, line := range lines {
		adjustments = append(adjustments, s.adjustStock(ctx, line))
	}
	return adjustments
}

func (s *ProductService) adjustStock(ctx context.Context, line *domain.CartLine) StockAdjustment {
	productID := line.Product.ID

	p, err := s.repo.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return StockAdjustment{ProductID: productID, Outcome: StockSkipped}
	}
	if err != nil {
		log.Printf("stock lookup failed for product %d: %v", productID, err)
		return StockAdjustment{ProductID: productID, Outcome: StockFailed, Err: err}
	}

	remaining := p.Quantity - line.Quantity
	if remaining < 1 {
		if err := s.repo.DeleteProduct(ctx, productID); err != nil {
			log.Printf("stock delete failed for product %d: %v", productID, err)
			return StockAdjustment{ProductID: productID, Outcome: StockFailed, Err: err}
		}
		return StockAdjustment{ProductID: productID, Outcome: StockDeleted, Remaining: remaining}
	}

	p.Quantity = remaining
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		log.Printf("stock save failed for product %d: %v", productID, err)
		return StockAdjustment{ProductID: productID, Outcome: StockFailed, Err: err}
	}
	return StockAdjustment{ProductID: productID, Outcome: StockAdjusted, Remaining: remaining}
}
