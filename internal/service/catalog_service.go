package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"go-product-catalog/internal/model"
	"go-product-catalog/pkg/apierror"
)

const minProductNameLength = 3

// ProductStore persists product records.
type ProductStore interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query model.ProductQuery) ([]model.Product, model.Meta, error)
}

type CatalogService struct {
	products ProductStore
}

func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) Create(ctx context.Context, req model.CreateProductRequest) (model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return model.Product{}, err
	}
	if err := validatePrice(req.Price); err != nil {
		return model.Product{}, err
	}

	category := model.Category(strings.ToLower(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return model.Product{}, apierror.Validation("unknown category", "category")
	}

	now := time.Now().UTC()
	product := model.Product{
		Name:      name,
		Price:     req.Price,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = strings.TrimSpace(*req.Image)
	}

	if err := s.products.Create(ctx, &product); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

// Update applies only the fields present in the request, validating each
// supplied field the same way Create does.
func (s *CatalogService) Update(ctx context.Context, id int64, req model.UpdateProductRequest) (model.Product, error) {
	product, err := s.Retrieve(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return model.Product{}, err
		}
		product.Name = name
	}

	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return model.Product{}, err
		}
		product.Price = *req.Price
	}

	if req.Category != nil {
		category := model.Category(strings.ToLower(strings.TrimSpace(*req.Category)))
		if !category.Valid() {
			return model.Product{}, apierror.Validation("unknown category", "category")
		}
		product.Category = category
	}

	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = strings.TrimSpace(*req.Image)
	}

	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return model.Product{}, notFound(id)
		}
		return model.Product{}, err
	}

	return product, nil
}

// Delete removes the product. A missing id is a 404 rather than a silent
// no-op.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return notFound(id)
		}
		return err
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context, query model.ProductQuery) ([]model.Product, model.Meta, error) {
	return s.products.List(ctx, query)
}

func (s *CatalogService) Retrieve(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, model.ErrProductNotFound) {
		return model.Product{}, notFound(id)
	}
	if err != nil {
		return model.Product{}, err
	}
	return product, nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) < minProductNameLength {
		return apierror.Validation("name must be at least 3 characters", "name")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return apierror.Validation("price must be greater than zero", "price")
	}
	return nil
}

func notFound(id int64) error {
	return apierror.NotFound("product not found", strconv.FormatInt(id, 10))
}
