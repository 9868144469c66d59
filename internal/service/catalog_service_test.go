package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"go-product-catalog/internal/model"
	"go-product-catalog/internal/repository/memory"
	"go-product-catalog/pkg/apierror"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createBook(t *testing.T, svc *CatalogService) model.Product {
	t.Helper()

	description := "A paperback"
	product, err := svc.Create(context.Background(), model.CreateProductRequest{
		Name:        "Book",
		Description: &description,
		Price:       price("9.99"),
		Category:    "books",
	})
	require.NoError(t, err)
	return product
}

func TestCatalogService_Create(t *testing.T) {
	svc := NewCatalogService(memory.NewProductStore())
	ctx := context.Background()

	t.Run("valid product round-trips", func(t *testing.T) {
		product := createBook(t, svc)
		require.NotZero(t, product.ID)

		got, err := svc.Retrieve(ctx, product.ID)
		require.NoError(t, err)
		require.Equal(t, "Book", got.Name)
		require.Equal(t, "A paperback", got.Description)
		require.True(t, got.Price.Equal(price("9.99")))
		require.Equal(t, model.CategoryBooks, got.Category)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateProductRequest{
			Name: "Book", Price: price("-5"), Category: "books",
		})
		requireValidationError(t, err, "price")
	})

	t.Run("zero price rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateProductRequest{
			Name: "Book", Price: decimal.Zero, Category: "books",
		})
		requireValidationError(t, err, "price")
	})

	t.Run("short name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateProductRequest{
			Name: "ab", Price: price("1"), Category: "books",
		})
		requireValidationError(t, err, "name")
	})

	t.Run("whitespace does not count toward name length", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateProductRequest{
			Name: "  ab  ", Price: price("1"), Category: "books",
		})
		requireValidationError(t, err, "name")
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateProductRequest{
			Name: "Lamp", Price: price("10"), Category: "furniture",
		})
		requireValidationError(t, err, "category")
	})

	t.Run("category is normalized", func(t *testing.T) {
		product, err := svc.Create(ctx, model.CreateProductRequest{
			Name: "Teddy Bear", Price: price("15.50"), Category: " Toys ",
		})
		require.NoError(t, err)
		require.Equal(t, model.CategoryToys, product.Category)
	})
}

func TestCatalogService_Update(t *testing.T) {
	svc := NewCatalogService(memory.NewProductStore())
	ctx := context.Background()
	product := createBook(t, svc)

	strPtr := func(s string) *string { return &s }
	pricePtr := func(s string) *decimal.Decimal {
		d := price(s)
		return &d
	}

	t.Run("applies only supplied fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, product.ID, model.UpdateProductRequest{
			Price: pricePtr("12.50"),
		})
		require.NoError(t, err)
		require.True(t, updated.Price.Equal(price("12.50")))
		require.Equal(t, product.Name, updated.Name)
		require.Equal(t, product.Description, updated.Description)
		require.Equal(t, product.Category, updated.Category)
	})

	t.Run("supplied invalid price rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, product.ID, model.UpdateProductRequest{
			Price: pricePtr("0"),
		})
		requireValidationError(t, err, "price")
	})

	t.Run("supplied short name rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, product.ID, model.UpdateProductRequest{
			Name: strPtr("xy"),
		})
		requireValidationError(t, err, "name")
	})

	t.Run("missing product id", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, model.UpdateProductRequest{Name: strPtr("Gone")})
		requireNotFound(t, err)
	})
}

func TestCatalogService_Delete(t *testing.T) {
	svc := NewCatalogService(memory.NewProductStore())
	ctx := context.Background()
	product := createBook(t, svc)

	require.NoError(t, svc.Delete(ctx, product.ID))

	t.Run("second delete reports not found", func(t *testing.T) {
		requireNotFound(t, svc.Delete(ctx, product.ID))
	})

	t.Run("retrieve after delete reports not found", func(t *testing.T) {
		_, err := svc.Retrieve(ctx, product.ID)
		requireNotFound(t, err)
	})
}

func TestCatalogService_List(t *testing.T) {
	svc := NewCatalogService(memory.NewProductStore())
	ctx := context.Background()

	seed := []model.CreateProductRequest{
		{Name: "Go Programming Book", Price: price("29.99"), Category: "books"},
		{Name: "Cook Book", Price: price("19.99"), Category: "books"},
		{Name: "Toy Robot", Price: price("49.99"), Category: "toys"},
		{Name: "Wireless Headphones", Price: price("99.99"), Category: "electronics"},
	}
	for _, req := range seed {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	t.Run("category filter", func(t *testing.T) {
		products, meta, err := svc.List(ctx, model.ProductQuery{Category: "books"})
		require.NoError(t, err)
		require.Len(t, products, 2)
		require.Equal(t, 2, meta.Total)
	})

	t.Run("category filter excludes others", func(t *testing.T) {
		products, _, err := svc.List(ctx, model.ProductQuery{Category: "food"})
		require.NoError(t, err)
		require.Empty(t, products)
	})

	t.Run("name substring filter is case-insensitive", func(t *testing.T) {
		products, _, err := svc.List(ctx, model.ProductQuery{Name: "book"})
		require.NoError(t, err)
		require.Len(t, products, 2)
	})

	t.Run("search overrides substring filters", func(t *testing.T) {
		products, _, err := svc.List(ctx, model.ProductQuery{Name: "zzz", Search: "robot"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Toy Robot", products[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		products, meta, err := svc.List(ctx, model.ProductQuery{Page: 2, Limit: 3})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, 4, meta.Total)
		require.Equal(t, 2, meta.TotalPages)
	})
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
}
