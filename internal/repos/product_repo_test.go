package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookbright/internal/domain"
	"bookbright/internal/repos"
)

func sampleProduct(id, url string) *domain.CatalogProduct {
	return &domain.CatalogProduct{
		Product: domain.Product{
			ID: id, Slug: "leselys-" + id, SKU: "BB-TM-" + id, Name: "Leselys " + id,
			Price: decimal.NewFromInt(525), CompareAtPrice: decimal.NewFromInt(683), SupplierPrice: decimal.NewFromInt(20),
			SupplierCurrency: "USD", ImagesJSON: `["https://img.example/a.jpg"]`, TagsJSON: `["temu"]`, SpecsJSON: `{}`,
			Category: "Leselys", Supplier: "temu", SupplierURL: url, IsActive: true,
		},
		Variants: []domain.Variant{
			{ID: id + "-v1", Name: "Standard", SKU: "BB-TM-" + id + "-01", Price: decimal.NewFromInt(525), AttributesJSON: `{}`, Stock: 100, IsActive: true},
		},
	}
}

func TestProductRepo_CreateAndRead(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	repo := repos.NewProductRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleProduct("p1", "https://www.temu.com/goods.html?goods_id=1")))

	p, err := repo.BySlug("leselys-p1")
	require.NoError(t, err)
	assert.Equal(t, "Leselys p1", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(525)), "price %s", p.Price)
	assert.True(t, p.IsActive)

	vs, err := repo.Variants(p.ID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "Standard", vs[0].Name)

	id, err := repo.FindBySupplierURL(ctx, "https://www.temu.com/goods.html?goods_id=1")
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	id, err = repo.FindBySupplierURL(ctx, "https://www.temu.com/goods.html?goods_id=2")
	require.NoError(t, err)
	assert.Empty(t, id)

	cats, err := repo.Categories()
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, domain.CategoryCount{Name: "Leselys", Count: 1}, cats[0])
}

func TestProductRepo_DuplicateSupplierURLIsRejected(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	repo := repos.NewProductRepo(db)
	ctx := context.Background()
	url := "https://www.alibaba.com/product-detail/lamp_1600.html"

	require.NoError(t, repo.Create(ctx, sampleProduct("a", url)))
	err = repo.Create(ctx, sampleProduct("b", url))
	require.True(t, errors.Is(err, repos.ErrDuplicateProduct), "got %v", err)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// no orphan variants from the rejected insert
	var variants int
	require.NoError(t, db.Get(&variants, `SELECT COUNT(*) FROM product_variants`))
	assert.Equal(t, 1, variants)
}

func TestProductRepo_SearchAndCategory(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	repo := repos.NewProductRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleProduct("x1", "https://www.temu.com/goods.html?goods_id=11")))
	require.NoError(t, repo.Create(ctx, sampleProduct("x2", "https://www.temu.com/goods.html?goods_id=12")))

	found, err := repo.Search("x2", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "x2", found[0].ID)

	inCat, err := repo.ListByCategory("Leselys", 10, 0)
	require.NoError(t, err)
	assert.Len(t, inCat, 2)
}

func TestSafeQueryReturnsFallback(t *testing.T) {
	got := repos.SafeQuery("test.read.fail", []string{}, func() ([]string, error) {
		return nil, errors.New("db down")
	})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
