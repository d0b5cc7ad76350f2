package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaidya/internal/repositories"
)

const sample = `
products:
  - name: Arthovita Oil
    category: Joint Care
    price: 499
    original_price: 650
    images: [/img/arthovita.jpg]
    benefits: [Eases joint pain]
  - name: Gasex Tablets
    slug: gasex
    category: Digestive Care
    price: 120
blogs:
  - title: Ayurveda for Healthy Joints
    author: Dr. Mehta
    body: Warm oil massage...
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func TestLoadAndApply(t *testing.T) {
	f, err := Load(writeSample(t))
	require.NoError(t, err)
	require.Len(t, f.Products, 2)
	require.NotNil(t, f.Products[0].OriginalPrice)

	store := repositories.NewMockStore()
	ctx := context.Background()
	require.NoError(t, Apply(ctx, f, store))

	products, err := store.Products.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	bySlug, err := store.Products.GetBySlug(ctx, "arthovita-oil")
	require.NoError(t, err)
	assert.Equal(t, 23, bySlug.DiscountPercent())

	_, err = store.Products.GetBySlug(ctx, "gasex")
	assert.NoError(t, err)

	post, err := store.Blogs.GetBySlug(ctx, "ayurveda-for-healthy-joints")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mehta", post.Author)
}

func TestApply_LeavesPopulatedCollectionsAlone(t *testing.T) {
	f, err := Load(writeSample(t))
	require.NoError(t, err)

	store := repositories.NewMockStore()
	ctx := context.Background()
	require.NoError(t, Apply(ctx, f, store))
	require.NoError(t, Apply(ctx, f, store))

	products, err := store.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
