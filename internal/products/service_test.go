package products

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campoverde/backoffice/internal/shared"
)

type memoryProductRepo struct {
	products map[int64]*Product
	nextID   int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[int64]*Product)}
}

func (r *memoryProductRepo) Insert(ctx context.Context, p *Product) (int64, error) {
	r.nextID++
	copied := *p
	copied.ID = r.nextID
	r.products[copied.ID] = &copied
	return copied.ID, nil
}

func (r *memoryProductRepo) Get(ctx context.Context, id int64) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryProductRepo) List(ctx context.Context, limit, offset int) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryProductRepo) Update(ctx context.Context, p *Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestProductCRUD(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()

	unit := "kg"
	product, err := svc.Create(ctx, 7, CreateProductRequest{Name: "Panela", Unit: &unit})
	require.NoError(t, err)
	require.Equal(t, int64(7), product.CreatedBy)
	require.Equal(t, "Panela", product.Name)

	chars := "bloque de 500g"
	updated, err := svc.Update(ctx, product.ID, UpdateProductRequest{Characteristics: &chars})
	require.NoError(t, err)
	require.Equal(t, "Panela", updated.Name)
	require.Equal(t, &chars, updated.Characteristics)
	require.Equal(t, &unit, updated.Unit)

	require.NoError(t, svc.Delete(ctx, product.ID))

	_, err = svc.Get(ctx, product.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductUpdateUnknown(t *testing.T) {
	svc := NewService(newMemoryProductRepo())

	name := "ghost"
	_, err := svc.Update(context.Background(), 99, UpdateProductRequest{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
