package clients

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campoverde/backoffice/internal/shared"
)

type memoryClientRepo struct {
	clients map[int64]*Client
	nextID  int64
}

func newMemoryClientRepo() *memoryClientRepo {
	return &memoryClientRepo{clients: make(map[int64]*Client)}
}

func (r *memoryClientRepo) Insert(ctx context.Context, c *Client) (int64, error) {
	r.nextID++
	copied := *c
	copied.ID = r.nextID
	r.clients[copied.ID] = &copied
	return copied.ID, nil
}

func (r *memoryClientRepo) Get(ctx context.Context, id int64) (*Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memoryClientRepo) List(ctx context.Context, limit, offset int) ([]Client, error) {
	var out []Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryClientRepo) Update(ctx context.Context, c *Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *c
	r.clients[c.ID] = &copied
	return nil
}

func (r *memoryClientRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.clients[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

func TestClientCRUD(t *testing.T) {
	svc := NewService(newMemoryClientRepo())
	ctx := context.Background()

	phone := "+52 555 0100"
	client, err := svc.Create(ctx, 7, CreateClientRequest{Name: "Mercado Central", Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, int64(7), client.CreatedBy)
	require.Equal(t, "Mercado Central", client.Name)

	name := "Mercado Central SA"
	updated, err := svc.Update(ctx, client.ID, UpdateClientRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, &phone, updated.Phone)

	require.NoError(t, svc.Delete(ctx, client.ID))

	_, err = svc.Get(ctx, client.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientUpdateUnknown(t *testing.T) {
	svc := NewService(newMemoryClientRepo())

	name := "ghost"
	_, err := svc.Update(context.Background(), 99, UpdateClientRequest{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
