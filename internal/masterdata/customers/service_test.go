package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	customers map[int64]*Customer
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: make(map[int64]*Customer)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memoryRepo) ExistsPhone(ctx context.Context, phone string) (bool, error) {
	for _, c := range r.customers {
		if c.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, customer Customer) (int64, error) {
	r.nextID++
	customer.ID = r.nextID
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	r.customers[customer.ID] = &customer
	return customer.ID, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	c, ok := r.customers[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		c.Phone = v.(string)
	}
	return nil
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	c, err := svc.Create(ctx, CreateRequest{Name: " Ramesh Gupta ", Phone: "9876543210"})
	require.NoError(t, err)
	require.Equal(t, "Ramesh Gupta", c.Name)
	require.True(t, c.IsActive)
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(ctx, CreateRequest{Name: "Ramesh Gupta", Phone: "9876543210"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRequest{Name: "Suresh Kumar", Phone: "9876543210"})
	require.ErrorIs(t, err, ErrPhoneTaken)
}

func TestUpdatePhoneUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	first, err := svc.Create(ctx, CreateRequest{Name: "Ramesh Gupta", Phone: "9876543210"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRequest{Name: "Suresh Kumar", Phone: "9123456780"})
	require.NoError(t, err)

	taken := first.Phone
	_, err = svc.Update(ctx, second.ID, UpdateRequest{Phone: &taken})
	require.ErrorIs(t, err, ErrPhoneTaken)

	// Re-submitting the customer's own phone is fine.
	own := second.Phone
	updated, err := svc.Update(ctx, second.ID, UpdateRequest{Phone: &own})
	require.NoError(t, err)
	require.Equal(t, second.Phone, updated.Phone)
}
