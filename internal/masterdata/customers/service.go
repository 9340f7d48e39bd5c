package customers

import (
	"context"
	"fmt"
	"strings"
)

// Service provides business logic for the customer master.
type Service struct {
	repo Repository
}

// NewService creates a new service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a customer. Phone numbers are unique per customer.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Customer, error) {
	phone := strings.TrimSpace(req.Phone)

	exists, err := s.repo.ExistsPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("check customer phone: %w", err)
	}
	if exists {
		return nil, ErrPhoneTaken
	}

	id, err := s.repo.Create(ctx, Customer{
		Name:     strings.TrimSpace(req.Name),
		Phone:    phone,
		Email:    req.Email,
		GSTIN:    req.GSTIN,
		Address:  req.Address,
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update edits customer details.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Customer, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != existing.Phone {
			exists, err := s.repo.ExistsPhone(ctx, phone)
			if err != nil {
				return nil, fmt.Errorf("check customer phone: %w", err)
			}
			if exists {
				return nil, ErrPhoneTaken
			}
		}
		updates["phone"] = phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.GSTIN != nil {
		updates["gstin"] = *req.GSTIN
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update customer: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// Get returns a customer by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Customer, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}
