package stations

import (
	"context"
	"fmt"
	"strings"
)

// Service provides business logic for the station master.
type Service struct {
	repo Repository
}

// NewService creates a new service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a station. Codes are normalized to upper case and must
// be unique; they become part of every receipt number issued there.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Station, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.repo.ExistsCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("check station code: %w", err)
	}
	if exists {
		return nil, ErrCodeTaken
	}

	id, err := s.repo.Create(ctx, Station{
		Code:     code,
		Name:     strings.TrimSpace(req.Name),
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update edits station details. The code stays fixed.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Station, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update station: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// Get returns a station by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Station, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode returns a station by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Station, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ExistsCode reports whether an active station carries the code. Booking
// and quotation intake verify stations through this.
func (s *Service) ExistsCode(ctx context.Context, code string) (bool, error) {
	return s.repo.ExistsCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// NameForCode resolves a station name, used to derive invoice prefixes.
func (s *Service) NameForCode(ctx context.Context, code string) (string, error) {
	station, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", err
	}
	return station.Name, nil
}

// List returns stations matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Station, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}
