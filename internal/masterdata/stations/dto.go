package stations

// CreateRequest carries the input for registering a station.
type CreateRequest struct {
	Code    string `json:"code" validate:"required,min=2,max=10,alphanum"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=300"`
	Phone   string `json:"phone" validate:"max=20"`
}

// UpdateRequest carries editable station fields. The code is immutable;
// receipts already issued reference it.
type UpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListRequest filters station listings.
type ListRequest struct {
	Search     *string `json:"search,omitempty"`
	ActiveOnly bool    `json:"active_only"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}
