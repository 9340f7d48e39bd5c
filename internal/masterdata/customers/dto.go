package customers

// CreateRequest carries the input for registering a customer.
type CreateRequest struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Phone   string  `json:"phone" validate:"required,max=20"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	GSTIN   *string `json:"gstin,omitempty" validate:"omitempty,len=15,alphanum"`
	Address string  `json:"address" validate:"max=300"`
}

// UpdateRequest carries editable customer fields.
type UpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	GSTIN    *string `json:"gstin,omitempty" validate:"omitempty,len=15,alphanum"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=300"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListRequest filters customer listings.
type ListRequest struct {
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
