package models

// Customer is a CRM contact.
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email,max=100"`
	Phone   string `json:"phone,omitempty" validate:"max=20"`
	Address string `json:"address,omitempty" validate:"max=200"`
	Company string `json:"company,omitempty" validate:"max=100"`
}

// CustomerUpdate carries a partial update; nil fields are left untouched.
type CustomerUpdate struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Address *string `json:"address" validate:"omitempty,max=200"`
	Company *string `json:"company" validate:"omitempty,max=100"`
}
