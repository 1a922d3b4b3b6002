package tenant

import "time"

// Company is one bookstore tenant. Every domain row carries its id and
// every query filters on it; nothing is shared across companies.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// APIKey is a stored credential. Only the bcrypt hash persists; the raw
// key is shown once at creation.
type APIKey struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Prefix    string    `json:"prefix"`
	KeyHash   []byte    `json:"-"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
