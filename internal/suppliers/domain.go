package suppliers

import "time"

// Supplier is a registered vendor in the portal directory.
type Supplier struct {
	ID          int64     `json:"id"`
	NameEN      string    `json:"name_en"`
	NameAR      *string   `json:"name_ar"`
	ContactName *string   `json:"contact_name"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
