package model

// Property is one read-only row of the static listings table. Rows are
// loaded once at process start and never mutated by the controller.
type Property struct {
	ID          string   `json:"id"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	Price       int64    `json:"price"` // EGP
	Bedrooms    int      `json:"bedrooms"`
	Features    []string `json:"features"`
	Description string   `json:"description"`
}
