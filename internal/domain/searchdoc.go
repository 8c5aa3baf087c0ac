package domain

// SearchDocument is the denormalized row the text index is built from:
// one company with its tag names flattened to a comma-separated string.
// Nullable columns collapse to empty strings.
type SearchDocument struct {
	Domain       string `json:"domain"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Country      string `json:"country"`
	City         string `json:"city"`
	Technologies string `json:"technologies"`
}
