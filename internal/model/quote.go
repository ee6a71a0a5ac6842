package model

// QuoteRequest is a submitted quote form. Stored as a hash per submission
// plus a set of ids acting as the index, so entries can be deleted
// individually without rewriting a collection blob.
type QuoteRequest struct {
	ID          string   `json:"id"`
	EventType   string   `json:"eventType"`
	Services    []string `json:"services"`
	EventDate   string   `json:"eventDate"`
	GuestCount  string   `json:"guestCount"`
	Location    string   `json:"location"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"createdAt"`
}
