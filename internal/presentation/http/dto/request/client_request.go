package request

// ClientRequest represents a client create or update request
type ClientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" binding:"max=50"`
	Email string `json:"email" binding:"max=255"`
}
