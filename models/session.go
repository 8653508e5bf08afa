package models

// Session struct for storing session data
type Session struct {
	SessionToken  string `json:"session_token"`
	UserID        string `json:"user_id"`
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Role          Role   `json:"role"`
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrf_token"`
	CreatedAt     string `json:"created_at"`
	ExpiresAt     string `json:"expires_at"`
}
