package domain

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"user,omitempty"`
}
