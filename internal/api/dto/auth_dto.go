package dto

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	LastName string `json:"lastname,omitempty"`
	PhoneNo  string `json:"phone_no,omitempty"`
	EmailID  string `json:"email_id,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest payload for access token renewal.
type RefreshTokenRequest struct {
	Token string `json:"token"`
}

// TokenResponse is the standard response for all three auth endpoints: a
// fresh access token plus the refresh token to exchange for the next one.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// PrincipalResponse describes the authenticated caller.
type PrincipalResponse struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}
