package httpdto

// RegisterRequest carries a username and a password already hashed with
// bcrypt on the client; the plaintext never reaches this API.
type RegisterRequest struct {
	User           string `json:"user" binding:"required"`
	HashedPassword string `json:"hashedPassword" binding:"required"`
}

type LoginRequest struct {
	User     string `json:"user" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      string `json:"user"`
}
