package handler

// StatusResponse is returned by GET /api/user-status.
type StatusResponse struct {
	IsRegistered bool `json:"isRegistered"`
}

// RegisterResponse is returned by POST /api/register on success.
type RegisterResponse struct {
	Message string `json:"message"`
}

const registeredMessage = "User registered successfully"
