package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is what a successful login returns.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResponse is what a successful registration returns.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// ErrorResponse is the structured error body the server may return on non-2xx.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Session is the ambient authenticated-user context. Populated atomically on
// login/register, cleared atomically on logout. Individual fields may be
// amended mid-session (email update).
type Session struct {
	Username  string
	Email     string
	Role      string
	LoggedIn  bool
	DarkTheme bool
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
