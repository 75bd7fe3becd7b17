package types

import "time"

// AuthEvent 远端身份状态变化事件
type AuthEvent string

const (
	AuthSignedIn       AuthEvent = "SIGNED_IN"
	AuthSignedOut      AuthEvent = "SIGNED_OUT"
	AuthTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	AuthUserUpdated    AuthEvent = "USER_UPDATED"
)

// AuthUser 远端身份账号（不含资料）
type AuthUser struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	EmailConfirmed bool           `json:"email_confirmed"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Session 登录会话
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
}

// Expired 距离过期不足 leeway 即视为过期
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(s.ExpiresAt)
}

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
}

type SignUpResult struct {
	UserID            string `json:"user_id"`
	NeedsVerification bool   `json:"needs_verification"`
	ProfileCreated    bool   `json:"profile_created"`
	Message           string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SessionView 对外展示的会话状态
type SessionView struct {
	State        string `json:"state"`
	User         *User  `json:"user,omitempty"`
	NeedsProfile bool   `json:"needs_profile"`
}
