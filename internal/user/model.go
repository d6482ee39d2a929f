package user

import (
	"convenios-dashboard/internal/convenio"
	"time"
)

// User is a name seen at login. Names are what assignments and the
// responsible columns refer to, so they double as the user key.
type User struct {
	Name        string        `gorm:"primaryKey;size:255" json:"name"`
	Role        convenio.Role `gorm:"size:32" json:"role"`
	LastLoginAt time.Time     `json:"last_login_at"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string        `json:"token"`
	SessionID string        `json:"session_id"`
	Name      string        `json:"name"`
	Role      convenio.Role `json:"role"`
	ExpiresAt time.Time     `json:"expires_at"`
}
