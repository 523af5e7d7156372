package domain

import (
	"strings"
	"time"
)

// AdminRole is the permission level of a bot administrator.
type AdminRole string

// Admin roles, highest privilege first.
const (
	RoleOwner   AdminRole = "owner"
	RoleAdmin   AdminRole = "admin"
	RoleEditor  AdminRole = "editor"
	RoleManager AdminRole = "manager"
)

// AdminRoles lists every valid role.
var AdminRoles = []AdminRole{RoleOwner, RoleAdmin, RoleEditor, RoleManager}

// ParseAdminRole validates a role name. An empty name means owner.
func ParseAdminRole(s string) (AdminRole, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleOwner, nil
	}
	for _, r := range AdminRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrValidation("unknown admin role %q (want owner, admin, editor or manager)", s)
}

// Admin is a Telegram user allowed to manage the bot.
type Admin struct {
	TelegramID int64
	Role       AdminRole
	CreatedAt  time.Time
}
