package domain

import "time"

// User is a bot user as stored in the users table.
type User struct {
	ID          int64
	TelegramID  int64
	Username    *string
	FirstName   *string
	LastName    *string
	Source      *string
	FunnelStage string // "new" until the bot moves the user along the funnel
	IsBlocked   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fixed identity of the smoke-test user.
const (
	SmokeUserTelegramID int64 = 123456789
	SmokeUserUsername         = "test_user"
	SmokeUserFirstName        = "Test"
	SmokeUserLastName         = "User"
	SmokeUserSource           = "test"
)
