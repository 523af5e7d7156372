package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for application-owned records.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParseTelegramID parses a Telegram user ID typed by an operator. Only
// plain digits are accepted; signs, spaces inside and zero are rejected.
func ParseTelegramID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrValidation("telegram id is required")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, ErrValidation("telegram id must be numeric, got %q", raw)
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrValidation("telegram id %q is out of range", raw)
	}
	return id, nil
}
