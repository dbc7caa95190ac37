package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateInviteCode returns a random team invite code shaped
// xxxx-xxxx-xxxx in lowercase hex.
func GenerateInviteCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	// The first twelve digits sit before the version nibble.
	digits := strings.ReplaceAll(id.String(), "-", "")[:12]
	return strings.Join([]string{digits[0:4], digits[4:8], digits[8:12]}, "-"), nil
}
