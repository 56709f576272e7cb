package validation

import (
	"fmt"
	"strings"
)

var reservedCommunityNames = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"auth":          {},
	"communities":   {},
	"events":        {},
	"messages":      {},
	"metrics":       {},
	"notifications": {},
	"posts":         {},
	"projects":      {},
	"settings":      {},
	"skills":        {},
	"tutorials":     {},
	"users":         {},
}

// ValidateCommunityName validates community name length and reserved names.
func ValidateCommunityName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 {
		return fmt.Errorf("community name must be at least 3 characters long")
	}
	if len(trimmed) > 120 {
		return fmt.Errorf("community name must not exceed 120 characters")
	}

	if _, exists := reservedCommunityNames[strings.ToLower(trimmed)]; exists {
		return fmt.Errorf("community name is reserved")
	}

	return nil
}
