package domain

import (
	"errors"
	"strings"
)

// Role name validation errors
var (
	ErrEmptyRoleName   = errors.New("role name cannot be empty")
	ErrRoleNameTooLong = errors.New("role name must be at most 64 characters")
)

// DefaultRoleName is the label reported for accounts that have no
// explicit role assignment.
const DefaultRoleName = "user"

// ValidateRoleName checks that a role name is usable as a capability tag.
// Role names are globally unique and compared case-sensitively.
func ValidateRoleName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyRoleName
	}
	if len(name) > 64 {
		return ErrRoleNameTooLong
	}
	return nil
}
