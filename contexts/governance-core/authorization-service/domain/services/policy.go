package services

import "strings"

// GrantsPermission reports whether the effective permission set contains the
// requested permission. Matching is exact and case-insensitive.
func GrantsPermission(permissions []string, permission string) bool {
	needle := strings.ToLower(strings.TrimSpace(permission))
	if needle == "" {
		return false
	}
	for _, candidate := range permissions {
		if strings.ToLower(strings.TrimSpace(candidate)) == needle {
			return true
		}
	}
	return false
}
