// internal/app/system/authutil/email.go
package authutil

import "strings"

// NormalizeEmail trims and lowercases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail performs a basic email format check: one @ with a non-empty
// local part and a domain containing a dot that is neither first nor last.
func ValidEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot >= 1 && dot < len(domain)-1
}
