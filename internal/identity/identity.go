// Package identity maps identity-provider user IDs onto profile UUIDs.
package identity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DemoUserID is the identity used for anonymous requests in demo mode.
const DemoUserID = "demo-user"

// Namespace is the RFC-4122 DNS namespace (6ba7b810-9dad-11d1-80b4-00c04fd430c8).
var Namespace = uuid.NameSpaceDNS

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidUUID reports whether s is a canonical RFC-4122 UUID (versions 1-5).
func IsValidUUID(s string) bool {
	return uuidPattern.MatchString(strings.ToLower(s))
}

// NormalizeUserID returns id lowercased when it is already a UUID, otherwise
// the name-based (v5) UUID of id under Namespace. It never fails.
func NormalizeUserID(id string) string {
	if IsValidUUID(id) {
		return strings.ToLower(id)
	}
	return uuid.NewSHA1(Namespace, []byte(id)).String()
}
