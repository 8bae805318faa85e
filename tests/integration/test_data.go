package integration

import (
	"fmt"
	"time"
)

// TestUsername generates a unique username so tests never collide on the
// case-insensitive unique index.
func TestUsername(suffix string) string {
	return fmt.Sprintf("test-%d-%s", time.Now().UnixNano(), suffix)
}

// DefaultTestPassword satisfies the password policy for seeded accounts.
const DefaultTestPassword = "TestPassword123!"
