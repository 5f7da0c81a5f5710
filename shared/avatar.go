package shared

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// AvatarRef derives the stored blob reference for a user's avatar from its
// source URL. Empty URL means no avatar.
func AvatarRef(avatarUrl string) string {
	if avatarUrl == "" {
		return ""
	}
	hasher := murmur3.New64()
	_, _ = hasher.Write([]byte(avatarUrl))
	return fmt.Sprintf("av-%016x", hasher.Sum64())
}
