package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEllipticalTruncate(t *testing.T) {
	assert.Equal(t, "…", TruncateWithEllipsis("1 2 3", 0))
	assert.Equal(t, "1…", TruncateWithEllipsis("1 2 3", 1))
	assert.Equal(t, "1…", TruncateWithEllipsis("1 2 3", 2))
	assert.Equal(t, "1 2…", TruncateWithEllipsis("1 2 3", 3))
	assert.Equal(t, "1 2 3", TruncateWithEllipsis("1 2 3", 5))
}

func TestValidateUsername(t *testing.T) {
	assert.Nil(t, ValidateUsername("parrot"))
	assert.Nil(t, ValidateUsername("parrot.42"))
	assert.NotNil(t, ValidateUsername(""))
	assert.NotNil(t, ValidateUsername("two words"))
	assert.NotNil(t, ValidateUsername("a/b"))
}

func TestAvatarRef(t *testing.T) {
	ref := AvatarRef("https://example.com/avatars/parrot.png")
	assert.Regexp(t, "^av-[0-9a-f]{16}$", ref)
	assert.Equal(t, ref, AvatarRef("https://example.com/avatars/parrot.png"))
	assert.NotEqual(t, ref, AvatarRef("https://example.com/avatars/other.png"))
	assert.Equal(t, "", AvatarRef(""))
}
