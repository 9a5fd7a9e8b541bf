package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "hunter2")

	// Fresh salt every call
	hash2, err := HashPassword("hunter2")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)

	assert.True(t, CheckPasswordHash(hash, "correct horse battery staple"))
	assert.False(t, CheckPasswordHash(hash, "Correct horse battery staple"))
	assert.False(t, CheckPasswordHash(hash, ""))
}

func TestCheckPasswordHashMalformed(t *testing.T) {
	assert.False(t, CheckPasswordHash("", "anything"))
	assert.False(t, CheckPasswordHash("not-a-hash", "anything"))
	assert.False(t, CheckPasswordHash("$argon2id$v=19$m=65536,t=3,p=4$bogus", "anything"))
}
