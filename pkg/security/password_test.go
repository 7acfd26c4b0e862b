package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwameboadi/adepa-backend/pkg/config"
)

// low-cost parameters keep the suite fast; production values come from env
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	cfg := testPasswordConfig()

	hash, err := HashPassword("correct horse battery staple", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	cfg := testPasswordConfig()

	first, err := HashPassword("same password", cfg)
	require.NoError(t, err)
	second, err := HashPassword("same password", cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig())
	require.Error(t, err)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=1024,t=1,p=1"},
		{"bad salt encoding", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=abc,t=1,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPassword("whatever", tt.encoded)
			require.ErrorIs(t, err, ErrInvalidHash)
		})
	}
}

func TestParamsClampedFromConfig(t *testing.T) {
	hash, err := HashPassword("password", config.PasswordConfig{
		ArgonMemoryKB:    1, // below floor, clamps to 8
		ArgonTime:        0,
		ArgonParallelism: 0,
		ArgonSaltLen:     1,
		ArgonKeyLen:      1,
	})
	require.NoError(t, err)

	assert.Contains(t, hash, "m=8,t=1,p=1")

	ok, err := VerifyPassword("password", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
