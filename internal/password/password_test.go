package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams keeps the argon2 work factor low so the suite stays fast;
// Verify reads parameters back from the PHC string.
var testParams = Params{
	MemoryKiB:   8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHash_ProducesArgon2idPHCString(t *testing.T) {
	encoded, err := HashWithParams("P4$$w0rdtest", testParams)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"), "got %q", encoded)
	assert.Len(t, strings.Split(encoded, "$"), 6)
}

func TestVerify_MatchesAndRejects(t *testing.T) {
	encoded, err := HashWithParams("P4$$w0rdtest", testParams)
	require.NoError(t, err)

	ok, err := Verify("P4$$w0rdtest", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong-password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltsAreUnique(t *testing.T) {
	first, err := HashWithParams("same-password", testParams)
	require.NoError(t, err)
	second, err := HashWithParams("same-password", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify_RejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$not-base64!$aGFzaA",
	} {
		_, err := Verify("password", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, "hash %q", encoded)
	}
}
