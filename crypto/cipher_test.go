package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamCipherEmptySecret(t *testing.T) {
	_, err := StreamCipher{}.Encrypt(nil, [16]byte{}, []uint64{1})
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestStreamCipherDetectsWrongKey(t *testing.T) {
	c := StreamCipher{}
	nonce := [16]byte{1, 2, 3}
	blocks, err := c.Encrypt(NewSharedKey([]byte("right key")), nonce, []uint64{2})
	require.NoError(t, err)

	_, err = c.Decrypt(NewSharedKey([]byte("wrong key")), nonce, blocks)
	require.ErrorIs(t, err, ErrMalformedBlock)
}

func TestStreamCipherInfoSeparatesKeys(t *testing.T) {
	secret := NewSharedKey([]byte("shared"))
	nonce := [16]byte{9}

	a, err := StreamCipher{}.Encrypt(secret, nonce, []uint64{1})
	require.NoError(t, err)
	b, err := StreamCipher{Info: []byte("other-context")}.Encrypt(secret, nonce, []uint64{1})
	require.NoError(t, err)
	require.NotEqual(t, a[0], b[0])
}
