package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestKeystoreRoundTrip(t *testing.T) {
	blob, err := EncryptKeystore("0x"+plainKey, "correct horse")
	require.NoError(t, err)

	got, err := DecryptKeystore(blob, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, plainKey, got)
}

func TestKeystoreWrongPassword(t *testing.T) {
	blob, err := EncryptKeystore(plainKey, "right")
	require.NoError(t, err)

	_, err = DecryptKeystore(blob, "wrong")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptKeystoreRejectsBadKeys(t *testing.T) {
	_, err := EncryptKeystore(plainKey, "")
	assert.Error(t, err)

	_, err = EncryptKeystore("zz", "pw")
	assert.Error(t, err)

	_, err = EncryptKeystore("abcd", "pw")
	assert.ErrorContains(t, err, "32-byte")
}

func TestLoadKey(t *testing.T) {
	t.Run("raw key wins", func(t *testing.T) {
		got, err := LoadKey(KeySource{RawPrivateKey: "0x" + plainKey, KeystorePath: "/does/not/exist"})
		require.NoError(t, err)
		assert.Equal(t, plainKey, got)
	})

	t.Run("keystore file", func(t *testing.T) {
		blob, err := EncryptKeystore(plainKey, "pw")
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "key.json")
		require.NoError(t, os.WriteFile(path, blob, 0o600))

		got, err := LoadKey(KeySource{KeystorePath: path, Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, plainKey, got)
	})

	t.Run("no source", func(t *testing.T) {
		_, err := LoadKey(KeySource{})
		assert.ErrorContains(t, err, "no key source")
	})

	t.Run("invalid raw hex", func(t *testing.T) {
		_, err := LoadKey(KeySource{RawPrivateKey: "0xzz"})
		assert.Error(t, err)
	})
}

func TestSignerAddress(t *testing.T) {
	s, err := NewSigner(plainKey)
	require.NoError(t, err)
	// Address derived from the well-known test vector key.
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", s.Address().Hex())
}
