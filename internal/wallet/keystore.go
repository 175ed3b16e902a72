package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// kdfIterations is the OWASP-recommended minimum for PBKDF2-HMAC-SHA256.
	kdfIterations = 480_000
	saltLen       = 16
	aesKeyLen     = 32
	storeVersion  = 1
)

// keystoreFile is the on-disk format of an encrypted operator key.
type keystoreFile struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// KeySource tells LoadKey where to find the operator's private key: a raw hex
// key takes precedence, otherwise an encrypted keystore file plus password.
type KeySource struct {
	RawPrivateKey string
	KeystorePath  string
	Password      string
}

// LoadKey resolves the operator's private key as hex without a 0x prefix.
func LoadKey(src KeySource) (string, error) {
	if src.RawPrivateKey != "" {
		k := trimHexPrefix(src.RawPrivateKey)
		if _, err := hex.DecodeString(k); err != nil {
			return "", fmt.Errorf("wallet: raw private key is not valid hex: %w", err)
		}
		return k, nil
	}

	if src.KeystorePath != "" {
		blob, err := os.ReadFile(src.KeystorePath)
		if err != nil {
			return "", fmt.Errorf("wallet: reading keystore: %w", err)
		}
		return DecryptKeystore(blob, src.Password)
	}

	return "", errors.New("wallet: no key source configured")
}

// EncryptKeystore seals a hex private key under a password using
// PBKDF2-HMAC-SHA256 key derivation and AES-256-GCM, returning the keystore
// file contents.
func EncryptKeystore(privateKeyHex, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("wallet: keystore password must not be empty")
	}
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid private key hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("wallet: expected 32-byte key, got %d bytes", len(keyBytes))
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: generating salt: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: generating nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, keyBytes, nil)

	return json.MarshalIndent(keystoreFile{
		Version:    storeVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
	}, "", "  ")
}

// DecryptKeystore opens a keystore file produced by EncryptKeystore and
// returns the hex private key without a 0x prefix.
func DecryptKeystore(blob []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("wallet: keystore password must not be empty")
	}

	var stored keystoreFile
	if err := json.Unmarshal(blob, &stored); err != nil {
		return "", fmt.Errorf("wallet: parsing keystore: %w", err)
	}
	if stored.Version != storeVersion {
		return "", fmt.Errorf("wallet: unsupported keystore version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", fmt.Errorf("wallet: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", fmt.Errorf("wallet: decoding nonce: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("wallet: decoding ciphertext: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("wallet: keystore decryption failed (wrong password?): %w", err)
	}
	return hex.EncodeToString(plain), nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(password), salt, kdfIterations, aesKeyLen, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("wallet: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: creating GCM: %w", err)
	}
	return gcm, nil
}
