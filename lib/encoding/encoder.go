package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// BundleVersion is the current bundle format version.
const BundleVersion = 1

// Sentinel errors returned by Decode.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid bundle format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: bundle decryption failed")
)

// Bundle is a pre-built set of raw component templates keyed by name.
//
// Templates hold the raw resource text exactly as it would have been fetched,
// so a bundle can stand in for any fetcher without changing parse behavior.
type Bundle struct {
	Version   int               `msgpack:"v"`
	Extension string            `msgpack:"x,omitempty"`
	Templates map[string]string `msgpack:"t"`
}

// NewBundle returns an empty bundle at the current version.
func NewBundle() *Bundle {
	return &Bundle{Version: BundleVersion, Templates: make(map[string]string)}
}

// Encoder handles encoding and decoding of template bundles.
// It supports two modes:
//   - Signed (default): Base64 + HMAC signature - visible but tamper-proof
//   - Sealed: AES-256-GCM - fully opaque
type Encoder struct {
	key []byte
	gcm cipher.AEAD
}

// NewEncoder creates a new encoder with the given key.
// The key should be 32 bytes for AES-256.
func NewEncoder(key []byte) (*Encoder, error) {
	if len(key) < 32 {
		// Derive a 32-byte key from the provided key
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		key: key,
		gcm: gcm,
	}, nil
}

// Encode serializes a bundle and returns an encoded string.
// If sealed is true, the data is encrypted; otherwise it's signed.
func (e *Encoder) Encode(b *Bundle, sealed bool) (string, error) {
	if b == nil {
		return "", errors.New("encoding: nil bundle")
	}
	if b.Version == 0 {
		b.Version = BundleVersion
	}

	packed, err := msgpack.Marshal(b)
	if err != nil {
		return "", err
	}

	if sealed {
		return e.encrypt(packed)
	}
	return e.sign(packed)
}

// Decode deserializes an encoded bundle. The mode is detected from the
// encoding itself: signed bundles carry a "." separated signature.
func (e *Encoder) Decode(encoded string) (*Bundle, error) {
	encoded = strings.TrimSpace(encoded)

	var packed []byte
	var err error

	if IsSealed(encoded) {
		packed, err = e.decrypt(encoded)
	} else {
		packed, err = e.verify(encoded)
	}
	if err != nil {
		return nil, err
	}

	var b Bundle
	if err := msgpack.Unmarshal(packed, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, b.Version)
	}
	if b.Templates == nil {
		b.Templates = make(map[string]string)
	}
	return &b, nil
}

// IsSealed reports whether an encoded bundle uses the sealed mode.
func IsSealed(encoded string) bool {
	return !strings.Contains(encoded, ".")
}

// sign creates a signed (but visible) encoding: base64.signature, where the
// signature is the full HMAC-SHA256 of data.
func (e *Encoder) sign(data []byte) (string, error) {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	return b64 + "." + base64.RawURLEncoding.EncodeToString(e.mac(data)), nil
}

func (e *Encoder) mac(data []byte) []byte {
	m := hmac.New(sha256.New, e.key)
	m.Write(data)
	return m.Sum(nil)
}

// verify verifies and decodes a signed string
func (e *Encoder) verify(encoded string) ([]byte, error) {
	parts := strings.SplitN(encoded, ".", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	if !hmac.Equal(sig, e.mac(data)) {
		return nil, ErrSignatureInvalid
	}

	return data, nil
}

// encrypt creates an encrypted encoding using AES-256-GCM
func (e *Encoder) encrypt(data []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := e.gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// decrypt decodes and decrypts an encrypted string
func (e *Encoder) decrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	if len(ciphertext) < e.gcm.NonceSize() {
		return nil, ErrInvalidFormat
	}

	nonce := ciphertext[:e.gcm.NonceSize()]
	ciphertext = ciphertext[e.gcm.NonceSize():]

	plain, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
