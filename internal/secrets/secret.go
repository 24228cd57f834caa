package secrets

import (
	"github.com/awnumar/memguard"
)

// SecretKey holds private key material in locked, guarded memory.
// The zero value is an empty key. Formatting a SecretKey never reveals its contents.
type SecretKey struct {
	buf *memguard.LockedBuffer
}

// NewSecretKey moves b into guarded memory. b is wiped and must not be used afterwards.
func NewSecretKey(b []byte) *SecretKey {
	return &SecretKey{buf: memguard.NewBufferFromBytes(b)}
}

// Bytes returns a view of the key material. The view is invalid after Destroy.
func (k *SecretKey) Bytes() []byte {
	if k == nil || k.buf == nil || !k.buf.IsAlive() {
		return nil
	}
	return k.buf.Bytes()
}

// Len returns the length of the key material in bytes.
func (k *SecretKey) Len() int {
	return len(k.Bytes())
}

// Destroy wipes and releases the key material. It is safe to call more than once.
func (k *SecretKey) Destroy() {
	if k == nil || k.buf == nil {
		return
	}
	k.buf.Destroy()
}

func (k *SecretKey) String() string { return "[REDACTED]" }

func (k *SecretKey) GoString() string { return "[REDACTED]" }
