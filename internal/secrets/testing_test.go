package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
)

// testWorkFactor keeps scrypt fast in tests.
const testWorkFactor = 10

var errAgentMiss = fmt.Errorf("%w: not cached", kerrors.ErrAgentUnavailable)

type fakeAgent struct {
	keys  map[string]string
	calls int
}

func (a *fakeAgent) GetKey(keyfile string) (*SecretKey, error) {
	a.calls++
	key, ok := a.keys[keyfile]
	if !ok {
		return nil, errAgentMiss
	}
	return NewSecretKey([]byte(key)), nil
}

func generateIdentity(t *testing.T) *age.X25519Identity {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("failed to generate identity: %v", err)
	}
	return identity
}

func testBackend(t *testing.T) *AgeBackend {
	t.Helper()
	identity := generateIdentity(t)
	return &AgeBackend{
		WorkFactor: testWorkFactor,
		recipient:  identity.Recipient(),
		identities: []*age.X25519Identity{identity},
	}
}

// testBackendBadKeypair encrypts to one key but holds an unrelated identity.
func testBackendBadKeypair(t *testing.T) *AgeBackend {
	t.Helper()
	return &AgeBackend{
		WorkFactor: testWorkFactor,
		recipient:  generateIdentity(t).Recipient(),
		identities: []*age.X25519Identity{generateIdentity(t)},
	}
}

func writeKeyfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write keyfile: %v", err)
	}
	return path
}
