package secrets

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/record"
)

func TestAgeBackendCreateKeypair(t *testing.T) {
	backend := &AgeBackend{}
	path := writeKeyfile(t, "")

	publicKey, err := backend.CreateKeypair(path)
	if err != nil {
		t.Fatalf("CreateKeypair failed: %v", err)
	}
	if !strings.HasPrefix(publicKey, "age1") {
		t.Errorf("Expected an age recipient, got %q", publicKey)
	}

	// The keyfile must load back into a working backend.
	loaded, err := NewAgeBackend(configs.BackendConfig{
		Kind:      string(KindRageLib),
		PublicKey: publicKey,
		Keyfile:   path,
	}, nil, logger.Logger{})
	if err != nil {
		t.Fatalf("NewAgeBackend failed on generated keyfile: %v", err)
	}

	rec := record.NewLogin("foo", "username", "password")
	encrypted, err := loaded.Encrypt(rec)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	decrypted, err := loaded.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !decrypted.Equal(rec) {
		t.Errorf("Expected %+v, got %+v", rec, decrypted)
	}
}

func TestAgeBackendCreateWrappedKeypair(t *testing.T) {
	backend := &AgeBackend{WorkFactor: testWorkFactor}
	path := writeKeyfile(t, "")

	publicKey, err := backend.CreateWrappedKeypair(path, []byte("weakpassword"))
	if err != nil {
		t.Fatalf("CreateWrappedKeypair failed: %v", err)
	}

	wrapped, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read keyfile: %v", err)
	}
	if bytes.Contains(wrapped, []byte("AGE-SECRET-KEY-")) {
		t.Fatal("wrapped keyfile contains a plaintext private key")
	}

	// Unwrapping the keyfile using the same password should succeed.
	key, err := UnwrapKeyfile(path, []byte("weakpassword"))
	if err != nil {
		t.Fatalf("UnwrapKeyfile failed: %v", err)
	}
	defer key.Destroy()

	identities, err := parseIdentities(key.Bytes())
	if err != nil || len(identities) != 1 {
		t.Fatalf("Expected one identity in unwrapped key, got %d (err %v)", len(identities), err)
	}
	if identities[0].Recipient().String() != publicKey {
		t.Error("unwrapped identity does not match returned public key")
	}
}

func TestAgeBackendRewrapKeyfile(t *testing.T) {
	backend := &AgeBackend{WorkFactor: testWorkFactor}
	path := writeKeyfile(t, "")

	if _, err := backend.CreateWrappedKeypair(path, []byte("weakpassword")); err != nil {
		t.Fatalf("CreateWrappedKeypair failed: %v", err)
	}

	wrappedA, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read keyfile: %v", err)
	}
	unwrappedA, err := UnwrapKeyfile(path, []byte("weakpassword"))
	if err != nil {
		t.Fatalf("UnwrapKeyfile failed: %v", err)
	}
	defer unwrappedA.Destroy()

	// Changing the password on a wrapped keyfile should succeed.
	if err := backend.RewrapKeyfile(path, []byte("weakpassword"), []byte("stillweak")); err != nil {
		t.Fatalf("RewrapKeyfile failed: %v", err)
	}

	wrappedB, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read keyfile: %v", err)
	}
	unwrappedB, err := UnwrapKeyfile(path, []byte("stillweak"))
	if err != nil {
		t.Fatalf("UnwrapKeyfile with new password failed: %v", err)
	}
	defer unwrappedB.Destroy()

	// The wrapped envelopes should not be equal, since the password has changed.
	if bytes.Equal(wrappedA, wrappedB) {
		t.Error("Expected rewrapped keyfile to differ from the original")
	}

	// However, the wrapped key itself should be preserved.
	if !bytes.Equal(unwrappedA.Bytes(), unwrappedB.Bytes()) {
		t.Error("Expected rewrap to preserve the key material")
	}

	// The old password no longer works.
	if _, err := UnwrapKeyfile(path, []byte("weakpassword")); !errors.Is(err, kerrors.ErrWrapAuthFailure) {
		t.Errorf("Expected ErrWrapAuthFailure for old password, got: %v", err)
	}
}

func TestAgeBackendRewrapWrongPasswordLeavesKeyfile(t *testing.T) {
	backend := &AgeBackend{WorkFactor: testWorkFactor}
	path := writeKeyfile(t, "")

	if _, err := backend.CreateWrappedKeypair(path, []byte("weakpassword")); err != nil {
		t.Fatalf("CreateWrappedKeypair failed: %v", err)
	}
	before, _ := os.ReadFile(path)

	err := backend.RewrapKeyfile(path, []byte("wrong"), []byte("stillweak"))
	if !errors.Is(err, kerrors.ErrWrapAuthFailure) {
		t.Fatalf("Expected ErrWrapAuthFailure, got: %v", err)
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("Expected keyfile to be untouched after a failed rewrap")
	}
}

func TestAgeBackendEncrypt(t *testing.T) {
	backend := testBackend(t)
	rec := record.NewLogin("foo", "username", "password")

	encrypted, err := backend.Encrypt(rec)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !strings.HasPrefix(encrypted, armor.Header) {
		t.Errorf("Expected armored envelope, got %q", encrypted)
	}
	if strings.Contains(encrypted, "password") {
		t.Error("envelope contains plaintext")
	}

	if _, err := backend.Encrypt(&record.Record{}); err == nil {
		t.Error("Expected error encrypting a record without label or body")
	}
}

func TestAgeBackendDecrypt(t *testing.T) {
	backend := testBackend(t)

	records := []*record.Record{
		record.NewLogin("foo", "username", "password"),
		record.NewEnvironment("bar", "API_TOKEN", "abc123"),
		record.NewUnstructured("baz", "multi\nline\ncontents"),
	}

	for _, rec := range records {
		t.Run(string(rec.Kind()), func(t *testing.T) {
			encrypted, err := backend.Encrypt(rec)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			decrypted, err := backend.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !decrypted.Equal(rec) {
				t.Errorf("Expected %+v, got %+v", rec, decrypted)
			}
		})
	}
}

func TestAgeBackendEncryptIsNonDeterministic(t *testing.T) {
	backend := testBackend(t)
	rec := record.NewLogin("foo", "username", "password")

	a, err := backend.Encrypt(rec)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b, err := backend.Encrypt(rec)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if a == b {
		t.Fatal("Expected two encryptions of the same record to differ")
	}

	for _, envelope := range []string{a, b} {
		decrypted, err := backend.Decrypt(envelope)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !decrypted.Equal(rec) {
			t.Errorf("Expected %+v, got %+v", rec, decrypted)
		}
	}
}

func TestAgeBackendDecryptNoMatchingIdentity(t *testing.T) {
	t.Run("BadKeypair", func(t *testing.T) {
		backend := testBackendBadKeypair(t)

		encrypted, err := backend.Encrypt(record.NewLogin("foo", "username", "password"))
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		_, err = backend.Decrypt(encrypted)
		if !errors.Is(err, kerrors.ErrNoMatchingIdentity) {
			t.Errorf("Expected ErrNoMatchingIdentity, got: %v", err)
		}
	})

	t.Run("UnrelatedKeypair", func(t *testing.T) {
		a := testBackend(t)
		b := testBackend(t)

		encrypted, err := a.Encrypt(record.NewLogin("foo", "username", "password"))
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		_, err = b.Decrypt(encrypted)
		if !errors.Is(err, kerrors.ErrNoMatchingIdentity) {
			t.Errorf("Expected ErrNoMatchingIdentity, got: %v", err)
		}
		if errors.Is(err, kerrors.ErrMalformedEnvelope) {
			t.Error("Expected a key mismatch not to be reported as a malformed envelope")
		}
	})
}

func TestAgeBackendDecryptMalformedEnvelope(t *testing.T) {
	backend := testBackend(t)

	encrypted, err := backend.Encrypt(record.NewLogin("foo", "username", "password"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	testCases := []struct {
		name     string
		envelope string
	}{
		{"Empty", ""},
		{"NotArmored", "definitely not an envelope"},
		{"TruncatedArmor", encrypted[:len(encrypted)/2]},
		{"WrappedKeyNotRecord", mustWrap(t)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := backend.Decrypt(tc.envelope)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, kerrors.ErrCryptoFailure) {
				t.Errorf("Expected a crypto failure, got: %v", err)
			}
			if errors.Is(err, kerrors.ErrCorruptPayload) {
				t.Errorf("Expected envelope failure, got corrupt payload: %v", err)
			}
		})
	}

	_, err = backend.Decrypt("definitely not an envelope")
	if !errors.Is(err, kerrors.ErrMalformedEnvelope) {
		t.Errorf("Expected ErrMalformedEnvelope, got: %v", err)
	}
}

func mustWrap(t *testing.T) string {
	t.Helper()
	wrapped, err := WrapKeyWithWorkFactor([]byte("AGE-SECRET-KEY-1"), []byte("pw"), testWorkFactor)
	if err != nil {
		t.Fatalf("WrapKeyWithWorkFactor failed: %v", err)
	}
	return string(wrapped)
}

func TestAgeBackendDecryptCorruptPayload(t *testing.T) {
	backend := testBackend(t)

	var buf bytes.Buffer
	armored := armor.NewWriter(&buf)
	w, err := age.Encrypt(armored, backend.recipient)
	if err != nil {
		t.Fatalf("age.Encrypt failed: %v", err)
	}
	if _, err := w.Write([]byte(`{"label": "not a record"`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := armored.Close(); err != nil {
		t.Fatalf("armor Close failed: %v", err)
	}

	_, err = backend.Decrypt(buf.String())
	if !errors.Is(err, kerrors.ErrCorruptPayload) {
		t.Errorf("Expected ErrCorruptPayload, got: %v", err)
	}
}

func TestAgeBackendNotLoaded(t *testing.T) {
	backend := &AgeBackend{}

	if _, err := backend.Encrypt(record.NewUnstructured("x", "y")); !errors.Is(err, kerrors.ErrBackendNotLoaded) {
		t.Errorf("Expected ErrBackendNotLoaded from Encrypt, got: %v", err)
	}
	if _, err := backend.Decrypt("anything"); !errors.Is(err, kerrors.ErrBackendNotLoaded) {
		t.Errorf("Expected ErrBackendNotLoaded from Decrypt, got: %v", err)
	}
}

func TestNewAgeBackendIdentityCount(t *testing.T) {
	a := generateIdentity(t)
	b := generateIdentity(t)

	testCases := []struct {
		name    string
		keyfile string
	}{
		{"NoIdentities", "# created: never\n\n"},
		{"EmptyFile", ""},
		{"TwoIdentities", a.String() + "\n" + b.String() + "\n"},
		{"DuplicateIdentity", a.String() + "\n# again\n" + a.String() + "\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeKeyfile(t, tc.keyfile)

			_, err := NewAgeBackend(configs.BackendConfig{
				Kind:      string(KindRageLib),
				PublicKey: a.Recipient().String(),
				Keyfile:   path,
			}, nil, logger.Logger{})
			if !errors.Is(err, kerrors.ErrIdentityCount) {
				t.Errorf("Expected ErrIdentityCount, got: %v", err)
			}
			if !errors.Is(err, kerrors.ErrConfigParse) {
				t.Errorf("Expected ErrConfigParse, got: %v", err)
			}
		})
	}
}

func TestNewAgeBackendConfigErrors(t *testing.T) {
	identity := generateIdentity(t)
	other := generateIdentity(t)
	goodKeyfile := writeKeyfile(t, identity.String()+"\n")

	testCases := []struct {
		name      string
		publicKey string
		keyfile   string
		expected  error
	}{
		{"InvalidPublicKey", "age1notarealkey", goodKeyfile, kerrors.ErrInvalidPublicKey},
		{"EmptyPublicKey", "", goodKeyfile, kerrors.ErrInvalidPublicKey},
		{"MalformedIdentity", identity.Recipient().String(), writeKeyfile(t, "AGE-SECRET-KEY-1GARBAGE\n"), kerrors.ErrConfigParse},
		{"MismatchedPublicKey", other.Recipient().String(), goodKeyfile, kerrors.ErrKeyMismatch},
		{"WrappedButConfiguredPlain", identity.Recipient().String(), writeKeyfile(t, mustWrap(t)), kerrors.ErrConfigParse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAgeBackend(configs.BackendConfig{
				Kind:      string(KindRageLib),
				PublicKey: tc.publicKey,
				Keyfile:   tc.keyfile,
			}, nil, logger.Logger{})
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got: %v", tc.expected, err)
			}
			if !errors.Is(err, kerrors.ErrConfigParse) {
				t.Errorf("Expected ErrConfigParse, got: %v", err)
			}
		})
	}
}

func TestNewAgeBackendMalformedIdentityDoesNotLeakKey(t *testing.T) {
	identity := generateIdentity(t)
	secretLine := "AGE-SECRET-KEY-1LEAKLEAKLEAK"
	path := writeKeyfile(t, secretLine+"\n")

	_, err := NewAgeBackend(configs.BackendConfig{
		Kind:      string(KindRageLib),
		PublicKey: identity.Recipient().String(),
		Keyfile:   path,
	}, nil, logger.Logger{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if strings.Contains(err.Error(), secretLine) {
		t.Errorf("error message leaked key material: %v", err)
	}
}

func TestNewAgeBackendMissingKeyfile(t *testing.T) {
	identity := generateIdentity(t)

	_, err := NewAgeBackend(configs.BackendConfig{
		Kind:      string(KindRageLib),
		PublicKey: identity.Recipient().String(),
		Keyfile:   "/nonexistent/kbs/key",
	}, nil, logger.Logger{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected the I/O error to be preserved, got: %v", err)
	}
}

func TestNewAgeBackendWrappedUsesAgent(t *testing.T) {
	identity := generateIdentity(t)
	keyfile := "/home/user/.config/kbs/key"

	agent := &fakeAgent{keys: map[string]string{keyfile: identity.String() + "\n"}}
	cfg := configs.BackendConfig{
		Kind:      string(KindRageLib),
		PublicKey: identity.Recipient().String(),
		Keyfile:   keyfile,
		Wrapped:   true,
	}

	// The keyfile path does not exist on disk; only the agent is consulted.
	backend, err := NewBackend(cfg, agent, logger.Logger{})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	if agent.calls != 1 {
		t.Errorf("Expected one agent call, got %d", agent.calls)
	}

	rec := record.NewUnstructured("foo", "bar")
	encrypted, err := backend.Encrypt(rec)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	decrypted, err := backend.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !decrypted.Equal(rec) {
		t.Errorf("Expected %+v, got %+v", rec, decrypted)
	}
}

type brokenAgent struct{}

func (brokenAgent) GetKey(string) (*SecretKey, error) {
	return nil, errors.New("connection reset by peer")
}

func TestNewAgeBackendWrappedAgentUnavailable(t *testing.T) {
	identity := generateIdentity(t)
	cfg := configs.BackendConfig{
		Kind:      string(KindRageLib),
		PublicKey: identity.Recipient().String(),
		Keyfile:   "/home/user/.config/kbs/key",
		Wrapped:   true,
	}

	testCases := []struct {
		name  string
		agent KeyAgent
	}{
		{"NoEntry", &fakeAgent{keys: map[string]string{}}},
		{"TransportError", brokenAgent{}},
		{"NoAgent", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAgeBackend(cfg, tc.agent, logger.Logger{})
			if !errors.Is(err, kerrors.ErrAgentUnavailable) {
				t.Errorf("Expected ErrAgentUnavailable, got: %v", err)
			}
			if !strings.Contains(err.Error(), cfg.Keyfile) {
				t.Errorf("Expected error to name the keyfile, got: %v", err)
			}
		})
	}
}

func TestNewBackendUnsupportedKind(t *testing.T) {
	_, err := NewBackend(configs.BackendConfig{Kind: "GnuPG"}, nil, logger.Logger{})
	if !errors.Is(err, kerrors.ErrUnsupportedBackend) {
		t.Errorf("Expected ErrUnsupportedBackend, got: %v", err)
	}

	if _, err := BackendFor("GnuPG"); !errors.Is(err, kerrors.ErrUnsupportedBackend) {
		t.Errorf("Expected ErrUnsupportedBackend from BackendFor, got: %v", err)
	}

	backend, err := BackendFor(KindRageLib)
	if err != nil || backend == nil {
		t.Fatalf("Expected keyless RageLib backend, got %v (err %v)", backend, err)
	}
}
