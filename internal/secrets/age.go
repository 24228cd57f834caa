package secrets

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/record"
	"github.com/awnumar/memguard"
)

// AgeBackend encrypts records to a single age X25519 recipient and decrypts
// them with the identities it holds.
type AgeBackend struct {
	// WorkFactor is the scrypt work factor for wrapping keys. Zero means DefaultWorkFactor.
	WorkFactor int

	recipient  *age.X25519Recipient
	identities []*age.X25519Identity
}

// NewAgeBackend parses the configured public key and loads exactly one private
// identity, from the agent when the keyfile is wrapped or from disk otherwise.
func NewAgeBackend(cfg configs.BackendConfig, agent KeyAgent, log logger.Logger) (*AgeBackend, error) {
	recipient, err := age.ParseX25519Recipient(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse public key: %v", kerrors.ErrInvalidPublicKey, err)
	}

	var keyData []byte
	if cfg.Wrapped {
		log.Debugf("config specifies a wrapped key")
		if agent == nil {
			return nil, fmt.Errorf("%w: no agent configured for %s", kerrors.ErrAgentUnavailable, cfg.Keyfile)
		}

		key, err := agent.GetKey(cfg.Keyfile)
		if err != nil {
			return nil, agentError(cfg.Keyfile, err)
		}
		defer key.Destroy()

		log.Debugf("parsing unwrapped key")
		keyData = key.Bytes()
	} else {
		data, err := os.ReadFile(cfg.Keyfile)
		if err != nil {
			return nil, fmt.Errorf("failed to read keyfile %s: %w", cfg.Keyfile, err)
		}
		defer memguard.WipeBytes(data)

		if IsArmored(data) {
			return nil, fmt.Errorf("%w: keyfile %s is wrapped but the config says wrapped = false", kerrors.ErrConfigParse, cfg.Keyfile)
		}
		keyData = data
	}

	identities, err := parseIdentities(keyData)
	if err != nil {
		return nil, err
	}
	if len(identities) != 1 {
		return nil, fmt.Errorf("%w, but got %d", kerrors.ErrIdentityCount, len(identities))
	}
	log.Debugf("successfully parsed a private key!")

	if identities[0].Recipient().String() != recipient.String() {
		return nil, fmt.Errorf("%w (%s)", kerrors.ErrKeyMismatch, cfg.PublicKey)
	}

	return &AgeBackend{recipient: recipient, identities: identities}, nil
}

// parseIdentities reads an age identity file: one identity per line, with
// blank lines and # comments ignored.
func parseIdentities(data []byte) ([]*age.X25519Identity, error) {
	var identities []*age.X25519Identity

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		identity, err := age.ParseX25519Identity(text)
		if err != nil {
			// The offending line is key material; only its position is reported.
			return nil, fmt.Errorf("%w: malformed private key on line %d", kerrors.ErrConfigParse, line)
		}
		identities = append(identities, identity)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrConfigParse, err)
	}

	return identities, nil
}

func agentError(keyfile string, err error) error {
	if errors.Is(err, kerrors.ErrAgentUnavailable) {
		return fmt.Errorf("agent has no unwrapped key for %s: %w", keyfile, err)
	}
	return fmt.Errorf("%w for %s: %w", kerrors.ErrAgentUnavailable, keyfile, err)
}

func (b *AgeBackend) workFactor() int {
	if b.WorkFactor == 0 {
		return DefaultWorkFactor
	}
	return b.WorkFactor
}

// CreateKeypair writes a fresh identity to path in age's identity file format.
func (b *AgeBackend) CreateKeypair(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("failed to generate keypair: %w", err)
	}

	contents := identityFile(identity)
	defer memguard.WipeBytes(contents)

	if err := os.WriteFile(path, contents, 0600); err != nil {
		return "", fmt.Errorf("failed to write keyfile %s: %w", path, err)
	}

	return identity.Recipient().String(), nil
}

// CreateWrappedKeypair writes a fresh identity to path, wrapped with password.
func (b *AgeBackend) CreateWrappedKeypair(path string, password []byte) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("failed to generate keypair: %w", err)
	}

	contents := identityFile(identity)
	defer memguard.WipeBytes(contents)

	wrapped, err := WrapKeyWithWorkFactor(contents, password, b.workFactor())
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, wrapped, 0600); err != nil {
		return "", fmt.Errorf("failed to write keyfile %s: %w", path, err)
	}

	return identity.Recipient().String(), nil
}

// RewrapKeyfile unwraps the keyfile at path with oldPassword and overwrites it
// with the same key wrapped under newPassword.
//
// The overwrite is not atomic: a crash while writing can destroy the only copy
// of the key. Callers that need durability must snapshot path first.
func (b *AgeBackend) RewrapKeyfile(path string, oldPassword, newPassword []byte) error {
	key, err := UnwrapKeyfile(path, oldPassword)
	if err != nil {
		return err
	}
	defer key.Destroy()

	rewrapped, err := WrapKeyWithWorkFactor(key.Bytes(), newPassword, b.workFactor())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, rewrapped, 0600); err != nil {
		return fmt.Errorf("failed to write keyfile %s: %w", path, err)
	}
	return nil
}

// Encrypt serializes r and encrypts it to the backend's recipient.
// Each call uses fresh randomness, so identical records produce different envelopes.
func (b *AgeBackend) Encrypt(r *record.Record) (string, error) {
	if b.recipient == nil {
		return "", kerrors.ErrBackendNotLoaded
	}

	payload, err := r.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to serialize record: %w", err)
	}
	defer memguard.WipeBytes(payload)

	var encrypted bytes.Buffer
	armored := armor.NewWriter(&encrypted)

	w, err := age.Encrypt(armored, b.recipient)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt record: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("failed to encrypt record: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to encrypt record: %w", err)
	}
	if err := armored.Close(); err != nil {
		return "", fmt.Errorf("failed to armor record: %w", err)
	}

	return encrypted.String(), nil
}

// Decrypt opens an armored envelope with the held identities.
func (b *AgeBackend) Decrypt(envelope string) (*record.Record, error) {
	if len(b.identities) == 0 {
		return nil, kerrors.ErrBackendNotLoaded
	}

	identities := make([]age.Identity, len(b.identities))
	for i, identity := range b.identities {
		identities[i] = identity
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(envelope)), identities...)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) || errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, fmt.Errorf("unable to decrypt: %w", kerrors.ErrNoMatchingIdentity)
		}
		return nil, fmt.Errorf("unable to decrypt: %w: %v", kerrors.ErrMalformedEnvelope, err)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("i/o error while decrypting: %w: %v", kerrors.ErrMalformedEnvelope, err)
	}
	defer memguard.WipeBytes(payload)

	rec, err := record.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCorruptPayload, err)
	}
	return rec, nil
}

func identityFile(identity *age.X25519Identity) []byte {
	return []byte(fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
		time.Now().Format(time.RFC3339), identity.Recipient(), identity))
}
