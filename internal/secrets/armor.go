package secrets

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age/armor"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
)

// EnvelopeKind describes who can open an age envelope.
type EnvelopeKind int

const (
	// KindRecipients envelopes are encrypted to one or more public keys.
	KindRecipients EnvelopeKind = iota
	// KindPassphrase envelopes are encrypted with a password (a single scrypt stanza).
	KindPassphrase
)

const (
	ageIntro      = "age-encryption.org/v1"
	stanzaPrefix  = "-> "
	footerPrefix  = "---"
	scryptStanza  = "scrypt"
	maxHeaderSize = 64 * 1024
)

// Armor encodes binary envelope bytes as ASCII-armored text.
func Armor(data []byte) (string, error) {
	var buf bytes.Buffer

	w := armor.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to armor envelope: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to armor envelope: %w", err)
	}

	return buf.String(), nil
}

// Dearmor decodes ASCII-armored text back into envelope bytes.
func Dearmor(text string) ([]byte, error) {
	if !IsArmored([]byte(text)) {
		return nil, fmt.Errorf("%w: missing armor header", kerrors.ErrMalformedEnvelope)
	}

	data, err := io.ReadAll(armor.NewReader(strings.NewReader(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrMalformedEnvelope, err)
	}
	return data, nil
}

func armorReader(data []byte) io.Reader {
	return armor.NewReader(bytes.NewReader(data))
}

// IsArmored reports whether data begins with the age armor header.
func IsArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(armor.Header))
}

// ParseEnvelopeKind parses the header of an armored or binary age envelope and reports
// whether it is password-wrapped or encrypted to recipients.
func ParseEnvelopeKind(data []byte) (EnvelopeKind, error) {
	if IsArmored(data) {
		dearmored, err := Dearmor(string(data))
		if err != nil {
			return 0, err
		}
		data = dearmored
	}

	r := bufio.NewReader(io.LimitReader(bytes.NewReader(data), maxHeaderSize))

	intro, err := r.ReadString('\n')
	if err != nil || strings.TrimSuffix(intro, "\n") != ageIntro {
		return 0, fmt.Errorf("%w: missing age header", kerrors.ErrMalformedEnvelope)
	}

	var stanzas []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("%w: truncated age header", kerrors.ErrMalformedEnvelope)
		}

		if strings.HasPrefix(line, footerPrefix) {
			break
		}
		if strings.HasPrefix(line, stanzaPrefix) {
			args := strings.Fields(strings.TrimPrefix(line, stanzaPrefix))
			if len(args) == 0 {
				return 0, fmt.Errorf("%w: empty stanza", kerrors.ErrMalformedEnvelope)
			}
			stanzas = append(stanzas, args[0])
		}
	}

	if len(stanzas) == 0 {
		return 0, fmt.Errorf("%w: no recipient stanzas", kerrors.ErrMalformedEnvelope)
	}
	if len(stanzas) == 1 && stanzas[0] == scryptStanza {
		return KindPassphrase, nil
	}
	return KindRecipients, nil
}
