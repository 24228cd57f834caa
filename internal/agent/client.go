package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	"github.com/PolarWolf314/kbs/internal/secrets"
)

// Message types exchanged with the agent.
const (
	TypeGetUnwrappedKey = "GetUnwrappedKey"
	TypeKey             = "Key"
	TypeFailure         = "Failure"
)

// DefaultTimeout bounds a single request, including connecting.
const DefaultTimeout = 5 * time.Second

// Message is the envelope for every request and response on the socket.
type Message struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

// Client fetches unwrapped keys from a running agent.
type Client interface {
	GetKey(keyfile string) (*secrets.SecretKey, error)
}

// SocketClient is a Client backed by the agent's unix socket.
type SocketClient struct {
	SocketPath string
	Timeout    time.Duration
}

// Dial checks that an agent is listening on socketPath and returns a client for it.
func Dial(socketPath string) (*SocketClient, error) {
	c := &SocketClient{SocketPath: socketPath, Timeout: DefaultTimeout}

	conn, err := c.connect()
	if err != nil {
		return nil, err
	}
	conn.Close()

	return c, nil
}

func (c *SocketClient) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *SocketClient) connect() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.SocketPath, c.timeout())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to kbs agent at %s: %w", kerrors.ErrAgentUnavailable, c.SocketPath, err)
	}
	return conn, nil
}

// GetKey asks the agent for the unwrapped key belonging to keyfile.
// Any failure, including the agent not holding the key, is ErrAgentUnavailable.
func (c *SocketClient) GetKey(keyfile string) (*secrets.SecretKey, error) {
	resp, err := c.request(Message{Type: TypeGetUnwrappedKey, Body: keyfile})
	if err != nil {
		return nil, err
	}

	switch resp.Type {
	case TypeKey:
		if resp.Body == "" {
			return nil, fmt.Errorf("%w: agent returned an empty key for %s", kerrors.ErrAgentUnavailable, keyfile)
		}
		return secrets.NewSecretKey([]byte(resp.Body)), nil
	case TypeFailure:
		return nil, fmt.Errorf("%w: %s", kerrors.ErrAgentUnavailable, resp.Body)
	default:
		return nil, fmt.Errorf("%w: unexpected agent response %q", kerrors.ErrAgentUnavailable, resp.Type)
	}
}

func (c *SocketClient) request(req Message) (*Message, error) {
	conn, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout())); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrAgentUnavailable, err)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", kerrors.ErrAgentUnavailable, err)
	}

	var resp Message
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, fmt.Errorf("%w: agent closed the connection", kerrors.ErrAgentUnavailable)
		}
		return nil, fmt.Errorf("%w: failed to read response: %w", kerrors.ErrAgentUnavailable, err)
	}

	return &resp, nil
}
