package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"

	"github.com/angristan/hue-panel/internal/config"
)

// ErrorKind classifies failures surfaced to the user
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfigMissing
	KindPersistence
	KindBridgeAPI
	KindPairingRequired
	KindNetworkTimeout
	KindNetworkUnreachable
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfigMissing:
		return "config_missing"
	case KindPersistence:
		return "persistence"
	case KindBridgeAPI:
		return "bridge_api"
	case KindPairingRequired:
		return "pairing_required"
	case KindNetworkTimeout:
		return "network_timeout"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Bridge error type returned when the link button has not been pressed
const errTypeLinkButton = 101

var (
	// ErrConfigMissing is returned before any network call when the bridge
	// address or username is not configured.
	ErrConfigMissing = errors.New("hue bridge not configured")

	// ErrPairingRequired means the bridge refused pairing because its link
	// button was not pressed.
	ErrPairingRequired = errors.New("link button not pressed")
)

// BridgeAPIError is an error entry returned by the bridge itself
type BridgeAPIError struct {
	Type        int
	Description string
	Address     string
}

func (e *BridgeAPIError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("hue error %d: %s (%s)", e.Type, e.Description, e.Address)
	}
	return fmt.Sprintf("hue error %d: %s", e.Type, e.Description)
}

// pairingError wraps a type 101 bridge error so it matches both
// ErrPairingRequired and *BridgeAPIError.
type pairingError struct {
	apiErr *BridgeAPIError
}

func (e *pairingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPairingRequired, e.apiErr.Description)
}

func (e *pairingError) Is(target error) bool {
	return target == ErrPairingRequired
}

func (e *pairingError) Unwrap() error {
	return e.apiErr
}

// NetworkError reports a bridge that could not be reached in time
type NetworkError struct {
	Kind ErrorKind
	Op   string
	Host string
	Err  error
}

func (e *NetworkError) Error() string {
	what := "unreachable"
	if e.Kind == KindNetworkTimeout {
		what = "timed out"
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Host, what, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a bridge response that could not be parsed
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError converts transport failures into *NetworkError. Errors
// that are not network related, and nil, are returned unchanged.
func ClassifyNetworkError(err error, op, host string) error {
	if err == nil {
		return nil
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return err
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Kind: KindNetworkTimeout, Op: op, Host: host, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return &NetworkError{Kind: KindNetworkTimeout, Op: op, Host: host, Err: err}
		}
		return &NetworkError{Kind: KindNetworkUnreachable, Op: op, Host: host, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &NetworkError{Kind: KindNetworkUnreachable, Op: op, Host: host, Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ECONNRESET) {
		return &NetworkError{Kind: KindNetworkUnreachable, Op: op, Host: host, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		classified := ClassifyNetworkError(urlErr.Err, op, host)
		if _, ok := classified.(*NetworkError); ok {
			return classified
		}
	}

	return err
}

// KindOf maps any error onto the user-facing taxonomy
func KindOf(err error) ErrorKind {
	var (
		netErr  *NetworkError
		apiErr  *BridgeAPIError
		malErr  *MalformedResponseError
		persErr *config.PersistenceError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrConfigMissing):
		return KindConfigMissing
	case errors.Is(err, ErrPairingRequired):
		return KindPairingRequired
	case errors.As(err, &persErr):
		return KindPersistence
	case errors.As(err, &apiErr):
		return KindBridgeAPI
	case errors.As(err, &malErr):
		return KindMalformedResponse
	case errors.As(err, &netErr):
		return netErr.Kind
	default:
		return KindUnknown
	}
}

// Describe returns a short, human readable description of err
func Describe(err error) string {
	if err == nil {
		return ""
	}

	switch KindOf(err) {
	case KindConfigMissing:
		return "Bridge not configured - open settings to pair"
	case KindPairingRequired:
		return "Press the link button on the bridge and retry"
	case KindPersistence:
		var persErr *config.PersistenceError
		errors.As(err, &persErr)
		return fmt.Sprintf("Could not save settings: %v", persErr.Err)
	case KindBridgeAPI:
		var apiErr *BridgeAPIError
		errors.As(err, &apiErr)
		msg := fmt.Sprintf("Hue error %d: %s", apiErr.Type, apiErr.Description)
		if apiErr.Address != "" {
			msg += " (" + apiErr.Address + ")"
		}
		return msg
	case KindNetworkTimeout:
		return "Bridge not responding (timeout)"
	case KindNetworkUnreachable:
		return "Bridge unreachable - check network connection"
	case KindMalformedResponse:
		return "Unexpected response from bridge"
	default:
		return err.Error()
	}
}
