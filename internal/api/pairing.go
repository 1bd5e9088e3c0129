package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

// maxDeviceTypeLen is the bridge's limit on the devicetype field
const maxDeviceTypeLen = 40

type pairingRequest struct {
	DeviceType string `json:"devicetype"`
}

type pairingResponse struct {
	Success *struct {
		Username string `json:"username"`
	} `json:"success"`
}

// DefaultDeviceType returns the identifier sent when pairing,
// "hue-panel#<hostname>".
func DefaultDeviceType() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "terminal"
	}
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	deviceType := "hue-panel#" + host
	if len(deviceType) > maxDeviceTypeLen {
		deviceType = deviceType[:maxDeviceTypeLen]
	}
	return deviceType
}

// CreateUser asks the bridge at bridgeIP for a new credential. It fails with
// an error matching ErrPairingRequired when the link button has not been
// pressed; callers decide whether to retry.
func (c *Client) CreateUser(ctx context.Context, bridgeIP, deviceType string) (string, error) {
	bridgeIP = strings.TrimSpace(bridgeIP)
	if bridgeIP == "" {
		return "", fmt.Errorf("%w: bridge address is required", ErrConfigMissing)
	}
	if deviceType == "" {
		deviceType = DefaultDeviceType()
	}

	url := fmt.Sprintf("%s://%s/api", c.scheme, bridgeIP)
	status, body, err := c.doRequest(ctx, http.MethodPost, url, bridgeIP, pairingRequest{DeviceType: deviceType})
	if err != nil {
		return "", fmt.Errorf("failed to pair with bridge: %w", err)
	}

	responses, err := decode[[]pairingResponse]("/api", status, body)
	if err != nil {
		var apiErr *BridgeAPIError
		if errors.As(err, &apiErr) && apiErr.Type == errTypeLinkButton {
			return "", &pairingError{apiErr: apiErr}
		}
		return "", fmt.Errorf("failed to pair with bridge: %w", err)
	}

	for _, r := range responses {
		if r.Success != nil && r.Success.Username != "" {
			logging.Info("Paired with bridge", zap.String("bridge_ip", bridgeIP))
			return r.Success.Username, nil
		}
	}
	return "", &MalformedResponseError{Endpoint: "/api", Err: errors.New("no username in pairing response")}
}
