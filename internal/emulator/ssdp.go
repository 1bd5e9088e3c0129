package emulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

// SSDPGroup is the multicast address bridges listen on for M-SEARCH
const SSDPGroup = "239.255.255.250:1900"

// Responder answers SSDP M-SEARCH requests on behalf of a Bridge
type Responder struct {
	// Location is the absolute URL of description.xml
	Location string
	BridgeID string
}

// ListenMulticast joins the SSDP multicast group
func ListenMulticast() (net.PacketConn, error) {
	addr, err := net.ResolveUDPAddr("udp4", SSDPGroup)
	if err != nil {
		return nil, err
	}
	return net.ListenMulticastUDP("udp4", nil, addr)
}

// Serve answers searches read from conn until ctx is cancelled
func (r *Responder) Serve(ctx context.Context, conn net.PacketConn) error {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, 2048)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}

		if !isSearch(string(buf[:n])) {
			continue
		}
		if _, err := conn.WriteTo([]byte(r.response()), src); err != nil {
			logging.Debug("SSDP reply failed", zap.String("to", src.String()), zap.Error(err))
		}
	}
}

func isSearch(msg string) bool {
	if !strings.HasPrefix(msg, "M-SEARCH") {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "urn:schemas-upnp-org:device:basic:1") ||
		strings.Contains(lower, "upnp:rootdevice") ||
		strings.Contains(lower, "ssdp:all")
}

func (r *Responder) response() string {
	id := strings.ToLower(r.BridgeID)
	return fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"HOST: %s\r\n"+
		"CACHE-CONTROL: max-age=100\r\n"+
		"EXT:\r\n"+
		"DATE: %s\r\n"+
		"LOCATION: %s\r\n"+
		"SERVER: Linux/3.14.0 UPnP/1.0 IpBridge/1.65.0\r\n"+
		"hue-bridgeid: %s\r\n"+
		"ST: urn:schemas-upnp-org:device:basic:1\r\n"+
		"USN: uuid:2f402f80-da50-11e1-9b23-%s::urn:schemas-upnp-org:device:basic:1\r\n\r\n",
		SSDPGroup, time.Now().UTC().Format(time.RFC1123), r.Location, r.BridgeID, id)
}
