package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge is a tapauth bridge seen on the network
type Bridge struct {
	// Instance is the advertised service instance name
	Instance string

	// Hostname is the mDNS hostname (e.g., "kiosk-3.local.")
	Hostname string

	IP   string
	Port int

	// Metadata holds the TXT record key/value pairs
	Metadata map[string]string

	DiscoveredAt time.Time
}

func (b *Bridge) String() string {
	return fmt.Sprintf("tapauth bridge %q (%s) at %s", b.Instance, b.Hostname, b.hostPort())
}

// BaseURL returns the bridge's HTTP endpoint, the greeter's directory URL
func (b *Bridge) BaseURL() string {
	return fmt.Sprintf("http://%s/", b.hostPort())
}

// CardFeedURL returns the websocket URL streaming card events
func (b *Bridge) CardFeedURL() string {
	path := b.GetMetadata(TXTCards)
	if path == "" {
		path = DefaultCardsPath
	}
	return fmt.Sprintf("ws://%s%s", b.hostPort(), path)
}

// GetMetadata returns a TXT value, or "" when absent
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

func (b *Bridge) hostPort() string {
	return net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}
