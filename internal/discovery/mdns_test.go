package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "bridge with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "kiosk-3"},
				HostName:      "kiosk-3.local.",
				Port:          30080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"version=v1.0.0", "cards=/ws/cards"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 30080,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "kiosk-4"},
				Port:          8080,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 8080,
		},
		{
			name: "no port defaults",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "kiosk-5"},
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "kiosk-6"},
				Port:          30080,
			},
			wantNil: true,
		},
		{
			name: "no instance",
			entry: &zeroconf.ServiceEntry{
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.6")},
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if b != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", b)
				}
				return
			}
			if b == nil {
				t.Fatal("parseServiceEntry() = nil, want bridge")
			}
			if b.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", b.IP, tt.wantIP)
			}
			if b.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", b.Port, tt.wantPort)
			}
			if b.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"version=v1", "cards=/ws/cards", "flag", "eq=a=b"})

	want := map[string]string{"version": "v1", "cards": "/ws/cards", "flag": "", "eq": "a=b"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseTXT()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestBridgeURLs(t *testing.T) {
	b := &Bridge{Instance: "kiosk", IP: "192.168.1.10", Port: 30080}

	if got := b.BaseURL(); got != "http://192.168.1.10:30080/" {
		t.Errorf("BaseURL() = %v", got)
	}
	if got := b.CardFeedURL(); got != "ws://192.168.1.10:30080/ws/cards" {
		t.Errorf("CardFeedURL() = %v", got)
	}

	b.Metadata = map[string]string{TXTCards: "/feed"}
	if got := b.CardFeedURL(); got != "ws://192.168.1.10:30080/feed" {
		t.Errorf("CardFeedURL() with TXT = %v", got)
	}

	v6 := &Bridge{IP: "fe80::1", Port: 80}
	if got := v6.BaseURL(); got != "http://[fe80::1]:80/" {
		t.Errorf("IPv6 BaseURL() = %v", got)
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()
	if s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
}
