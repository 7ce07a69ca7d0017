package admission

import (
	"net/http/httptest"
	"testing"
)

func TestClientIdentity(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		remote    string
		want      string
	}{
		{"first forwarded entry", "1.2.3.4, 10.0.0.1", "127.0.0.1:5000", "1.2.3.4"},
		{"trimmed forwarded", "  5.6.7.8 ", "", "5.6.7.8"},
		{"remote host", "", "192.168.1.10:4444", "192.168.1.10"},
		{"ipv6 remote", "", "[::1]:8080", "::1"},
		{"remote without port", "", "10.1.1.1", "10.1.1.1"},
		{"empty forwarded entry falls back", " , 9.9.9.9", "1.1.1.1:1", "1.1.1.1"},
		{"nothing", "", "", UnknownIdentity},
	}

	for _, tc := range cases {
		if got := ClientIdentity(tc.forwarded, tc.remote); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestIdentityFromRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/chat-stream", nil)
	req.Header.Set(ForwardedForHeader, "3.3.3.3")
	if got := IdentityFromRequest(req); got != "3.3.3.3" {
		t.Fatalf("unexpected identity: %s", got)
	}
	if IdentityFromRequest(nil) != UnknownIdentity {
		t.Fatalf("expected unknown identity for nil request")
	}
}
