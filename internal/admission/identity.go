package admission

import (
	"net"
	"net/http"
	"strings"
)

// ForwardedForHeader 는 프록시가 원 클라이언트 주소를 전달하는 헤더다.
const ForwardedForHeader = "X-Forwarded-For"

// UnknownIdentity 는 주소를 알 수 없을 때의 식별자다.
const UnknownIdentity = "unknown"

// IdentityFromRequest 는 요청에서 클라이언트 식별자를 만든다.
func IdentityFromRequest(r *http.Request) string {
	if r == nil {
		return UnknownIdentity
	}
	return ClientIdentity(r.Header.Get(ForwardedForHeader), r.RemoteAddr)
}

// ClientIdentity 는 X-Forwarded-For 의 첫 항목, 없으면 원격 주소의 호스트를 사용한다.
// NAT/프록시 뒤의 클라이언트는 하나로 합쳐질 수 있다.
func ClientIdentity(forwardedFor string, remoteAddr string) string {
	if forwardedFor = strings.TrimSpace(forwardedFor); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return UnknownIdentity
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		if host == "" {
			return UnknownIdentity
		}
		return host
	}
	return remoteAddr
}
