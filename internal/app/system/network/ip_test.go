package network

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.0.2.10:54321", nil, "192.0.2.10"},
		{"remote addr ipv6", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"remote addr without port", "192.0.2.10", nil, "192.0.2.10"},
		{"forwarded single", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"forwarded chain", "10.0.0.1:80", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.2"}, "203.0.113.5"},
		{"forwarded wins over real ip", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.7"}, "203.0.113.5"},
		{"real ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"garbage forwarded falls through", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "contact:anything"}, "10.0.0.1"},
		{"garbage real ip falls through", "10.0.0.1:80", map[string]string{"X-Real-IP": "not-an-ip"}, "10.0.0.1"},
		{"canonical ipv6", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "2001:DB8:0:0:0:0:0:1"}, "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
