package main

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: defaultAddr},
		{in: "garbage", want: defaultAddr},
		{in: "0.0.0.0:9000", want: "127.0.0.1:9000"},
		{in: ":4000", want: "127.0.0.1:4000"},
		{in: "[::]:4000", want: "127.0.0.1:4000"},
		{in: "10.1.2.3:4000", want: "10.1.2.3:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.in))
		})
	}
}

func TestCheck(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	addr := srv.Listener.Addr().(*net.TCPAddr)
	t.Setenv("VPSMON_LISTEN_ADDR", addr.String())

	assert.Equal(t, 0, check())

	status.Store(http.StatusServiceUnavailable)
	assert.Equal(t, 1, check())
}
