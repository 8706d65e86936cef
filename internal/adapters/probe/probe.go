package probe

import (
	"context"
	"net"
	"net/url"
	"time"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

// TCP is a pre-flight reachability check: a raw connect to the API host.
// It is a signal only, never a substitute for handling request-time failures.
type TCP struct {
	addr    string
	timeout time.Duration
}

const DefaultTimeout = 2000 * time.Millisecond

// New derives host:port from an API base URL. Missing ports default by scheme.
func New(baseURL string, timeout time.Duration) (*TCP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return &TCP{addr: net.JoinHostPort(host, port), timeout: timeout}, nil
}

func (p *TCP) Reachable(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		observability.ObserveProbe(false)
		return false
	}
	_ = conn.Close()
	observability.ObserveProbe(true)
	return true
}

// Always reports the host reachable; used where no pre-flight check is wanted.
type Always struct{}

func (Always) Reachable(ctx context.Context) bool { return true }

var (
	_ domain.Prober = (*TCP)(nil)
	_ domain.Prober = Always{}
)
