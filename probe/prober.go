// Package probe measures round-trip latency to every catalog target
// concurrently and selects the fastest configured profile.
package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/dagrha/piactl/common"
)

// Prober sends echo requests to a single target and returns the
// round-trip times of the replies that arrived.
type Prober interface {
	Probe(ctx context.Context, target string, count int) ([]time.Duration, error)
}

// PingProber probes targets with ICMP echo requests.
//
// Unprivileged UDP ping is used by default so the probe commands work
// without root (subject to the net.ipv4.ping_group_range sysctl).
type PingProber struct {
	// Timeout bounds the whole probe, all echoes included.
	Timeout time.Duration
	// Privileged switches to raw-socket ICMP, which requires root or
	// CAP_NET_RAW.
	Privileged bool
}

// NewPingProber creates a prober with the given per-probe timeout.
func NewPingProber(timeout time.Duration) *PingProber {
	if timeout <= 0 {
		timeout = common.ProbeTimeout
	}
	return &PingProber{Timeout: timeout}
}

// Probe implements Prober.
func (p *PingProber) Probe(ctx context.Context, target string, count int) ([]time.Duration, error) {
	pinger, err := probing.NewPinger(target)
	if err != nil {
		return nil, common.WrapError(common.ErrProbeUnreachable, err.Error())
	}
	pinger.Count = count
	pinger.Timeout = p.Timeout
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return nil, common.WrapError(common.ErrProbeUnreachable, err.Error())
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return nil, common.WrapError(common.ErrProbeUnreachable, "no echo replies")
	}
	return stats.Rtts, nil
}
