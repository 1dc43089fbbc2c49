// Package kafka holds broker-level helpers shared by the producer and the
// readiness probe.
package kafka

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// HealthChecker checks that at least one broker accepts TCP connections.
type HealthChecker struct {
	brokers string
	timeout time.Duration
}

func NewHealthChecker(brokers string) *HealthChecker {
	return &HealthChecker{brokers: brokers, timeout: 2 * time.Second}
}

func (h *HealthChecker) Name() string {
	return "kafka"
}

func (h *HealthChecker) Check(ctx context.Context) error {
	var lastErr error
	for _, broker := range strings.Split(h.brokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker == "" {
			continue
		}
		dialer := net.Dialer{Timeout: h.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
	}
	return fmt.Errorf("kafka brokers not configured")
}
