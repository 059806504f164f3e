package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveInto adds the elapsed milliseconds to c and returns the duration.
func (t *Timer) ObserveInto(c *Counter) time.Duration {
	d := t.Duration()
	c.Add(uint64(d.Milliseconds()))
	return d
}

// Payments holds the counters reported by the gateway client and the
// webhook receiver.
type Payments struct {
	GatewayRequests Counter
	GatewayFailures Counter
	GatewayMillis   Counter

	WebhooksReceived  Counter
	WebhooksRejected  Counter
	WebhooksDuplicate Counter
	WebhooksIgnored   Counter
	WebhooksFailed    Counter

	NotificationsSent    Counter
	NotificationsFailed  Counter
	NotificationsDropped Counter
}

// Default is the process-wide registry.
var Default = &Payments{}

func (p *Payments) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"gateway_requests_total":      p.GatewayRequests.Load(),
		"gateway_failures_total":      p.GatewayFailures.Load(),
		"gateway_latency_ms_total":    p.GatewayMillis.Load(),
		"webhooks_received_total":     p.WebhooksReceived.Load(),
		"webhooks_rejected_total":     p.WebhooksRejected.Load(),
		"webhooks_duplicate_total":    p.WebhooksDuplicate.Load(),
		"webhooks_ignored_total":      p.WebhooksIgnored.Load(),
		"webhooks_failed_total":       p.WebhooksFailed.Load(),
		"notifications_sent_total":    p.NotificationsSent.Load(),
		"notifications_failed_total":  p.NotificationsFailed.Load(),
		"notifications_dropped_total": p.NotificationsDropped.Load(),
	}
}
