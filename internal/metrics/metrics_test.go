package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
			c.Add(2)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(150), c.Load())
}

func TestTimer_ObserveInto(t *testing.T) {
	var c Counter
	timer := &Timer{start: time.Now().Add(-25 * time.Millisecond)}

	d := timer.ObserveInto(&c)

	assert.GreaterOrEqual(t, d, 25*time.Millisecond)
	assert.GreaterOrEqual(t, c.Load(), uint64(25))
}

func TestPayments_Snapshot(t *testing.T) {
	p := &Payments{}
	p.WebhooksReceived.Inc()
	p.WebhooksRejected.Add(3)

	snap := p.Snapshot()
	assert.Equal(t, uint64(1), snap["webhooks_received_total"])
	assert.Equal(t, uint64(3), snap["webhooks_rejected_total"])
	assert.Equal(t, uint64(0), snap["gateway_requests_total"])
}
