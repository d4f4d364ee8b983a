package delivery

import "time"

// Backoff computes exponential delays between delivery attempts.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff yields 1s, 2s, 4s, 8s, 16s and then 30s.
var DefaultBackoff = Backoff{Base: time.Second, Max: 30 * time.Second}

// Delay returns the wait before retry attempt n, counting from 1.
func (b Backoff) Delay(n int) time.Duration {
	if n < 1 || b.Base <= 0 {
		return 0
	}
	d := b.Base
	for i := 1; i < n; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}
