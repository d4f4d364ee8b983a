// Package connectivity tracks whether the device is online and publishes
// offline-to-online transitions.
package connectivity

import "sync"

// Source publishes connectivity changes.
type Source interface {
	// Online reports the current state.
	Online() bool
	// Subscribe returns a channel receiving the new state on each change and a
	// cancel func that closes it.
	Subscribe() (<-chan bool, func())
}

// Notifier is a Source driven by Set. Only edges are published.
type Notifier struct {
	mu     sync.Mutex
	online bool
	subs   map[int]chan bool
	next   int
}

var _ Source = (*Notifier)(nil)

// NewNotifier creates a notifier in the given initial state.
func NewNotifier(online bool) *Notifier {
	return &Notifier{online: online, subs: make(map[int]chan bool)}
}

func (n *Notifier) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

// Set records the current state and notifies subscribers when it changed.
// A subscriber that has not drained its previous value sees only the latest.
func (n *Notifier) Set(online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.online == online {
		return
	}
	n.online = online
	for _, ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		ch <- online
	}
}

func (n *Notifier) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}
