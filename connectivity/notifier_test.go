package connectivity

import "testing"

func TestNotifierPublishesEdges(t *testing.T) {
	n := NewNotifier(false)
	ch, cancel := n.Subscribe()
	defer cancel()

	n.Set(false)
	select {
	case v := <-ch:
		t.Fatalf("unexpected notification %v without a change", v)
	default:
	}

	n.Set(true)
	if v := <-ch; !v {
		t.Errorf("got %v, want true", v)
	}
	if !n.Online() {
		t.Error("Online() = false after Set(true)")
	}
	n.Set(true)
	select {
	case v := <-ch:
		t.Fatalf("repeated Set(true) notified %v", v)
	default:
	}
}

func TestNotifierKeepsLatest(t *testing.T) {
	n := NewNotifier(false)
	ch, cancel := n.Subscribe()
	defer cancel()

	n.Set(true)
	n.Set(false)
	n.Set(true)
	if v := <-ch; !v {
		t.Errorf("got %v, want latest state true", v)
	}
	select {
	case v := <-ch:
		t.Fatalf("stale value %v left in channel", v)
	default:
	}
}

func TestNotifierCancel(t *testing.T) {
	n := NewNotifier(true)
	ch, cancel := n.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel open after cancel")
	}
	n.Set(false)
}
