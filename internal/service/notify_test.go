package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/contactbook/backend/pkg/mail"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mail.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestDispatcher(sender mail.Sender, rdb *fakeCacheClient) *Dispatcher {
	cfg := DispatcherConfig{QueueSize: 8, Workers: 1}
	if rdb == nil {
		return NewDispatcher(cfg, sender, newTestTokenService(), nil, "Contacts API")
	}
	return NewDispatcher(cfg, sender, newTestTokenService(), rdb, "Contacts API")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcherDeliversConfirmation(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, nil)
	d.Start()
	defer d.Stop()

	d.EnqueueConfirmation("ann@example.com", "ann", "http://localhost:8000/")

	waitFor(t, func() bool { return len(sender.messages()) == 1 })

	msg := sender.messages()[0]
	if msg.To != "ann@example.com" {
		t.Errorf("wrong recipient: %s", msg.To)
	}
	if msg.Template != mail.TemplateConfirmEmail {
		t.Errorf("wrong template: %s", msg.Template)
	}
	token, _ := msg.Data["Token"].(string)
	if token == "" {
		t.Fatal("confirmation mail must carry a token")
	}

	// The embedded token must confirm the same address
	email, err := newTestTokenService().EmailFromToken(token)
	if err != nil {
		t.Fatalf("token in mail does not decode: %v", err)
	}
	if email != "ann@example.com" {
		t.Errorf("token bound to wrong email: %s", email)
	}
}

func TestDispatcherDeliversResetToken(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, nil)
	d.Start()
	defer d.Stop()

	d.EnqueueResetPassword("ann@example.com", "ann", "http://localhost:8000/", "reset-token-123")

	waitFor(t, func() bool { return len(sender.messages()) == 1 })

	msg := sender.messages()[0]
	if msg.Template != mail.TemplateResetPassword {
		t.Errorf("wrong template: %s", msg.Template)
	}
	if msg.Data["Token"] != "reset-token-123" {
		t.Errorf("reset mail must carry the issued token, got %v", msg.Data["Token"])
	}
}

func TestDispatcherSuppressesDuplicates(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, newFakeCacheClient())
	d.Start()

	d.EnqueueConfirmation("ann@example.com", "ann", "")
	d.EnqueueConfirmation("ann@example.com", "ann", "")
	d.EnqueueConfirmation("bob@example.com", "bob", "")

	d.Stop() // drains the queue

	got := sender.messages()
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries after dedup, got %d", len(got))
	}
	recipients := map[string]bool{}
	for _, m := range got {
		recipients[m.To] = true
	}
	if !recipients["ann@example.com"] || !recipients["bob@example.com"] {
		t.Errorf("unexpected recipients: %v", recipients)
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{QueueSize: 1, Workers: 1}, &fakeSender{}, newTestTokenService(), nil, "Contacts API")

	// Not started: nothing drains the queue, so the second enqueue must
	// drop instead of blocking
	done := make(chan struct{})
	go func() {
		d.EnqueueConfirmation("a@example.com", "a", "")
		d.EnqueueConfirmation("b@example.com", "b", "")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}

func TestDispatcherEnqueueAfterStop(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, nil)
	d.Start()
	d.Stop()

	// A request racing shutdown must drop its mail, not panic
	d.EnqueueConfirmation("ann@example.com", "ann", "")

	if got := sender.messages(); len(got) != 0 {
		t.Errorf("no mail should be delivered after stop, got %d", len(got))
	}
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, nil)
	d.Start()
	d.Start()
	d.Stop()
	d.Stop()
}
