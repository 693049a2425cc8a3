package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Kensan196948G/fleetmux/internal/tmux"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// fakeHost scripts pane state and records every send-keys invocation.
type fakeHost struct {
	panes       []tmux.Pane
	paneContent string
	captureErr  error
	sendErr     error
	sent        [][]string
	probes      int
}

func (f *fakeHost) SendKeys(ctx context.Context, target string, keys ...string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]string{target}, keys...))
	return nil
}

func (f *fakeHost) CapturePane(ctx context.Context, target string) (string, error) {
	f.probes++
	if f.captureErr != nil {
		return "", f.captureErr
	}
	return f.paneContent, nil
}

func (f *fakeHost) ListPanes(ctx context.Context, session string) ([]tmux.Pane, error) {
	return f.panes, nil
}

func readyHost() *fakeHost {
	return &fakeHost{
		panes:       []tmux.Pane{{Index: 0}, {Index: 1}, {Index: 2}},
		paneContent: "some output\n> ",
	}
}

// noSleep replaces pacing waits and counts them.
func noSleep(counter *int) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*counter++
		return ctx.Err()
	}
}

func newTestDeliverer(host *fakeHost) (*Deliverer, *int) {
	d := NewDeliverer(host, NormalPacing(), InstantPacing())
	sleeps := 0
	d.SetSleeper(noSleep(&sleeps))
	return d, &sleeps
}

func TestDeliver_NormalSequence(t *testing.T) {
	host := readyHost()
	d, _ := newTestDeliverer(host)
	addr := models.Address{Session: "fleetmux", Pane: 2}

	if err := d.Deliver(context.Background(), addr, "begin phase 2", models.ModeNormal); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	want := [][]string{
		{"fleetmux:0.2", tmux.KeyInterrupt},
		{"fleetmux:0.2", tmux.KeyClearLine},
		{"fleetmux:0.2", "begin phase 2", tmux.KeyEnter},
		{"fleetmux:0.2", tmux.KeyClearLine},
	}
	if len(host.sent) != len(want) {
		t.Fatalf("sent %d key batches, want %d: %v", len(host.sent), len(want), host.sent)
	}
	for i := range want {
		if strings.Join(host.sent[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("batch %d = %v, want %v", i, host.sent[i], want[i])
		}
	}
}

func TestDeliver_InstantSkipsTrailingClear(t *testing.T) {
	host := readyHost()
	d, _ := newTestDeliverer(host)
	addr := models.Address{Session: "fleetmux", Pane: 1}

	if err := d.Deliver(context.Background(), addr, "evacuate", models.ModeInstant); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	last := host.sent[len(host.sent)-1]
	if last[len(last)-1] == tmux.KeyClearLine {
		t.Error("instant mode issued the trailing input clear")
	}
}

func TestDeliver_MultiLine(t *testing.T) {
	host := readyHost()
	d, _ := newTestDeliverer(host)
	addr := models.Address{Session: "fleetmux", Pane: 0}

	if err := d.Deliver(context.Background(), addr, "line one\nline two\nline three", models.ModeNormal); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var lines int
	for _, batch := range host.sent {
		if len(batch) == 3 && batch[2] == tmux.KeyEnter {
			lines++
		}
	}
	if lines != 3 {
		t.Errorf("submitted %d lines, want 3", lines)
	}
}

func TestDeliver_MissingPane(t *testing.T) {
	host := readyHost()
	d, _ := newTestDeliverer(host)
	addr := models.Address{Session: "fleetmux", Pane: 9}

	err := d.Deliver(context.Background(), addr, "hello", models.ModeNormal)
	if !errors.Is(err, ErrTargetUnavailable) {
		t.Errorf("Deliver() error = %v, want ErrTargetUnavailable", err)
	}
	if len(host.sent) != 0 {
		t.Errorf("keys were sent to a missing pane: %v", host.sent)
	}
}

func TestProbeReady(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"agent prompt", "thinking...\n> ", true},
		{"indented agent prompt", "  > type here", true},
		{"idle shell dollar", "user@host:~$", true},
		{"idle shell hash", "root@host:/#", true},
		{"busy pane", "compiling module 3 of 7...", false},
		{"empty pane", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := readyHost()
			host.paneContent = tt.content
			d, _ := newTestDeliverer(host)
			addr := models.Address{Session: "fleetmux", Pane: 1}
			if got := d.ProbeReady(context.Background(), addr); got != tt.want {
				t.Errorf("ProbeReady() = %v, want %v for %q", got, tt.want, tt.content)
			}
		})
	}
}

func TestProbeReady_CaptureError(t *testing.T) {
	host := readyHost()
	host.captureErr = errors.New("pane gone")
	d, _ := newTestDeliverer(host)
	if d.ProbeReady(context.Background(), models.Address{Session: "fleetmux", Pane: 1}) {
		t.Error("ProbeReady() = true when capture fails")
	}
}

func TestDeliverWithRetry_ExhaustsAttempts(t *testing.T) {
	// A target that never becomes ready gets exactly MaxAttempts probes and
	// then ErrDeliveryExhausted.
	host := readyHost()
	host.paneContent = "still working..."
	d, _ := newTestDeliverer(host)
	sender := NewSender(d, RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second})

	retries, err := sender.DeliverWithRetry(context.Background(), models.Address{Session: "fleetmux", Pane: 2}, "hi", models.ModeNormal)
	if !errors.Is(err, ErrDeliveryExhausted) {
		t.Fatalf("DeliverWithRetry() error = %v, want ErrDeliveryExhausted", err)
	}
	if host.probes != 3 {
		t.Errorf("probes = %d, want exactly 3", host.probes)
	}
	if retries != 2 {
		t.Errorf("retries = %d, want 2", retries)
	}
	if len(host.sent) != 0 {
		t.Errorf("keys sent to a never-ready target: %v", host.sent)
	}
}

func TestDeliverWithRetry_RecoversOnSecondAttempt(t *testing.T) {
	host := readyHost()
	host.paneContent = "busy"
	d, _ := newTestDeliverer(host)
	// Flip the pane to ready after the first probe.
	d.SetSleeper(func(ctx context.Context, dur time.Duration) error {
		host.paneContent = "> "
		return nil
	})
	sender := NewSender(d, RetryPolicy{MaxAttempts: 3, Delay: time.Second})

	retries, err := sender.DeliverWithRetry(context.Background(), models.Address{Session: "fleetmux", Pane: 1}, "hi", models.ModeNormal)
	if err != nil {
		t.Fatalf("DeliverWithRetry() error = %v", err)
	}
	if retries != 1 {
		t.Errorf("retries = %d, want 1", retries)
	}
	if len(host.sent) == 0 {
		t.Error("no keys sent after recovery")
	}
}

func TestDeliverWithRetry_ContextCanceled(t *testing.T) {
	host := readyHost()
	host.paneContent = "busy"
	d := NewDeliverer(host, NormalPacing(), InstantPacing())
	// Real ctxSleep so cancellation is exercised.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := NewSender(d, RetryPolicy{MaxAttempts: 3, Delay: 50 * time.Millisecond})
	_, err := sender.DeliverWithRetry(ctx, models.Address{Session: "fleetmux", Pane: 1}, "hi", models.ModeNormal)
	if err == nil {
		t.Fatal("DeliverWithRetry() error = nil with canceled context")
	}
	if host.probes > 1 {
		t.Errorf("probes = %d after cancellation, want at most 1", host.probes)
	}
}

func TestNewSender_ZeroPolicyDefaults(t *testing.T) {
	d, _ := newTestDeliverer(readyHost())
	sender := NewSender(d, RetryPolicy{})
	if sender.policy.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want default 3", sender.policy.MaxAttempts)
	}
}

func TestDeliver_SendError(t *testing.T) {
	host := readyHost()
	host.sendErr = fmt.Errorf("server exited")
	d, _ := newTestDeliverer(host)

	err := d.Deliver(context.Background(), models.Address{Session: "fleetmux", Pane: 1}, "hi", models.ModeNormal)
	if err == nil {
		t.Error("Deliver() error = nil when send-keys fails")
	}
}
