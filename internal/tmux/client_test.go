package tmux

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRunner records invocations and replays canned responses keyed by the
// tmux subcommand.
type fakeRunner struct {
	calls     [][]string
	responses map[string]string
	errors    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: make(map[string]string),
		errors:    make(map[string]error),
	}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	if len(args) == 0 {
		return nil, nil
	}
	sub := args[0]
	if err, ok := f.errors[sub]; ok {
		return nil, err
	}
	return []byte(f.responses[sub]), nil
}

func TestSessionExists(t *testing.T) {
	runner := newFakeRunner()
	client := NewClient(runner)

	if !client.SessionExists(context.Background(), "fleetmux") {
		t.Error("SessionExists() = false for healthy session")
	}

	runner.errors["has-session"] = errors.New("no such session")
	if client.SessionExists(context.Background(), "gone") {
		t.Error("SessionExists() = true when has-session fails")
	}
}

func TestListSessions(t *testing.T) {
	runner := newFakeRunner()
	runner.responses["list-sessions"] = "fleetmux\nscratch\n"
	client := NewClient(runner)

	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 || sessions[0] != "fleetmux" || sessions[1] != "scratch" {
		t.Errorf("ListSessions() = %v", sessions)
	}
}

func TestListSessions_NoServer(t *testing.T) {
	runner := newFakeRunner()
	runner.errors["list-sessions"] = errors.New("no server running")
	client := NewClient(runner)

	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() error = %v, want nil when server is down", err)
	}
	if len(sessions) != 0 {
		t.Errorf("ListSessions() = %v, want empty", sessions)
	}
}

func TestListPanes(t *testing.T) {
	runner := newFakeRunner()
	runner.responses["list-panes"] = "0\t1700000000\tclaude\n1\t1700000100\tbash\n2\t1700000200\tclaude\n"
	client := NewClient(runner)

	panes, err := client.ListPanes(context.Background(), "fleetmux")
	if err != nil {
		t.Fatalf("ListPanes() error = %v", err)
	}
	if len(panes) != 3 {
		t.Fatalf("len(panes) = %d, want 3", len(panes))
	}
	if panes[1].Index != 1 || panes[1].CurrentCommand != "bash" {
		t.Errorf("panes[1] = %+v", panes[1])
	}
	if !panes[0].Activity.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("panes[0].Activity = %v", panes[0].Activity)
	}
}

func TestListPanes_MalformedLine(t *testing.T) {
	runner := newFakeRunner()
	runner.responses["list-panes"] = "zero\t1700000000\tclaude\n"
	client := NewClient(runner)

	if _, err := client.ListPanes(context.Background(), "fleetmux"); err == nil {
		t.Error("ListPanes() = nil error for malformed pane index")
	}
}

func TestSendKeys(t *testing.T) {
	runner := newFakeRunner()
	client := NewClient(runner)

	if err := client.SendKeys(context.Background(), "fleetmux:0.2", "hello", KeyEnter); err != nil {
		t.Fatalf("SendKeys() error = %v", err)
	}

	last := runner.calls[len(runner.calls)-1]
	want := []string{"tmux", "send-keys", "-t", "fleetmux:0.2", "hello", "Enter"}
	if strings.Join(last, " ") != strings.Join(want, " ") {
		t.Errorf("send-keys call = %v, want %v", last, want)
	}
}

func TestCapturePane_Error(t *testing.T) {
	runner := newFakeRunner()
	runner.errors["capture-pane"] = errors.New("pane not found")
	client := NewClient(runner)

	if _, err := client.CapturePane(context.Background(), "fleetmux:0.9"); err == nil {
		t.Error("CapturePane() = nil error for missing pane")
	}
}
