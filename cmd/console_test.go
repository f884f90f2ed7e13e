package cmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
)

type consoleRun struct {
	lines chan string
	out   *syncBuffer
	done  chan error
}

func startConsole(t *testing.T) (*consoleRun, *session.Manager) {
	t.Helper()
	cfg, d := newFixture(t)
	combo := platform.KeyCombo{platform.KeyShift, "q"}
	out := &syncBuffer{}
	manager := session.NewManager(d.Provider(), newConsoleReporter(out, combo))
	c := newConsole(cfg, manager, out, combo)
	c.spinInterval = time.Millisecond

	r := &consoleRun{lines: make(chan string), out: out, done: make(chan error, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { r.done <- c.run(ctx, r.lines) }()
	return r, manager
}

func (r *consoleRun) send(t *testing.T, line string) {
	t.Helper()
	select {
	case r.lines <- line:
	case <-time.After(time.Second):
		t.Fatalf("console did not read %q", line)
	}
}

func (r *consoleRun) finish(t *testing.T) {
	t.Helper()
	select {
	case err := <-r.done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("console did not exit")
	}
}

func TestConsole_HelpUnknownQuit(t *testing.T) {
	r, _ := startConsole(t)
	r.send(t, "help")
	r.send(t, "nope")
	r.send(t, "q")
	r.finish(t)

	out := r.out.String()
	if strings.Count(out, "fight: run Fight Club") != 2 {
		t.Errorf("expected the command list twice:\n%s", out)
	}
	if !strings.Contains(out, `Unknown command "nope"`) {
		t.Errorf("missing unknown command message:\n%s", out)
	}
}

func TestConsole_EOFExits(t *testing.T) {
	r, _ := startConsole(t)
	close(r.lines)
	r.finish(t)
}

func TestConsole_TestSpinnerStoppedByEsc(t *testing.T) {
	r, manager := startConsole(t)
	r.send(t, "t")
	waitFor(t, "spinner", func() bool { return strings.Contains(r.out.String(), "Processing..") })
	if !manager.Status().Running {
		t.Error("spinner task not running")
	}
	r.send(t, "\x1b")
	r.send(t, "quit")
	r.finish(t)

	if !strings.Contains(r.out.String(), "Test looping finished!") {
		t.Errorf("missing finish line:\n%s", r.out.String())
	}
}

func TestConsole_ProfileSessionStoppedByEsc(t *testing.T) {
	r, manager := startConsole(t)
	r.send(t, "fight")
	waitFor(t, "a match", func() bool { return strings.Contains(r.out.String(), "Found!") })
	r.send(t, "\x1b")
	r.send(t, "exit")
	r.finish(t)

	out := r.out.String()
	if !contains(out, "(Fight Club) Loaded!", "(button) Found! diff(0.0000) click (24, 13)", "(Fight Club) Finished!") {
		t.Errorf("unexpected session output:\n%s", out)
	}
	if st := manager.Status(); st.Running || st.State != session.Stopped {
		t.Errorf("status after stop = %+v", st)
	}
}

func TestConsole_SecondCommandWhileRunningIsSwallowed(t *testing.T) {
	r, manager := startConsole(t)
	r.send(t, "fight")
	waitFor(t, "a match", func() bool { return strings.Contains(r.out.String(), "Found!") })
	r.send(t, "t")
	if st := manager.Status(); st.Profile != "fight" || !st.Running {
		t.Errorf("status while running = %+v", st)
	}
	r.send(t, "\x1b")
	r.send(t, "q")
	r.finish(t)
	if strings.Contains(r.out.String(), "Test looping finished!") {
		t.Error("line typed during a session was treated as a command")
	}
}

func TestConsole_LineAfterEscReachesPrompt(t *testing.T) {
	r, manager := startConsole(t)
	r.send(t, "t")
	waitFor(t, "spinner", func() bool { return strings.Contains(r.out.String(), "Processing") })
	r.send(t, "\x1b")
	r.send(t, "nope")
	waitFor(t, "unknown command", func() bool { return strings.Contains(r.out.String(), `Unknown command "nope"`) })
	if manager.Status().Running {
		t.Error("task still running after Esc")
	}
	r.send(t, "q")
	r.finish(t)
}
