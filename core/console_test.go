package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestConsoleRegisterAndDispatch(t *testing.T) {
	c := NewConsole()

	var got []string
	c.Register("echo", "echo arguments", func(args []string, out io.Writer) error {
		got = args
		return nil
	})

	var buf bytes.Buffer
	if err := c.Dispatch(`echo one "two words"`, &buf); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two words" {
		t.Errorf("args = %v, want [one, two words]", got)
	}
}

func TestConsoleUnknownCommand(t *testing.T) {
	c := NewConsole()
	if err := c.Dispatch("nope", io.Discard); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("error = %v, want ErrUnknownCommand", err)
	}
}

func TestConsoleEmptyLine(t *testing.T) {
	c := NewConsole()
	if err := c.Dispatch("   ", io.Discard); err != nil {
		t.Errorf("empty line should be ignored, got %v", err)
	}
}

func TestConsoleHelp(t *testing.T) {
	c := NewConsole()
	c.Register("time", "show current time", nil)
	c.Register("uptime", "show time since boot", nil)

	help := c.Help()
	if !strings.Contains(help, "time - show current time") {
		t.Errorf("help missing time entry:\n%s", help)
	}
	if !strings.Contains(help, "uptime") {
		t.Errorf("help missing uptime entry:\n%s", help)
	}
}

func TestTimeCommand(t *testing.T) {
	src := newFakeSource("PMT", 1000, 0, 0, 0, 0)
	s := NewSubsystem(src, nil)
	s.SelectActive()
	if err := s.InitWallClock(fakeRTC{t: time.Unix(1700000000, 0)}); err != nil {
		t.Fatalf("wall clock init: %v", err)
	}

	c := NewConsole()
	s.InstallConsoleCommands(c)

	var buf bytes.Buffer
	if err := c.Dispatch("time", &buf); err != nil {
		t.Fatalf("time command: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Time in microseconds (1700000000 sec: 0 usec)") {
		t.Errorf("missing microsecond line:\n%s", out)
	}
	if !strings.Contains(out, "Time in nanoseconds  (1700000000 sec: 0 nsec)") {
		t.Errorf("missing nanosecond line:\n%s", out)
	}
}

func TestTimeCommandSingleSnapshot(t *testing.T) {
	// The counter advances 500 ticks (500us) on every read. Both
	// printed renderings must come from one read, so the nanosecond
	// line is exactly the microsecond line at finer resolution.
	src := &tickingSource{step: 500}
	s := NewSubsystem(src, nil)
	s.SelectActive()
	if err := s.InitWallClock(fakeRTC{t: time.Unix(1700000000, 0)}); err != nil {
		t.Fatalf("wall clock init: %v", err)
	}

	c := NewConsole()
	s.InstallConsoleCommands(c)

	var buf bytes.Buffer
	if err := c.Dispatch("time", &buf); err != nil {
		t.Fatalf("time command: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Time in microseconds (1700000000 sec: 500 usec)") {
		t.Errorf("microsecond line not from the shared snapshot:\n%s", out)
	}
	if !strings.Contains(out, "Time in nanoseconds  (1700000000 sec: 500000 nsec)") {
		t.Errorf("nanosecond line not from the shared snapshot:\n%s", out)
	}
}

func TestTimeCommandNoSource(t *testing.T) {
	s := NewSubsystem(nil, nil)
	c := NewConsole()
	s.InstallConsoleCommands(c)

	if err := c.Dispatch("time", io.Discard); !errors.Is(err, ErrNoActiveSource) {
		t.Errorf("error = %v, want ErrNoActiveSource", err)
	}
}

func TestSourcesCommand(t *testing.T) {
	src := newFakeSource("PMT", 279, 0)
	s := NewSubsystem(src, nil)
	s.SelectActive()

	c := NewConsole()
	s.InstallConsoleCommands(c)

	var buf bytes.Buffer
	if err := c.Dispatch("sources", &buf); err != nil {
		t.Fatalf("sources command: %v", err)
	}
	if !strings.Contains(buf.String(), "* PMT") {
		t.Errorf("active marker missing:\n%s", buf.String())
	}
}
