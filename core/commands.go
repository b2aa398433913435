package core

import (
	"fmt"
	"io"
)

// InstallConsoleCommands registers the timekeeping diagnostic commands on
// a console.
func (s *Subsystem) InstallConsoleCommands(c *Console) {
	c.Register("time", "show current time (microsecond and nanosecond resolution)", s.cmdTime)
	c.Register("sources", "list registered clock sources", s.cmdSources)
	c.Register("select", "re-run clock source selection", s.cmdSelect)
	c.Register("uptime", "show time since boot", s.cmdUptime)
}

func (s *Subsystem) cmdTime(args []string, out io.Writer) error {
	// One query; both renderings show the same instant.
	ts, err := s.NowNS()
	if err != nil {
		return err
	}
	tv := ts.Timeval()

	fmt.Fprintf(out, "Time in microseconds (%d sec: %d usec)\n", tv.Sec, tv.Usec)
	fmt.Fprintf(out, "Time in nanoseconds  (%d sec: %d nsec)\n", ts.Sec, ts.Nsec)
	return nil
}

func (s *Subsystem) cmdSources(args []string, out io.Writer) error {
	active := s.Active()
	for _, src := range s.registry.Snapshot() {
		marker := " "
		if src == active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-10s bits=%d freq=%dHz resolution=%dns fixup=%dns\n",
			marker, src.Name(), src.Bits(), src.FrequencyHz(),
			src.ResolutionNS(), src.FixupPeriodNS())
	}
	if active == nil {
		fmt.Fprintln(out, "no active source")
	}
	return nil
}

func (s *Subsystem) cmdSelect(args []string, out io.Writer) error {
	winner := s.SelectActive()
	if winner == nil {
		fmt.Fprintln(out, "no source available")
		return nil
	}
	fmt.Fprintf(out, "active source: %s (resolution %dns)\n",
		winner.Name(), winner.ResolutionNS())
	return nil
}

func (s *Subsystem) cmdUptime(args []string, out io.Writer) error {
	up, err := s.UptimeNS()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "uptime: %d.%09d sec\n", up/NSPerSec, up%NSPerSec)
	return nil
}
