package core

import (
	"errors"
	"io"
	"sync"

	"github.com/google/shlex"
)

// ConsoleHandler handles one diagnostic command. The handler decodes its
// own arguments from args and writes human-readable output to out.
type ConsoleHandler func(args []string, out io.Writer) error

// ConsoleCommand is a registered diagnostic command.
type ConsoleCommand struct {
	Name    string
	Help    string
	Handler ConsoleHandler
}

// ErrUnknownCommand is returned by Dispatch for an unregistered name.
var ErrUnknownCommand = errors.New("unknown command")

// Console holds the diagnostic command registry. The REPL loop and
// formatting live in the daemon; core only dispatches.
type Console struct {
	mu       sync.RWMutex
	commands map[string]*ConsoleCommand
	order    []string
}

// NewConsole creates an empty console registry.
func NewConsole() *Console {
	return &Console{commands: make(map[string]*ConsoleCommand)}
}

// Register adds a command. Re-registering a name replaces the handler.
func (c *Console) Register(name, help string, handler ConsoleHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.commands[name]; !exists {
		c.order = append(c.order, name)
	}
	c.commands[name] = &ConsoleCommand{Name: name, Help: help, Handler: handler}
}

// Lookup retrieves a command by name.
func (c *Console) Lookup(name string) (*ConsoleCommand, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cmd, ok := c.commands[name]
	return cmd, ok
}

// Count returns the number of registered commands.
func (c *Console) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.commands)
}

// Dispatch splits a command line and runs the matching handler. Empty
// lines are ignored.
func (c *Console) Dispatch(line string, out io.Writer) error {
	fields, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := c.Lookup(fields[0])
	if !ok {
		return ErrUnknownCommand
	}
	return cmd.Handler(fields[1:], out)
}

// Help returns one line per command in registration order.
func (c *Console) Help() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	help := ""
	for _, name := range c.order {
		cmd := c.commands[name]
		help += cmd.Name
		if cmd.Help != "" {
			help += " - " + cmd.Help
		}
		help += "\n"
	}
	return help
}
