// Package command holds the daemon's control-plane commands and their
// registry.
package command

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tmplworks/tmpl/internal/logger"
)

var log = logger.ForComponent("command")

// Command is one control-plane operation.
type Command interface {
	Name() string
	Description() string
	Execute(params json.RawMessage) (any, error)
}

type Registry struct {
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

func (r *Registry) Register(cmd Command) error {
	if cmd.Name() == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	if _, exists := r.commands[cmd.Name()]; exists {
		return fmt.Errorf("command %q already registered", cmd.Name())
	}

	r.commands[cmd.Name()] = cmd
	log.Debug("registered command", "name", cmd.Name())
	return nil
}

func (r *Registry) Get(name string) (Command, error) {
	cmd, exists := r.commands[name]
	if !exists {
		return nil, NewNotFoundError(name)
	}
	return cmd, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Execute(name string, params json.RawMessage) (any, error) {
	cmd, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	result, err := cmd.Execute(params)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, NewExecutionError(name, err)
	}
	return result, nil
}
