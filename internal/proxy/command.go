package proxy

import (
	"fmt"

	"github.com/google/uuid"
)

// Command is the proxy of a command action.
type Command struct {
	action

	attr          CommandAttribute
	defaultPrefix string
	handler       CommandHandler
}

// NewCommand creates a command registered by a module at run time. The
// attribute is copied; the handler is called on invocation.
func NewCommand(m Manager, id uuid.UUID, attr CommandAttribute, handler CommandHandler) (*Command, error) {
	p := &Command{attr: attr, handler: handler}
	p.initDynamic(m, id, &p.attr.ActionAttribute)

	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewCommandFromClass creates a command from a discovered class.
func NewCommandFromClass(m Manager, c *Class) (*Command, error) {
	attr, ok := classAttribute[CommandAttribute](c)
	if !ok {
		return nil, missingAttribute(c, KindCommand)
	}

	p := &Command{attr: attr}
	if err := p.initFromClass(m, c, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadCommand creates a command from cache record fields.
func ReadCommand(m Manager, r *RecordReader) (*Command, error) {
	p := &Command{}
	if err := p.initFromCache(m, r, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}

	var err error
	if p.attr.Prefix, err = r.Read("Prefix"); err != nil {
		return nil, err
	}

	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Command) init() error {
	if err := p.validateName(); err != nil {
		return err
	}
	if p.attr.Prefix == "" {
		return &ConfigurationError{Key: p.Key(), Message: "empty command prefix is not allowed"}
	}

	p.defaultPrefix = p.attr.Prefix

	prefix, err := p.loadPrefix()
	if err != nil {
		return err
	}
	p.attr.Prefix = prefix
	return nil
}

// loadPrefix returns the stored prefix, the default if none or empty.
func (p *Command) loadPrefix() (string, error) {
	prefix, err := p.settings().Load(p.Key(), "Prefix", p.defaultPrefix)
	if err != nil {
		return "", fmt.Errorf("%s: loading prefix: %w", p.Key(), err)
	}
	if prefix == "" {
		return p.defaultPrefix, nil
	}
	return prefix, nil
}

// ReloadSettings applies the stored prefix again. On error the current
// prefix is kept.
func (p *Command) ReloadSettings() error {
	prefix, err := p.loadPrefix()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.attr.Prefix = prefix
	p.mu.Unlock()
	return nil
}

// Kind returns KindCommand.
func (p *Command) Kind() Kind {
	return KindCommand
}

// Prefix returns the current prefix.
func (p *Command) Prefix() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr.Prefix
}

// DefaultPrefix returns the prefix declared by the module.
func (p *Command) DefaultPrefix() string {
	return p.defaultPrefix
}

// Attribute returns a copy of the current attribute.
func (p *Command) Attribute() CommandAttribute {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr
}

// SetPrefix persists and applies a new prefix.
func (p *Command) SetPrefix(value string) error {
	if value == "" {
		return &ArgumentError{Arg: "value", Message: "must not be empty"}
	}

	if err := p.settings().Save(p.Key(), "Prefix", value); err != nil {
		return fmt.Errorf("%s: saving prefix: %w", p.Key(), err)
	}

	p.mu.Lock()
	p.attr.Prefix = value
	p.mu.Unlock()
	return nil
}

// Invoke runs the command.
func (p *Command) Invoke(sender any, e *CommandEventArgs) error {
	if e == nil {
		e = &CommandEventArgs{}
	}

	p.logger().Debug("Invoking command", "key", p.Key(), "target", p.target(p.handler), "command", e.Command)
	p.invoking()

	if p.handler != nil {
		return p.handler(sender, e)
	}

	instance, err := p.GetInstance()
	if err != nil {
		return err
	}
	cmd, ok := instance.(ModuleCommand)
	if !ok {
		return p.instanceError(instance, "ModuleCommand")
	}
	return cmd.Invoke(sender, e)
}

// WriteCache appends the command cache fields.
func (p *Command) WriteCache(dst []string) []string {
	return append(p.action.WriteCache(dst), p.defaultPrefix)
}

// String returns a summary for diagnostics.
func (p *Command) String() string {
	return fmt.Sprintf("%s Prefix='%s'", p.action.String(), p.Prefix())
}

// classAttribute returns the class attribute if it is a T or non-nil *T.
func classAttribute[T any](c *Class) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	switch a := c.Attribute.(type) {
	case T:
		return a, true
	case *T:
		if a != nil {
			return *a, true
		}
	}
	return zero, false
}

func missingAttribute(c *Class, kind Kind) error {
	if c == nil {
		return &ConfigurationError{Message: "nil class"}
	}
	return &ConfigurationError{
		Key:     c.Name,
		Message: fmt.Sprintf("class has no required %s attribute", kind),
	}
}
