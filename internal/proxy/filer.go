package proxy

import (
	"fmt"

	"github.com/google/uuid"
)

// Filer is the proxy of a file handler.
type Filer struct {
	action

	attr        FilerAttribute
	defaultMask string
	handler     FilerHandler
}

// NewFiler creates a filer registered by a module at run time.
func NewFiler(m Manager, id uuid.UUID, attr FilerAttribute, handler FilerHandler) (*Filer, error) {
	p := &Filer{attr: attr, handler: handler}
	p.initDynamic(m, id, &p.attr.ActionAttribute)

	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFilerFromClass creates a filer from a discovered class.
func NewFilerFromClass(m Manager, c *Class) (*Filer, error) {
	attr, ok := classAttribute[FilerAttribute](c)
	if !ok {
		return nil, missingAttribute(c, KindFiler)
	}

	p := &Filer{attr: attr}
	if err := p.initFromClass(m, c, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadFiler creates a filer from cache record fields.
func ReadFiler(m Manager, r *RecordReader) (*Filer, error) {
	p := &Filer{}
	if err := p.initFromCache(m, r, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}

	var err error
	if p.attr.Mask, err = r.Read("Mask"); err != nil {
		return nil, err
	}
	if p.attr.Creates, err = r.readBool("Creates"); err != nil {
		return nil, err
	}

	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Filer) init() error {
	if err := p.validateName(); err != nil {
		return err
	}

	p.defaultMask = p.attr.Mask
	value, err := loadMask(&p.action, p.defaultMask)
	if err != nil {
		return err
	}
	p.attr.Mask = value
	return nil
}

// ReloadSettings applies the stored mask again. On error the current mask
// is kept.
func (p *Filer) ReloadSettings() error {
	value, err := loadMask(&p.action, p.defaultMask)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.attr.Mask = value
	p.mu.Unlock()
	return nil
}

// Kind returns KindFiler.
func (p *Filer) Kind() Kind {
	return KindFiler
}

// Mask returns the current mask.
func (p *Filer) Mask() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr.Mask
}

// DefaultMask returns the mask declared by the module.
func (p *Filer) DefaultMask() string {
	return p.defaultMask
}

// Creates tells whether the filer can create new files.
func (p *Filer) Creates() bool {
	return p.attr.Creates
}

// Attribute returns a copy of the current attribute.
func (p *Filer) Attribute() FilerAttribute {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr
}

// SetMask persists and applies a new mask.
func (p *Filer) SetMask(value string) error {
	if err := saveMask(&p.action, value); err != nil {
		return err
	}

	p.mu.Lock()
	p.attr.Mask = value
	p.mu.Unlock()
	return nil
}

// Invoke runs the filer.
func (p *Filer) Invoke(sender any, e *FilerEventArgs) error {
	if e == nil {
		e = &FilerEventArgs{}
	}

	p.logger().Debug("Invoking filer", "key", p.Key(), "target", p.target(p.handler), "name", e.Name, "mode", e.Mode.String())
	p.invoking()

	if p.handler != nil {
		return p.handler(sender, e)
	}

	instance, err := p.GetInstance()
	if err != nil {
		return err
	}
	filer, ok := instance.(ModuleFiler)
	if !ok {
		return p.instanceError(instance, "ModuleFiler")
	}
	return filer.Invoke(sender, e)
}

// WriteCache appends the filer cache fields.
func (p *Filer) WriteCache(dst []string) []string {
	return append(p.action.WriteCache(dst), p.defaultMask, formatBool(p.attr.Creates))
}

// String returns a summary for diagnostics.
func (p *Filer) String() string {
	return fmt.Sprintf("%s Mask='%s'", p.action.String(), p.Mask())
}
