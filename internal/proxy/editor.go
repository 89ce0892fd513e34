package proxy

import (
	"fmt"

	"github.com/dshills/modhost/internal/mask"
)

// Editor is the proxy of an editor hook. Editor hooks are always
// implemented by classes.
type Editor struct {
	action

	attr        EditorAttribute
	defaultMask string
}

// NewEditorFromClass creates an editor hook from a discovered class.
func NewEditorFromClass(m Manager, c *Class) (*Editor, error) {
	attr, ok := classAttribute[EditorAttribute](c)
	if !ok {
		return nil, missingAttribute(c, KindEditor)
	}

	p := &Editor{attr: attr}
	if err := p.initFromClass(m, c, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadEditor creates an editor hook from cache record fields.
func ReadEditor(m Manager, r *RecordReader) (*Editor, error) {
	p := &Editor{}
	if err := p.initFromCache(m, r, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}

	var err error
	if p.attr.Mask, err = r.Read("Mask"); err != nil {
		return nil, err
	}

	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Editor) init() error {
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
func (p *Editor) ReloadSettings() error {
	value, err := loadMask(&p.action, p.defaultMask)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.attr.Mask = value
	p.mu.Unlock()
	return nil
}

// Kind returns KindEditor.
func (p *Editor) Kind() Kind {
	return KindEditor
}

// Mask returns the current mask.
func (p *Editor) Mask() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr.Mask
}

// DefaultMask returns the mask declared by the module.
func (p *Editor) DefaultMask() string {
	return p.defaultMask
}

// Attribute returns a copy of the current attribute.
func (p *Editor) Attribute() EditorAttribute {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr
}

// SetMask persists and applies a new mask. Empty masks match all files.
func (p *Editor) SetMask(value string) error {
	if err := saveMask(&p.action, value); err != nil {
		return err
	}

	p.mu.Lock()
	p.attr.Mask = value
	p.mu.Unlock()
	return nil
}

// Invoke runs the editor hook for an opened editor.
func (p *Editor) Invoke(editor EditorHandle, e *EditorEventArgs) error {
	if e == nil {
		e = &EditorEventArgs{}
	}

	var fileName string
	if editor != nil {
		fileName = editor.FileName()
	}

	p.logger().Debug("Invoking editor", "key", p.Key(), "target", p.ClassName(), "file", fileName)
	p.invoking()

	instance, err := p.GetInstance()
	if err != nil {
		return err
	}
	hook, ok := instance.(ModuleEditor)
	if !ok {
		return p.instanceError(instance, "ModuleEditor")
	}
	return hook.Invoke(editor, e)
}

// WriteCache appends the editor cache fields.
func (p *Editor) WriteCache(dst []string) []string {
	return append(p.action.WriteCache(dst), p.defaultMask)
}

// String returns a summary for diagnostics.
func (p *Editor) String() string {
	return fmt.Sprintf("%s Mask='%s'", p.action.String(), p.Mask())
}

// loadMask returns the stored mask of an editor or filer, def if none.
func loadMask(a *action, def string) (string, error) {
	value, err := a.settings().Load(a.Key(), "Mask", def)
	if err != nil {
		return "", fmt.Errorf("%s: loading mask: %w", a.Key(), err)
	}
	return value, nil
}

// saveMask validates and persists a mask of an editor or filer.
func saveMask(a *action, value string) error {
	if err := mask.Validate(value); err != nil {
		return &ArgumentError{Arg: "value", Message: "invalid mask", Err: err}
	}
	if err := a.settings().Save(a.Key(), "Mask", value); err != nil {
		return fmt.Errorf("%s: saving mask: %w", a.Key(), err)
	}
	return nil
}
