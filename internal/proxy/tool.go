package proxy

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Hotkey memo values. HotkeyUnset means the hotkey is not loaded yet and
// HotkeyBlank means it is loaded and empty.
const (
	HotkeyUnset rune = 0
	HotkeyBlank rune = ' '
)

// Tool is the proxy of a menu tool.
type Tool struct {
	action

	attr    ToolAttribute
	handler ToolHandler
	hotkey  rune
}

// NewTool creates a tool registered by a module at run time.
func NewTool(m Manager, id uuid.UUID, attr ToolAttribute, handler ToolHandler) (*Tool, error) {
	p := &Tool{attr: attr, handler: handler}
	p.initDynamic(m, id, &p.attr.ActionAttribute)

	if err := p.validateName(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewToolFromClass creates a tool from a discovered class.
func NewToolFromClass(m Manager, c *Class) (*Tool, error) {
	attr, ok := classAttribute[ToolAttribute](c)
	if !ok {
		return nil, missingAttribute(c, KindTool)
	}

	p := &Tool{attr: attr}
	if err := p.initFromClass(m, c, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadTool creates a tool from cache record fields.
func ReadTool(m Manager, r *RecordReader) (*Tool, error) {
	p := &Tool{}
	if err := p.initFromCache(m, r, &p.attr.ActionAttribute); err != nil {
		return nil, err
	}

	options, err := r.readInt("Options")
	if err != nil {
		return nil, err
	}
	p.attr.Options = ToolOptions(options)

	if err := p.validateName(); err != nil {
		return nil, err
	}
	return p, nil
}

// Kind returns KindTool.
func (p *Tool) Kind() Kind {
	return KindTool
}

// Options returns the places where the tool is shown.
func (p *Tool) Options() ToolOptions {
	return p.attr.Options
}

// Attribute returns a copy of the attribute.
func (p *Tool) Attribute() ToolAttribute {
	return p.attr
}

// HotkeyChar returns the hotkey, loading it from settings on first use.
// It returns HotkeyBlank if no hotkey is set.
func (p *Tool) HotkeyChar() rune {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hotkey != HotkeyUnset {
		return p.hotkey
	}

	value, err := p.settings().Load(p.Key(), "Hotkey", "")
	if err != nil {
		p.logger().Warn("Cannot load hotkey", "key", p.Key(), "error", err)
		return HotkeyBlank
	}

	p.hotkey = HotkeyBlank
	value = strings.TrimLeftFunc(value, unicode.IsSpace)
	if r, _ := utf8.DecodeRuneInString(value); value != "" && r != utf8.RuneError {
		p.hotkey = r
	}
	return p.hotkey
}

// HotkeyText returns the hotkey as a string, "" if no hotkey is set.
func (p *Tool) HotkeyText() string {
	r := p.HotkeyChar()
	if r == HotkeyBlank {
		return ""
	}
	return string(r)
}

// SetHotkey persists and applies a hotkey. Leading blanks are skipped and
// only the first remaining character is used. A blank value removes the
// hotkey.
func (p *Tool) SetHotkey(value string) error {
	if !utf8.ValidString(value) {
		return &ArgumentError{Arg: "value", Message: "hotkey is not valid UTF-8"}
	}

	hotkey := HotkeyBlank
	if v := strings.TrimLeftFunc(value, unicode.IsSpace); v != "" {
		hotkey, _ = utf8.DecodeRuneInString(v)
	}

	stored := ""
	if hotkey != HotkeyBlank {
		stored = string(hotkey)
	}
	if err := p.settings().Save(p.Key(), "Hotkey", stored); err != nil {
		return fmt.Errorf("%s: saving hotkey: %w", p.Key(), err)
	}

	p.mu.Lock()
	p.hotkey = hotkey
	p.mu.Unlock()
	return nil
}

// ReloadSettings forgets the memoized hotkey so the next HotkeyChar reads
// the store again.
func (p *Tool) ReloadSettings() error {
	p.mu.Lock()
	p.hotkey = HotkeyUnset
	p.mu.Unlock()
	return nil
}

// GetMenuText returns the menu item text: the hotkey marker followed by
// the name.
func (p *Tool) GetMenuText() string {
	return "&" + string(p.HotkeyChar()) + " " + p.Name()
}

// Invoke runs the tool.
func (p *Tool) Invoke(sender any, e *ToolEventArgs) error {
	if e == nil {
		e = &ToolEventArgs{}
	}

	p.logger().Debug("Invoking tool", "key", p.Key(), "target", p.target(p.handler), "from", e.From.String())
	p.invoking()

	if p.handler != nil {
		return p.handler(sender, e)
	}

	instance, err := p.GetInstance()
	if err != nil {
		return err
	}
	tool, ok := instance.(ModuleTool)
	if !ok {
		return p.instanceError(instance, "ModuleTool")
	}
	return tool.Invoke(sender, e)
}

// WriteCache appends the tool cache fields.
func (p *Tool) WriteCache(dst []string) []string {
	return append(p.action.WriteCache(dst), fmt.Sprint(int(p.attr.Options)))
}

// String returns a summary for diagnostics.
func (p *Tool) String() string {
	return fmt.Sprintf("%s Options='%s'", p.action.String(), p.attr.Options)
}
