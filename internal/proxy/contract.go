package proxy

import (
	"log/slog"

	"github.com/google/uuid"
)

// Settings is the persisted user settings store. Values are keyed by the
// action key and a setting name and must round-trip verbatim.
type Settings interface {
	// Load returns the stored value or def if nothing is stored.
	Load(key, name, def string) (string, error)

	// Save stores a value. A saved value is visible to the next Load.
	Save(key, name, value string) error
}

// Registrar is the host side registration table of actions.
type Registrar interface {
	// Unregister removes the action with the given id. Unknown ids are
	// ignored.
	Unregister(id uuid.UUID)
}

// Manager is the owning module manager of proxies. It must outlive every
// proxy it creates.
type Manager interface {
	// ModuleName returns the module name.
	ModuleName() string

	// ResolveClass finds a class of the module by its full name.
	ResolveClass(name string) (*Class, error)

	// CreateInstance creates an instance of a module class.
	CreateInstance(c *Class) (any, error)

	// GetString returns a module resource string or "" if not found.
	GetString(name string) string

	// SetCachedResources records that names come from module resources.
	SetCachedResources()

	// Invoking is called before any action of the module runs.
	Invoking()

	// Settings returns the settings store.
	Settings() Settings

	// Host returns the host registration table.
	Host() Registrar

	// Logger returns the module logger. It may return nil.
	Logger() *slog.Logger
}

// CommandEventArgs describes a command invocation.
type CommandEventArgs struct {
	// Command is the command line text after the prefix.
	Command string
}

// EditorHandle is the editor an editor hook is invoked for.
type EditorHandle interface {
	// FileName returns the edited file name.
	FileName() string
}

// EditorEventArgs describes an editor hook invocation.
type EditorEventArgs struct{}

// FilerMode describes how a filer is invoked.
type FilerMode int

// Filer modes.
const (
	FilerModeNormal FilerMode = 0
	FilerModeSilent FilerMode = 1 << (iota - 1)
	FilerModeFind
	FilerModeView
	FilerModeEdit
)

// String returns the mode name.
func (m FilerMode) String() string {
	switch m {
	case FilerModeNormal:
		return "Normal"
	case FilerModeSilent:
		return "Silent"
	case FilerModeFind:
		return "Find"
	case FilerModeView:
		return "View"
	case FilerModeEdit:
		return "Edit"
	default:
		return "Mixed"
	}
}

// FilerEventArgs describes a filer invocation.
type FilerEventArgs struct {
	// Name is the file name. It is empty when a new file is created.
	Name string

	// Data is the head of the file content, if available.
	Data []byte

	// Mode is the operation mode.
	Mode FilerMode
}

// ToolEventArgs describes a tool invocation.
type ToolEventArgs struct {
	// From is the menu the tool is invoked from.
	From ToolOptions
}

// ModuleCommand is implemented by command classes.
type ModuleCommand interface {
	Invoke(sender any, e *CommandEventArgs) error
}

// ModuleEditor is implemented by editor hook classes.
type ModuleEditor interface {
	Invoke(editor EditorHandle, e *EditorEventArgs) error
}

// ModuleFiler is implemented by filer classes.
type ModuleFiler interface {
	Invoke(sender any, e *FilerEventArgs) error
}

// ModuleTool is implemented by tool classes.
type ModuleTool interface {
	Invoke(sender any, e *ToolEventArgs) error
}

// CommandHandler handles a dynamically registered command.
type CommandHandler func(sender any, e *CommandEventArgs) error

// FilerHandler handles a dynamically registered filer.
type FilerHandler func(sender any, e *FilerEventArgs) error

// ToolHandler handles a dynamically registered tool.
type ToolHandler func(sender any, e *ToolEventArgs) error
