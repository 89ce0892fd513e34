package proxy

import (
	"fmt"
	"strings"
)

// Kind identifies the kind of a module action.
type Kind int

// Action kinds.
const (
	// KindCommand is a command line prefix handler.
	KindCommand Kind = iota
	// KindEditor is an editor open hook.
	KindEditor
	// KindFiler is a file handler hook.
	KindFiler
	// KindTool is a menu tool.
	KindTool
)

// String returns the kind name. It is also the kind token of cache records.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "Command"
	case KindEditor:
		return "Editor"
	case KindFiler:
		return "Filer"
	case KindTool:
		return "Tool"
	default:
		return "Unknown"
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Command":
		return KindCommand, nil
	case "Editor":
		return KindEditor, nil
	case "Filer":
		return KindFiler, nil
	case "Tool":
		return KindTool, nil
	}
	return 0, &CacheError{Field: "Kind", Value: s}
}

// ToolOptions is a set of places where a tool is shown.
type ToolOptions int

// Tool option flags.
const (
	ToolNone   ToolOptions = 0
	ToolConfig ToolOptions = 1 << (iota - 1)
	ToolDisk
	ToolEditor
	ToolPanels
	ToolViewer
	ToolDialog

	// ToolF11Menus covers the plugin menus of all areas.
	ToolF11Menus = ToolEditor | ToolPanels | ToolViewer | ToolDialog
	// ToolAllMenus covers every menu.
	ToolAllMenus = ToolConfig | ToolDisk | ToolF11Menus
)

var toolOptionNames = []struct {
	opt  ToolOptions
	name string
}{
	{ToolConfig, "Config"},
	{ToolDisk, "Disk"},
	{ToolEditor, "Editor"},
	{ToolPanels, "Panels"},
	{ToolViewer, "Viewer"},
	{ToolDialog, "Dialog"},
}

// Has reports whether all flags of o are set.
func (t ToolOptions) Has(o ToolOptions) bool {
	return t&o == o
}

// String returns the flag names joined by ", ".
func (t ToolOptions) String() string {
	if t == ToolNone {
		return "None"
	}

	var names []string
	rest := t
	for _, n := range toolOptionNames {
		if t&n.opt != 0 {
			names = append(names, n.name)
			rest &^= n.opt
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("%d", int(rest)))
	}
	return strings.Join(names, ", ")
}

// ParseToolOption parses a single flag name (case-insensitive).
func ParseToolOption(s string) (ToolOptions, error) {
	for _, n := range toolOptionNames {
		if strings.EqualFold(n.name, s) {
			return n.opt, nil
		}
	}
	switch strings.ToLower(s) {
	case "f11menus":
		return ToolF11Menus, nil
	case "allmenus":
		return ToolAllMenus, nil
	}
	return ToolNone, fmt.Errorf("unknown tool option %q", s)
}
