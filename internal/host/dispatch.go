package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/modhost/internal/mask"
	"github.com/dshills/modhost/internal/proxy"
)

// MenuItem is a tool shown in a menu.
type MenuItem struct {
	// ID is the tool id.
	ID uuid.UUID
	// Text is the item text with the hotkey marker.
	Text string
	// Tool is the tool proxy.
	Tool *proxy.Tool
}

// Command runs the command whose prefix starts a "prefix:text" line.
// Prefixes are compared ignoring case. The command gets the text after
// the colon without leading spaces.
func (h *Host) Command(line string, sender any) error {
	prefix, text, ok := strings.Cut(line, ":")
	if !ok {
		return fmt.Errorf("%w: %q", ErrCommandLine, line)
	}
	prefix = strings.TrimSpace(prefix)

	for _, a := range h.Actions() {
		cmd, ok := a.(*proxy.Command)
		if !ok || !strings.EqualFold(cmd.Prefix(), prefix) {
			continue
		}
		e := &proxy.CommandEventArgs{Command: strings.TrimLeft(text, " \t")}
		return safeInvoke(cmd, func() error { return cmd.Invoke(sender, e) })
	}
	return fmt.Errorf("%w: %q", ErrNoCommand, prefix)
}

// Prefixes returns the current command prefixes, sorted.
func (h *Host) Prefixes() []string {
	var prefixes []string
	for _, a := range h.snapshot() {
		if cmd, ok := a.(*proxy.Command); ok {
			prefixes = append(prefixes, cmd.Prefix())
		}
	}
	sort.Strings(prefixes)
	return prefixes
}

// OpenEditor runs every editor hook whose mask matches the editor file.
// It returns the number of hooks run and their joined errors.
func (h *Host) OpenEditor(editor proxy.EditorHandle) (int, error) {
	if editor == nil {
		return 0, &proxy.ArgumentError{Arg: "editor", Message: "must not be nil"}
	}
	name := editor.FileName()

	var (
		n    int
		errs []error
	)
	for _, a := range h.Actions() {
		hook, ok := a.(*proxy.Editor)
		if !ok || !mask.Match(hook.Mask(), name) {
			continue
		}
		n++
		if err := safeInvoke(hook, func() error { return hook.Invoke(editor, nil) }); err != nil {
			h.logger.Warn("Editor hook failed", "key", hook.Key(), "file", name, "error", err)
			errs = append(errs, err)
		}
	}
	return n, errors.Join(errs...)
}

// OpenFile runs the first filer whose mask matches the file name.
func (h *Host) OpenFile(name string, data []byte, mode proxy.FilerMode) error {
	for _, a := range h.Actions() {
		filer, ok := a.(*proxy.Filer)
		if !ok || !mask.Match(filer.Mask(), name) {
			continue
		}
		e := &proxy.FilerEventArgs{Name: name, Data: data, Mode: mode}
		return safeInvoke(filer, func() error { return filer.Invoke(nil, e) })
	}
	return fmt.Errorf("%w: %s", ErrNoFiler, name)
}

// CreateFile runs the first filer that creates files whose mask matches
// the file name.
func (h *Host) CreateFile(name string) error {
	for _, a := range h.Actions() {
		filer, ok := a.(*proxy.Filer)
		if !ok || !filer.Creates() || !mask.Match(filer.Mask(), name) {
			continue
		}
		e := &proxy.FilerEventArgs{Mode: proxy.FilerModeEdit}
		return safeInvoke(filer, func() error { return filer.Invoke(nil, e) })
	}
	return fmt.Errorf("%w: %s", ErrNoFiler, name)
}

// Menu returns the tools shown in a menu.
func (h *Host) Menu(from proxy.ToolOptions) []MenuItem {
	var items []MenuItem
	for _, a := range h.Actions() {
		tool, ok := a.(*proxy.Tool)
		if !ok || tool.Options()&from == 0 {
			continue
		}
		items = append(items, MenuItem{ID: tool.ID(), Text: tool.GetMenuText(), Tool: tool})
	}
	return items
}

// InvokeTool runs a tool from a menu.
func (h *Host) InvokeTool(id uuid.UUID, from proxy.ToolOptions) error {
	a, ok := h.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	tool, ok := a.(*proxy.Tool)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", ErrNotFound, a.Key(), a.Kind())
	}
	e := &proxy.ToolEventArgs{From: from}
	return safeInvoke(tool, func() error { return tool.Invoke(nil, e) })
}
