// Package builtin is the module shipped with modhost. It declares a few
// actions of every kind and is loaded like any other module.
package builtin

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/dshills/modhost/internal/host"
	"github.com/dshills/modhost/internal/manager"
	"github.com/dshills/modhost/internal/proxy"
)

// Name is the module name.
const Name = "Works"

// Stamp identifies the action layout of this build. Change it whenever a
// class or attribute below changes so cached records are rediscovered.
const Stamp = "works/1"

// Dynamic action ids.
var (
	ActionsID = uuid.MustParse("0a3f6c1e-52b7-4d8e-9f10-6e2d4c8b7a01")
	HexID     = uuid.MustParse("0a3f6c1e-52b7-4d8e-9f10-6e2d4c8b7a02")
)

// hexHead is how much of a file the hex viewer dumps.
const hexHead = 256

// Classes returns the action classes of the module.
func Classes() []*proxy.Class {
	return []*proxy.Class{
		proxy.ClassOf(&Echo{}, proxy.CommandAttribute{
			ActionAttribute: proxy.ActionAttribute{Name: "EchoTitle", Resources: true},
			Prefix:          "echo",
		}),
		proxy.ClassOf(&Markdown{}, proxy.EditorAttribute{
			ActionAttribute: proxy.ActionAttribute{Name: "Markdown"},
			Mask:            "*.md;*.markdown",
		}),
	}
}

// Resources returns the module strings per language.
func Resources() map[language.Tag]map[string]string {
	return map[language.Tag]map[string]string{
		language.English: {"EchoTitle": "Echo", "ActionsTitle": "Actions"},
		language.Russian: {"EchoTitle": "Эхо", "ActionsTitle": "Действия"},
		language.German:  {"EchoTitle": "Echo", "ActionsTitle": "Aktionen"},
	}
}

// New creates the module manager. Class actions are not created until the
// manager is loaded.
func New(h *host.Host, opts ...manager.Option) (*manager.Manager, error) {
	m := manager.New(Name, append([]manager.Option{manager.WithHost(h)}, opts...)...)
	for _, c := range Classes() {
		if err := m.AddClass(c); err != nil {
			return nil, err
		}
	}
	for tag, texts := range Resources() {
		if err := m.AddResources(tag, texts); err != nil {
			return nil, fmt.Errorf("resources %s: %w", tag, err)
		}
	}
	return m, nil
}

// Register adds the dynamic actions. They are bound to h and out and are
// not cached, so Register runs after every load.
func Register(m *manager.Manager, h *host.Host, out io.Writer) error {
	_, err := m.RegisterTool(ActionsID, proxy.ToolAttribute{
		ActionAttribute: proxy.ActionAttribute{Name: text(m, "ActionsTitle", "Actions")},
		Options:         proxy.ToolPanels | proxy.ToolEditor,
	}, func(any, *proxy.ToolEventArgs) error {
		return ListActions(out, h)
	})
	if err != nil {
		return err
	}

	_, err = m.RegisterFiler(HexID, proxy.FilerAttribute{
		ActionAttribute: proxy.ActionAttribute{Name: "Hex view"},
		Mask:            "*.bin;*.dat",
	}, func(_ any, e *proxy.FilerEventArgs) error {
		data := e.Data
		if len(data) > hexHead {
			data = data[:hexHead]
		}
		_, err := fmt.Fprintf(out, "%s (%s)\n%s", e.Name, e.Mode, hex.Dump(data))
		return err
	})
	return err
}

func text(m *manager.Manager, name, def string) string {
	if s := m.GetString(name); s != "" {
		return s
	}
	return def
}

// ListActions writes a table of the host actions.
func ListActions(w io.Writer, h *host.Host) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tKEY\tSETTING")
	for _, a := range h.Actions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Kind(), a.Name(), a.Key(), setting(a))
	}
	return tw.Flush()
}

func setting(a proxy.Action) string {
	switch p := a.(type) {
	case *proxy.Command:
		return "prefix=" + p.Prefix()
	case *proxy.Editor:
		return "mask=" + p.Mask()
	case *proxy.Filer:
		if p.Creates() {
			return "mask=" + p.Mask() + " creates"
		}
		return "mask=" + p.Mask()
	case *proxy.Tool:
		return "hotkey=" + p.HotkeyText() + " options=" + p.Options().String()
	}
	return ""
}

// Echo writes the command text back to a sender that is an io.Writer.
type Echo struct{}

// Invoke implements proxy.ModuleCommand.
func (*Echo) Invoke(sender any, e *proxy.CommandEventArgs) error {
	w, ok := sender.(io.Writer)
	if !ok {
		slog.Info("echo", "text", e.Command)
		return nil
	}
	_, err := fmt.Fprintln(w, e.Command)
	return err
}

// Markdown reports markdown files opened in an editor that is an io.Writer.
type Markdown struct{}

// Invoke implements proxy.ModuleEditor.
func (*Markdown) Invoke(editor proxy.EditorHandle, _ *proxy.EditorEventArgs) error {
	if w, ok := editor.(io.Writer); ok {
		_, err := fmt.Fprintf(w, "markdown: %s\n", editor.FileName())
		return err
	}
	return nil
}
