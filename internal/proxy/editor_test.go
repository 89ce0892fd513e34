package proxy

import (
	"errors"
	"testing"

	"github.com/dshills/modhost/internal/mask"
)

func newEditor(t *testing.T, m *mockManager, m0 string) *Editor {
	t.Helper()
	c := m.addClass(ClassOf(mdEditor{}, EditorAttribute{
		ActionAttribute: ActionAttribute{Name: "Markdown"},
		Mask:            m0,
	}))
	p, err := NewEditorFromClass(m, c)
	if err != nil {
		t.Fatalf("NewEditorFromClass() error = %v", err)
	}
	return p
}

func TestEditorInvoke(t *testing.T) {
	editedFiles = nil
	m := newMockManager("Works")
	p := newEditor(t, m, "*.md")

	if p.Mask() != "*.md" {
		t.Errorf("Mask = %q, want %q", p.Mask(), "*.md")
	}
	if err := p.Invoke(editorHandle("README.md"), nil); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(editedFiles) != 1 || editedFiles[0] != "README.md" {
		t.Errorf("edited = %v", editedFiles)
	}
	if m.invocations != 1 {
		t.Errorf("invocations = %d, want 1", m.invocations)
	}
}

func TestEditorSetMask(t *testing.T) {
	m := newMockManager("Works")
	p := newEditor(t, m, "*.md")

	if err := p.SetMask("*.txt|readme.*"); err != nil {
		t.Fatalf("SetMask() error = %v", err)
	}
	if p.Mask() != "*.txt|readme.*" {
		t.Errorf("Mask = %q", p.Mask())
	}
	if p.DefaultMask() != "*.md" {
		t.Errorf("DefaultMask = %q, want %q", p.DefaultMask(), "*.md")
	}
	if v, _ := m.settings.get(p.Key(), "Mask"); v != "*.txt|readme.*" {
		t.Errorf("stored mask = %q", v)
	}

	// Empty masks are allowed and match all files.
	if err := p.SetMask(""); err != nil {
		t.Fatalf("SetMask(\"\") error = %v", err)
	}
	if p.Mask() != "" {
		t.Errorf("Mask = %q, want empty", p.Mask())
	}

	err := p.SetMask("[")
	if !errors.Is(err, ErrArgument) || !errors.Is(err, mask.ErrBadMask) {
		t.Errorf("SetMask(\"[\") error = %v, want ErrArgument and ErrBadMask", err)
	}
	if p.Mask() != "" {
		t.Errorf("Mask after rejected set = %q, want empty", p.Mask())
	}
}

func TestEditorMaskFromSettings(t *testing.T) {
	m := newMockManager("Works")
	c := ClassOf(mdEditor{}, EditorAttribute{ActionAttribute: ActionAttribute{Name: "Markdown"}, Mask: "*.md"})

	// An empty stored mask overrides the default.
	m.settings.values[`Works\`+c.ID.String()+"/Mask"] = ""
	p, err := NewEditorFromClass(m, c)
	if err != nil {
		t.Fatalf("NewEditorFromClass() error = %v", err)
	}
	if p.Mask() != "" {
		t.Errorf("Mask = %q, want empty", p.Mask())
	}
	if p.DefaultMask() != "*.md" {
		t.Errorf("DefaultMask = %q, want %q", p.DefaultMask(), "*.md")
	}
}

func TestEditorString(t *testing.T) {
	m := newMockManager("Works")
	p := newEditor(t, m, "*.md")

	want := p.Key() + " " + p.ClassName() + " Name='Markdown' Mask='*.md'"
	if p.String() != want {
		t.Errorf("String() = %q, want %q", p.String(), want)
	}
}
