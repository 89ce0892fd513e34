package proxy

import (
	"errors"
	"testing"
)

func TestNewFiler(t *testing.T) {
	m := newMockManager("Works")

	var got *FilerEventArgs
	p, err := NewFiler(m, testID, FilerAttribute{
		ActionAttribute: ActionAttribute{Name: "Zip"},
		Mask:            "*.zip",
		Creates:         true,
	}, func(_ any, e *FilerEventArgs) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("NewFiler() error = %v", err)
	}
	if !p.Creates() {
		t.Error("Creates = false, want true")
	}

	if err := p.Invoke(nil, &FilerEventArgs{Name: "a.zip", Mode: FilerModeView}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got == nil || got.Name != "a.zip" || got.Mode != FilerModeView {
		t.Errorf("handler got %+v", got)
	}
}

func TestFilerFromClass(t *testing.T) {
	filedNames = nil
	m := newMockManager("Works")
	c := ClassOf(&zipFiler{}, FilerAttribute{ActionAttribute: ActionAttribute{Name: "Zip"}, Mask: "*.zip"})

	p, err := NewFilerFromClass(m, c)
	if err != nil {
		t.Fatalf("NewFilerFromClass() error = %v", err)
	}
	if err := p.Invoke(nil, &FilerEventArgs{Name: "b.zip"}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(filedNames) != 1 || filedNames[0] != "b.zip" {
		t.Errorf("filed = %v", filedNames)
	}
}

func TestFilerName(t *testing.T) {
	m := newMockManager("Works")
	if _, err := NewFiler(m, testID, FilerAttribute{Mask: "*.zip"}, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("NewFiler() error = %v, want ErrConfiguration", err)
	}
}

func TestFilerSetMask(t *testing.T) {
	m := newMockManager("Works")
	p, err := NewFiler(m, testID, FilerAttribute{ActionAttribute: ActionAttribute{Name: "Zip"}, Mask: "*.zip"}, nil)
	if err != nil {
		t.Fatalf("NewFiler() error = %v", err)
	}

	if err := p.SetMask("*.7z"); err != nil {
		t.Fatalf("SetMask() error = %v", err)
	}
	if p.Mask() != "*.7z" {
		t.Errorf("Mask = %q, want %q", p.Mask(), "*.7z")
	}
	if err := p.SetMask("*.[a-"); !errors.Is(err, ErrArgument) {
		t.Errorf("SetMask() error = %v, want ErrArgument", err)
	}

	// The cache keeps the declared mask.
	got := p.WriteCache(nil)
	if got[3] != "*.zip" || got[4] != "False" {
		t.Errorf("WriteCache() = %q", got)
	}
}

func TestFilerString(t *testing.T) {
	m := newMockManager("Works")
	p, err := NewFiler(m, testID, FilerAttribute{ActionAttribute: ActionAttribute{Name: "Zip"}, Mask: "*.zip"}, nil)
	if err != nil {
		t.Fatalf("NewFiler() error = %v", err)
	}

	want := `Works\` + testID.String() + "  Name='Zip' Mask='*.zip'"
	if p.String() != want {
		t.Errorf("String() = %q, want %q", p.String(), want)
	}
}
