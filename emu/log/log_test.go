package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("module %q not found", name)
		}
		if mod.String() != name {
			t.Errorf("module %q: String() = %q", name, mod.String())
		}
	}

	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("placeholder module name should not resolve")
	}
}

func TestModuleEnabled(t *testing.T) {
	mod := NewModule("testmod")
	defer DisableDebugModules(mod.Mask())

	if !mod.Enabled(WarnLevel) {
		t.Errorf("warnings should always be enabled")
	}
	if mod.Enabled(DebugLevel) {
		t.Errorf("debug should be disabled by default")
	}
	if mod.DebugZ("hidden") != nil {
		t.Errorf("DebugZ on disabled module should return nil")
	}

	EnableDebugModules(mod.Mask())
	if !mod.Enabled(DebugLevel) {
		t.Errorf("debug should be enabled after EnableDebugModules")
	}
}

func TestEntryZ(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	mod := NewModule("zmod")
	EnableDebugModules(mod.Mask())
	defer DisableDebugModules(mod.Mask())

	mod.InfoZ("register write").
		Hex8("val", 0x0f).
		Hex16("addr", 0x2000).
		Uint16("period", 300).
		Bool("odd", true).
		End()

	out := buf.String()
	for _, want := range []string{"register write", "val=0f", "addr=2000", "period=300", "odd=true", "_mod=zmod"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}

	// A nil entry must be a no-op all the way down.
	var z *EntryZ
	z.String("k", "v").Int("i", 1).End()
}
