package mempool

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Run("Default config is valid", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("expected a valid config, but got error: %v", err)
		}
	})

	t.Run("Every system type is valid", func(t *testing.T) {
		for _, s := range []SystemType{SystemMmap, SystemMmapGo, SystemHeap} {
			c := DefaultConfig()
			c.System = s
			if err := c.Validate(); err != nil {
				t.Errorf("expected system %v to be valid, got error: %v", s, err)
			}
		}
	})

	t.Run("Invalid system", func(t *testing.T) {
		c := DefaultConfig()
		c.System = SystemType(42)
		err := c.Validate()
		if !errors.Is(err, ErrUnsupportedSystem) {
			t.Fatalf("expected error %q, got %v", ErrUnsupportedSystem, err)
		}
		if !strings.Contains(err.Error(), "SystemType(42)") {
			t.Errorf("expected error to name the system type, got %q", err.Error())
		}
	})

	t.Run("Multiple invalid fields", func(t *testing.T) {
		err := Config{}.Validate()
		if err == nil {
			t.Fatal("expected an error for multiple invalid fields, but got nil")
		}
		errString := err.Error()
		if !strings.Contains(errString, "unsupported system allocator") {
			t.Errorf("error message missing expected system validation: got %q", errString)
		}
		if !strings.Contains(errString, "invalid config: logger is required") {
			t.Errorf("error message missing expected logger validation: got %q", errString)
		}
	})
}

func TestSystemTypeString(t *testing.T) {
	testCases := map[SystemType]string{
		SystemMmap:    "mmap",
		SystemMmapGo:  "mmap-go",
		SystemHeap:    "heap",
		SystemType(0): "SystemType(0)",
	}
	for s, want := range testCases {
		if got := s.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
