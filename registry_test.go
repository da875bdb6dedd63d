package sembuf

import (
	"bytes"
	"errors"
	"testing"
)

// buildCycle defines two mutually referential classes in the given order and
// returns them. Each class embeds the other by name, so whichever is defined
// first carries an unresolved reference until the second finalizes.
func buildCycle(t *testing.T, reg *Registry, first, second string) (*StructClass, *StructClass) {
	t.Helper()

	a := NewClass(first, WithRegistry(reg))
	a.MustAddDescriptor(
		NewInt("v", 1),
		NewEmbedByName("peer", 2, second),
	)
	a.MustFinalize()

	b := NewClass(second, WithRegistry(reg))
	b.MustAddDescriptor(
		NewInt("v", 1),
		NewEmbedByName("peer", 2, first),
	)
	b.MustFinalize()

	return a, b
}

func TestLateBindingCycle(t *testing.T) {
	// The cycle must resolve regardless of which class is defined first.
	for _, order := range [][2]string{{"A", "B"}, {"B", "A"}} {
		a, b := buildCycle(t, NewRegistry(), order[0], order[1])

		for _, cls := range []*StructClass{a, b} {
			fd, ok := cls.Descriptor("peer")
			if !ok {
				t.Fatalf("TestLateBindingCycle(%v): %q has no peer field", order, cls.Name())
			}
			if fd.(*EmbedField).Class() == nil {
				t.Fatalf("TestLateBindingCycle(%v): %q.peer unresolved after finalize", order, cls.Name())
			}
		}

		// Exercise the resolved reference end to end.
		inner := b.New()
		inner.MustSet("v", 2)
		outer := a.New()
		outer.MustSet("v", 1)
		outer.MustSet("peer", inner)

		raw, err := outer.Marshal()
		if err != nil {
			t.Fatalf("TestLateBindingCycle(%v): Marshal: %v", order, err)
		}
		back := a.New()
		if err := back.Unmarshal(raw); err != nil {
			t.Fatalf("TestLateBindingCycle(%v): Unmarshal: %v", order, err)
		}
		if v := back.MustGet("peer").(*Struct).MustGet("v").(int64); v != 2 {
			t.Fatalf("TestLateBindingCycle(%v): peer.v: got %d, want 2", order, v)
		}
	}
}

func TestUnresolvedReferenceAtUse(t *testing.T) {
	reg := NewRegistry()
	c := NewClass("Holder", WithRegistry(reg))
	c.MustAddDescriptor(NewEmbedByName("m", 1, "Never"))
	c.MustFinalize()

	s := c.New()
	if err := s.Set("m", c.New()); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("TestUnresolvedReferenceAtUse: Set: got %v, want ErrUnresolved", err)
	}
	if _, err := s.Get("m"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("TestUnresolvedReferenceAtUse: Get: got %v, want ErrUnresolved", err)
	}

	// Wire bytes for the unresolved field are preserved as unknown, not
	// dropped and not decoded.
	raw := []byte{0x0a, 0x02, 0x08, 0x05}
	if err := s.Unmarshal(raw); err != nil {
		t.Fatalf("TestUnresolvedReferenceAtUse: Unmarshal: %v", err)
	}
	if s.Has("m") {
		t.Fatalf("TestUnresolvedReferenceAtUse: Has(m) true while unresolved")
	}
	out, err := s.Marshal()
	if err != nil {
		t.Fatalf("TestUnresolvedReferenceAtUse: Marshal: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("TestUnresolvedReferenceAtUse: got % x, want % x", out, raw)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	c := NewClass("Known", WithRegistry(reg))
	c.MustAddDescriptor(NewInt("v", 1))

	// Not visible until finalized.
	if _, ok := reg.Lookup("Known"); ok {
		t.Fatalf("TestRegistryLookup: visible before Finalize")
	}
	c.MustFinalize()

	got, ok := reg.Lookup("Known")
	if !ok || got != c {
		t.Fatalf("TestRegistryLookup: got %v, %v", got, ok)
	}
	if _, ok := reg.Lookup("Unknown"); ok {
		t.Fatalf("TestRegistryLookup: found Unknown")
	}
}

func TestDuplicateClassName(t *testing.T) {
	reg := NewRegistry()
	a := NewClass("Dup", WithRegistry(reg))
	a.MustAddDescriptor(NewInt("v", 1))
	a.MustFinalize()

	b := NewClass("Dup", WithRegistry(reg))
	b.MustAddDescriptor(NewInt("v", 1))

	var tve *TypeValueError
	if err := b.Finalize(); !errors.As(err, &tve) {
		t.Fatalf("TestDuplicateClassName: got %v, want *TypeValueError", err)
	}
}

func TestClassDefinitionErrors(t *testing.T) {
	var tve *TypeValueError

	c := NewClass("Strict", WithRegistry(NewRegistry()))
	c.MustAddDescriptor(NewInt("v", 1))

	if err := c.AddDescriptor(NewUint("v", 2)); !errors.As(err, &tve) {
		t.Fatalf("TestClassDefinitionErrors: duplicate name: got %v", err)
	}
	if err := c.AddDescriptor(NewUint("w", 1)); !errors.As(err, &tve) {
		t.Fatalf("TestClassDefinitionErrors: duplicate number: got %v", err)
	}

	c.MustFinalize()
	if err := c.AddDescriptor(NewUint("w", 2)); !errors.As(err, &tve) {
		t.Fatalf("TestClassDefinitionErrors: add after finalize: got %v", err)
	}

	if _, ok := c.ByNumber(1); !ok {
		t.Fatalf("TestClassDefinitionErrors: ByNumber(1) missing")
	}
	if _, ok := c.ByNumber(2); ok {
		t.Fatalf("TestClassDefinitionErrors: ByNumber(2) present")
	}
	if len(c.Fields()) != 1 {
		t.Fatalf("TestClassDefinitionErrors: got %d fields, want 1", len(c.Fields()))
	}
}
