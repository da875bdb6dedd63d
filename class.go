package sembuf

import (
	"github.com/pkg/errors"
)

// StructClass is the per-type, ordered set of field descriptors. It is
// assembled once at type-definition time through AddDescriptor calls and
// sealed with Finalize, which also registers it for late binding. Fields are
// indexed by name, by field number and by exact encoded-tag bytes so parsing
// can dispatch in O(1).
//
// Definition time is single-writer: build a class from one goroutine (or
// behind your own lock) before sharing it. The registry itself is
// mutex-guarded, so independent classes may be defined concurrently.
type StructClass struct {
	name     string
	registry *Registry

	fields []FieldDescriptor
	byName map[string]FieldDescriptor
	byNum  map[uint32]FieldDescriptor
	byTag  map[string]FieldDescriptor

	finalized bool
}

// ClassOption configures a StructClass at construction time.
type ClassOption func(*StructClass)

// WithRegistry binds the class to a registry other than DefaultRegistry.
func WithRegistry(r *Registry) ClassOption {
	return func(c *StructClass) { c.registry = r }
}

// NewClass creates an empty struct class named name.
func NewClass(name string, opts ...ClassOption) *StructClass {
	c := &StructClass{
		name:   name,
		byName: map[string]FieldDescriptor{},
		byNum:  map[uint32]FieldDescriptor{},
		byTag:  map[string]FieldDescriptor{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.registry == nil {
		c.registry = DefaultRegistry
	}
	return c
}

// Name returns the class name used for late-binding resolution.
func (c *StructClass) Name() string { return c.name }

// Registry returns the registry the class resolves references through.
func (c *StructClass) Registry() *Registry { return c.registry }

// Fields returns the descriptors in definition order. The returned slice
// must not be modified.
func (c *StructClass) Fields() []FieldDescriptor { return c.fields }

// Descriptor returns the descriptor for a field name.
func (c *StructClass) Descriptor(name string) (FieldDescriptor, bool) {
	fd, ok := c.byName[name]
	return fd, ok
}

// ByNumber returns the descriptor for a field number.
func (c *StructClass) ByNumber(num uint32) (FieldDescriptor, bool) {
	fd, ok := c.byNum[num]
	return fd, ok
}

// AddDescriptor adds field descriptors to the class. Duplicate field names
// or numbers are definition-time errors. A descriptor whose target type is
// not yet defined is accepted as is; its tag is only indexed once the target
// resolves, so until then wire bytes for it are preserved as unknown fields
// rather than decoded.
func (c *StructClass) AddDescriptor(fds ...FieldDescriptor) error {
	if c.finalized {
		return typeErrf(c.name, "cannot add a descriptor to a finalized class")
	}
	for _, fd := range fds {
		if _, ok := c.byName[fd.Name()]; ok {
			return typeErrf(c.name, "duplicate field name %q", fd.Name())
		}
		if _, ok := c.byNum[fd.FieldNumber()]; ok {
			return typeErrf(c.name, "duplicate field number %d", fd.FieldNumber())
		}
		c.fields = append(c.fields, fd)
		c.byName[fd.Name()] = fd
		c.byNum[fd.FieldNumber()] = fd

		if fd.resolved() {
			c.byTag[string(fd.tag())] = fd
			continue
		}
		embed, ok := lateTarget(fd)
		if !ok {
			return typeErrf(c.name, "field %q is unresolved but not late-bindable", fd.Name())
		}
		fd := fd
		c.registry.resolve(embed.TypeName(), func(target *StructClass) {
			embed.bind(target)
			c.byTag[string(fd.tag())] = fd
		})
	}
	return nil
}

// MustAddDescriptor is AddDescriptor that panics on a definition error.
func (c *StructClass) MustAddDescriptor(fds ...FieldDescriptor) {
	if err := c.AddDescriptor(fds...); err != nil {
		panic(err)
	}
}

// lateTarget digs the late-bindable embed descriptor out of fd, unwrapping
// the repeated wrapper if needed.
func lateTarget(fd FieldDescriptor) (*EmbedField, bool) {
	switch t := fd.(type) {
	case *EmbedField:
		return t, true
	case *RepeatedField:
		return lateTarget(t.elem)
	}
	return nil, false
}

// Finalize seals the class and registers it, firing any callbacks parked
// under its name. After Finalize the descriptor set is immutable.
func (c *StructClass) Finalize() error {
	if c.finalized {
		return typeErrf(c.name, "class is already finalized")
	}
	c.finalized = true
	if err := c.registry.register(c); err != nil {
		return errors.Wrapf(err, "finalizing class %q", c.name)
	}
	return nil
}

// MustFinalize is Finalize that panics on a definition error.
func (c *StructClass) MustFinalize() {
	if err := c.Finalize(); err != nil {
		panic(err)
	}
}

// New creates an empty instance of the class.
func (c *StructClass) New() *Struct {
	return &Struct{
		class:   c,
		entries: map[string]*cacheEntry{},
	}
}
