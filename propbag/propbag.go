// Package propbag implements the typed, keyed material property bag
// described in spec.md §4.5: properties are addressed by (name, texture-kind,
// texture-index) and carry one of four value shapes (float array, int array,
// string, or opaque buffer).
//
// Grounded on original_source/code/MaterialSystem.h's aiMaterialProperty
// array plus linear-scan lookup, re-expressed as a Go map keyed by a small
// comparable struct instead of a linear scan over a property list.
package propbag

import "fmt"

// TextureKind enumerates the texture slots addressable via an indexed key,
// matching the canonical spellings in spec.md §6 ($tex.file.<kind>[n], ...).
type TextureKind string

const (
	Diffuse    TextureKind = "diffuse"
	Specular   TextureKind = "specular"
	Ambient    TextureKind = "ambient"
	Emissive   TextureKind = "emissive"
	Opacity    TextureKind = "opacity"
	Height     TextureKind = "height"
	Shininess  TextureKind = "shininess"
	Reflection TextureKind = "reflection"
	None       TextureKind = "" // non-textured scalar/string properties.
)

// Stack names the texture-transform/wiring sub-property for a given kind,
// per spec.md §4.5.
type Stack string

const (
	StackFile      Stack = "file"
	StackUVWSrc    Stack = "uvwsrc"
	StackBlend     Stack = "blend"
	StackMapModeU  Stack = "mapmode_u"
	StackMapModeV  Stack = "mapmode_v"
	StackOp        Stack = "op"
	StackFlags     Stack = "flags"
	StackTransform Stack = "transform"
	StackAxis      Stack = "axis"
	StackNone      Stack = "" // non-texture named properties (?mat.name, $clr.diffuse, ...).
)

// Key identifies a single property: a base name, plus optional texture
// routing (stack/kind/index) for indexed texture slots.
type Key struct {
	Name  string
	Stack Stack
	Kind  TextureKind
	Index int
}

// TexKey builds a texture-slot key, e.g. TexKey(StackFile, Diffuse, 0).
func TexKey(stack Stack, kind TextureKind, index int) Key {
	return Key{Stack: stack, Kind: kind, Index: index}
}

// NamedKey builds a plain (non-texture) key, e.g. NamedKey("$clr.diffuse").
func NamedKey(name string) Key { return Key{Name: name} }

// Tag identifies which of the four value shapes a property carries.
type Tag int

const (
	TagFloats Tag = iota
	TagInts
	TagString
	TagBuffer
)

// Value is the stored payload for one property. Exactly one of the fields
// matching Tag is meaningful.
type Value struct {
	Tag    Tag
	Floats []float32
	Ints   []int32
	Str    string
	Buf    []byte
}

const maxStringLen = 1023

// Bag is a keyed collection of material properties. The zero value is usable.
type Bag struct {
	props map[Key]Value
}

// Add replaces any existing property stored under key with value.
func (b *Bag) Add(key Key, value Value) {
	if b.props == nil {
		b.props = make(map[Key]Value)
	}
	b.props[key] = value
}

// AddString stores a string property, capped to maxStringLen bytes (matching
// spec.md §4.5's "add_string ... capped at 1023 bytes").
func (b *Bag) AddString(key Key, s string) {
	if len(s) > maxStringLen {
		s = s[:maxStringLen]
	}
	b.Add(key, Value{Tag: TagString, Str: s})
}

// AddFloats stores a float-array property.
func (b *Bag) AddFloats(key Key, v []float32) {
	cp := append([]float32(nil), v...)
	b.Add(key, Value{Tag: TagFloats, Floats: cp})
}

// AddInts stores an int-array property.
func (b *Bag) AddInts(key Key, v []int32) {
	cp := append([]int32(nil), v...)
	b.Add(key, Value{Tag: TagInts, Ints: cp})
}

// AddBuffer stores an opaque-buffer property.
func (b *Bag) AddBuffer(key Key, v []byte) {
	cp := append([]byte(nil), v...)
	b.Add(key, Value{Tag: TagBuffer, Buf: cp})
}

// Get returns the raw value stored under key, if any.
func (b *Bag) Get(key Key) (Value, bool) {
	if b.props == nil {
		return Value{}, false
	}
	v, ok := b.props[key]
	return v, ok
}

// Float returns a single-element float property, or ok=false if absent or
// mistyped.
func (b *Bag) Float(key Key) (float32, bool) {
	v, ok := b.Get(key)
	if !ok || v.Tag != TagFloats || len(v.Floats) < 1 {
		return 0, false
	}
	return v.Floats[0], true
}

// Floats returns a float-array property.
func (b *Bag) Floats(key Key) ([]float32, bool) {
	v, ok := b.Get(key)
	if !ok || v.Tag != TagFloats {
		return nil, false
	}
	return v.Floats, true
}

// Int returns a single-element int property.
func (b *Bag) Int(key Key) (int32, bool) {
	v, ok := b.Get(key)
	if !ok || v.Tag != TagInts || len(v.Ints) < 1 {
		return 0, false
	}
	return v.Ints[0], true
}

// String returns a string property.
func (b *Bag) String(key Key) (string, bool) {
	v, ok := b.Get(key)
	if !ok || v.Tag != TagString {
		return "", false
	}
	return v.Str, true
}

// Remove deletes a property, if present.
func (b *Bag) Remove(key Key) {
	if b.props != nil {
		delete(b.props, key)
	}
}

// Keys returns every key currently stored, in no particular order.
func (b *Bag) Keys() []Key {
	keys := make([]Key, 0, len(b.props))
	for k := range b.props {
		keys = append(keys, k)
	}
	return keys
}

// Len reports the number of stored properties.
func (b *Bag) Len() int { return len(b.props) }

// TextureIndexDense counts the texture indices 0..n-1 present without a gap
// for the given stack+kind, per spec.md §4.5's "texture indices for a given
// kind must be dense starting at 0; a texture slot k+1 may exist only when k
// also exists". It returns the count of dense, contiguous slots found.
func (b *Bag) TextureIndexDense(stack Stack, kind TextureKind) int {
	n := 0
	for {
		if _, ok := b.Get(TexKey(stack, kind, n)); !ok {
			return n
		}
		n++
	}
}

// String formats a Key for diagnostics.
func (k Key) String() string {
	if k.Stack == StackNone && k.Kind == None {
		return k.Name
	}
	return fmt.Sprintf("%s.%s[%d]", k.Stack, k.Kind, k.Index)
}
