package models

import "strings"

// Modifiers is a set of access flags. Values match the JVM access flags so
// emitted classes carry them unchanged; ModDefault has no JVM counterpart.
type Modifiers uint32

const (
	ModPublic       Modifiers = 0x0001
	ModPrivate      Modifiers = 0x0002
	ModProtected    Modifiers = 0x0004
	ModStatic       Modifiers = 0x0008
	ModFinal        Modifiers = 0x0010
	ModSynchronized Modifiers = 0x0020
	ModVolatile     Modifiers = 0x0040
	ModTransient    Modifiers = 0x0080
	ModNative       Modifiers = 0x0100
	ModInterface    Modifiers = 0x0200
	ModAbstract     Modifiers = 0x0400
	ModStrict       Modifiers = 0x0800
	ModSynthetic    Modifiers = 0x1000
	ModAnnotation   Modifiers = 0x2000
	ModEnum         Modifiers = 0x4000
	ModDefault      Modifiers = 0x10000

	VisibilityMask = ModPublic | ModPrivate | ModProtected
)

var modifierWords = []struct {
	word string
	mod  Modifiers
}{
	{"public", ModPublic},
	{"protected", ModProtected},
	{"private", ModPrivate},
	{"abstract", ModAbstract},
	{"static", ModStatic},
	{"final", ModFinal},
	{"transient", ModTransient},
	{"volatile", ModVolatile},
	{"synchronized", ModSynchronized},
	{"native", ModNative},
	{"strictfp", ModStrict},
	{"default", ModDefault},
}

// ParseModifier maps a modifier keyword to its flag
func ParseModifier(word string) (Modifiers, bool) {
	for _, m := range modifierWords {
		if m.word == word {
			return m.mod, true
		}
	}
	return 0, false
}

// Has reports whether all flags in f are set
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

// Visibility returns the visibility flags only
func (m Modifiers) Visibility() Modifiers { return m & VisibilityMask }

// WithVisibility replaces the visibility flags
func (m Modifiers) WithVisibility(v Modifiers) Modifiers {
	return m&^VisibilityMask | v&VisibilityMask
}

// IsPackagePrivate reports whether no visibility flag is set
func (m Modifiers) IsPackagePrivate() bool { return m&VisibilityMask == 0 }

// String renders source keywords in canonical order
func (m Modifiers) String() string {
	var words []string
	for _, w := range modifierWords {
		if m&w.mod != 0 {
			words = append(words, w.word)
		}
	}
	return strings.Join(words, " ")
}
