package types

// Hierarchy answers supertype queries for class types
type Hierarchy interface {
	// DirectSupertypes returns the superclass and interfaces of t, parameterized
	// by t's type arguments
	DirectSupertypes(t *Type) []*Type
}

// AsSuper returns the parameterization of the class named name within the
// supertype closure of t, or nil when t is not a subtype of it.
func AsSuper(h Hierarchy, t *Type, name string) *Type {
	if t == nil || t.Kind != KindClass {
		if t != nil && t.Kind == KindTypeVar {
			if t.Bound != nil {
				return AsSuper(h, t.Bound, name)
			}
			if name == ObjectName {
				return Object
			}
		}
		return nil
	}
	if t.Name == name {
		return t
	}
	if name == ObjectName {
		return Object
	}
	seen := map[string]bool{t.Key(): true}
	queue := []*Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if h == nil {
			continue
		}
		for _, s := range h.DirectSupertypes(cur) {
			if s == nil || seen[s.Key()] {
				continue
			}
			if s.Name == name {
				return s
			}
			seen[s.Key()] = true
			queue = append(queue, s)
		}
	}
	return nil
}

// IsSubtype reports whether t extends or implements the class named name
func IsSubtype(h Hierarchy, t *Type, name string) bool {
	return AsSuper(h, t, name) != nil
}

// Assignable reports whether a value of type source may be assigned to a
// variable of type target without an explicit cast. Nil descriptors stand for
// dynamic types and are assignable both ways.
func Assignable(h Hierarchy, target, source *Type) bool {
	if target == nil || source == nil {
		return true
	}
	if target.Equal(source) {
		return true
	}
	switch {
	case source.Kind == KindNull:
		return !target.IsPrimitive()
	case source.IsVoid():
		return false
	case target.IsObject():
		return true
	case target.IsPrimitive():
		if source.IsPrimitive() {
			return WidensTo(source, target)
		}
		if p := Unbox(source); p.IsPrimitive() {
			return WidensTo(p, target)
		}
		return false
	case source.IsPrimitive():
		boxed := Box(source)
		if boxed.Name == target.Name {
			return true
		}
		return Assignable(h, target, boxed)
	case target.Kind == KindTypeVar:
		if target.Bound != nil {
			return Assignable(h, target.Bound, source)
		}
		return true
	case source.Kind == KindTypeVar:
		if source.Bound != nil {
			return Assignable(h, target, source.Bound)
		}
		return target.IsObject()
	case target.Kind == KindWildcard:
		return containsArg(h, target, source)
	case source.Kind == KindWildcard:
		if source.BoundKind == ExtendsBound {
			return Assignable(h, target, source.Bound)
		}
		return target.IsObject()
	case target.Kind == KindArray:
		if source.Kind != KindArray {
			return false
		}
		if target.Elem.IsPrimitive() || source.Elem.IsPrimitive() {
			return target.Elem.Equal(source.Elem)
		}
		return Assignable(h, target.Elem, source.Elem)
	case source.Kind == KindArray:
		switch target.Name {
		case "java.lang.Cloneable", "java.io.Serializable":
			return true
		}
		return false
	}
	if target.Name == StringName && source.Name == GStringName {
		return true
	}
	sup := AsSuper(h, source, target.Name)
	if sup == nil {
		return false
	}
	return argsCompatible(h, target, sup)
}

func argsCompatible(h Hierarchy, target, source *Type) bool {
	if len(target.Args) == 0 || len(source.Args) == 0 {
		return true
	}
	if len(target.Args) != len(source.Args) {
		return false
	}
	for i := range target.Args {
		if !containsArg(h, target.Args[i], source.Args[i]) {
			return false
		}
	}
	return true
}

// containsArg reports whether type argument s is within type argument t
func containsArg(h Hierarchy, t, s *Type) bool {
	switch t.Kind {
	case KindWildcard:
		switch t.BoundKind {
		case ExtendsBound:
			return Assignable(h, t.Bound, upper(s))
		case SuperBound:
			if s.Kind == KindWildcard {
				return s.BoundKind == SuperBound && Assignable(h, s.Bound, t.Bound)
			}
			return Assignable(h, s, t.Bound)
		}
		return true
	case KindTypeVar:
		return true
	}
	switch s.Kind {
	case KindTypeVar:
		return true
	case KindWildcard:
		return false
	}
	if t.Kind == KindClass && s.Kind == KindClass && t.Name == s.Name {
		return argsCompatible(h, t, s)
	}
	return t.Equal(s)
}

func upper(t *Type) *Type {
	if t.Kind == KindWildcard {
		if t.BoundKind == ExtendsBound {
			return t.Bound
		}
		return Object
	}
	return t
}

// CommonSupertype returns the type a variable holds after two control-flow
// paths assigned a and b to it
func CommonSupertype(h Hierarchy, a, b *Type) *Type {
	switch {
	case a == nil || b == nil:
		return nil
	case a.Equal(b):
		return a
	case a.Kind == KindNull:
		return Box(b)
	case b.Kind == KindNull:
		return Box(a)
	}
	if a.IsPrimitive() && b.IsPrimitive() && NumericRank(a) > 0 && NumericRank(b) > 0 {
		if NumericRank(b) > NumericRank(a) {
			return b
		}
		return a
	}
	ba, bb := Box(a), Box(b)
	if Assignable(h, ba, bb) {
		return ba
	}
	if Assignable(h, bb, ba) {
		return bb
	}
	if ba.Kind != KindClass || h == nil {
		return Object
	}
	seen := map[string]bool{ba.Key(): true}
	queue := []*Type{ba}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range h.DirectSupertypes(cur) {
			if s == nil || seen[s.Key()] || s.IsObject() {
				continue
			}
			seen[s.Key()] = true
			if Assignable(h, s, bb) {
				return s
			}
			queue = append(queue, s)
		}
	}
	return Object
}
