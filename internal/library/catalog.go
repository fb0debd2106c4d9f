// Package library serves binary (precompiled) types to the compiler. Types are
// described by an embedded YAML catalog and materialized into declaration
// nodes on first use.
package library

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
	"github.com/toyz/jointc/internal/utils"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// ExtensionClasses hold static methods whose first parameter is the receiver
var ExtensionClasses = []string{
	"org.codehaus.groovy.runtime.DefaultGroovyMethods",
	"org.codehaus.groovy.runtime.StringGroovyMethods",
}

type classEntry struct {
	Class      string   `yaml:"class"`
	Kind       string   `yaml:"kind"`
	Modifiers  string   `yaml:"modifiers"`
	Extends    string   `yaml:"extends"`
	Implements []string `yaml:"implements"`
	Constants  []string `yaml:"constants"`
	Members    []string `yaml:"members"`
	// Collects lists the annotations an annotation collector stands for
	Collects []string `yaml:"collects"`
	// Retention is source, class or runtime; annotation types only
	Retention string `yaml:"retention"`

	header    *sigHeader
	qualified string
	binary    string
}

// Catalog is a set of binary types. Lookups are safe for concurrent use and
// build each declaration at most once.
type Catalog struct {
	entries  map[string]*classEntry
	packages map[string][]string
	// nested maps an outer type to its direct member types
	nested map[string][]string

	mu       sync.Mutex
	built    *utils.Cache[string, *models.Declaration]
	building map[string]*models.Declaration
	builds   int
}

var (
	defaultOnce    sync.Once
	defaultEntries map[string]*classEntry
	defaultErr     error
)

// New returns a catalog over the built-in library description. Each catalog
// keeps its own declaration cache, so sessions do not share mutable nodes.
func New() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultEntries, defaultErr = decode(builtinCatalog)
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return newCatalog(defaultEntries), nil
}

// MustNew is New that panics on a malformed built-in catalog
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML data
func Parse(data []byte) (*Catalog, error) {
	entries, err := decode(data)
	if err != nil {
		return nil, err
	}
	return newCatalog(entries), nil
}

func newCatalog(entries map[string]*classEntry) *Catalog {
	c := &Catalog{
		entries:  entries,
		packages: make(map[string][]string),
		nested:   make(map[string][]string),
		built:    utils.NewCache[string, *models.Declaration](),
		building: make(map[string]*models.Declaration),
	}
	for name, e := range entries {
		if i := strings.LastIndexByte(e.binary, '$'); i >= 0 {
			outer := strings.ReplaceAll(e.binary[:i], "$", ".")
			c.nested[outer] = append(c.nested[outer], name)
			continue
		}
		pkg := types.PackageOf(name)
		c.packages[pkg] = append(c.packages[pkg], name)
	}
	for _, names := range c.packages {
		sort.Strings(names)
	}
	for _, names := range c.nested {
		sort.Strings(names)
	}
	return c
}

func decode(data []byte) (map[string]*classEntry, error) {
	var list []*classEntry
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.WrapCatalogError("catalog", err)
	}
	out := make(map[string]*classEntry, len(list))
	for _, e := range list {
		h, err := parseHeader(e.Class)
		if err != nil {
			return nil, errors.WrapCatalogError(e.Class, err)
		}
		e.header = h
		e.binary = h.Name
		e.qualified = strings.ReplaceAll(h.Name, "$", ".")
		if _, dup := out[e.qualified]; dup {
			return nil, errors.WrapCatalogError(e.Class, fmt.Errorf("duplicate class"))
		}
		out[e.qualified] = e
	}
	return out, nil
}

// Has reports whether the catalog describes a type, without building it
func (c *Catalog) Has(qualified string) bool {
	_, ok := c.entries[qualified]
	return ok
}

// HasPackage reports whether any type lives in pkg
func (c *Catalog) HasPackage(pkg string) bool {
	_, ok := c.packages[pkg]
	return ok
}

// Packages returns the names of all packages holding types, sorted
func (c *Catalog) Packages() []string {
	out := make([]string, 0, len(c.packages))
	for pkg := range c.packages {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// PackageTypes returns the qualified names of the top-level types in pkg
func (c *Catalog) PackageTypes(pkg string) []string {
	return c.packages[pkg]
}

// Collects returns the annotations a library annotation collector stands for
func (c *Catalog) Collects(qualified string) []string {
	if e, ok := c.entries[qualified]; ok {
		return e.Collects
	}
	return nil
}

// Lookup returns the declaration of a binary type, or nil. A type whose
// construction is already under way in the calling chain is returned in its
// partially-built state.
func (c *Catalog) Lookup(qualified string) *models.Declaration {
	if d, ok := c.built.Get(qualified); ok {
		return d
	}
	if _, ok := c.entries[qualified]; !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(qualified)
}

// Builds returns how many declarations were materialized so far
func (c *Catalog) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

func (c *Catalog) lookupLocked(qualified string) *models.Declaration {
	if d, ok := c.built.Get(qualified); ok {
		return d
	}
	if d, ok := c.building[qualified]; ok {
		return d
	}
	e, ok := c.entries[qualified]
	if !ok {
		return nil
	}
	d := &models.Declaration{
		Name:               types.SimpleName(e.qualified),
		QualifiedName:      e.qualified,
		BinaryName:         strings.ReplaceAll(e.binary, ".", "/"),
		Origin:             models.OriginLibrary,
		ExplicitVisibility: true,
		Span:               models.NoSpan,
		NameSpan:           models.NoSpan,
		BodySpan:           models.NoSpan,
	}
	c.building[qualified] = d
	c.builds++
	(&builder{cat: c, entry: e, decl: d}).build()
	delete(c.building, qualified)
	c.built.Set(qualified, d)
	return d
}
