package serializer

import (
	"sort"
	"sync"

	"github.com/jward/cppdriver/internal/ast"
)

// fieldPrefix is prepended to every child field name.
const fieldPrefix = "Prop_"

// denied lists accessors that are not structural children, or that
// kind-specific logic emits itself.
var denied = map[string]bool{
	"Parent":            true,
	"TranslationUnit":   true,
	"OriginalNode":      true,
	"RawSignature":      true,
	"FileLocation":      true,
	"NodeLocations":     true,
	"PropertyInParent":  true,
	"ImplicitNames":     true,
	"Problem":           true,
	"LastName":          true,
	"PreprocStatements": true,
	"TypeNode":          true,
}

// Field is one structural child field of a node kind.
type Field struct {
	// Name is the emitted field name, e.g. "Prop_Declarators".
	Name     string
	Accessor string
	Multi    bool
	get      func(ast.Node) ([]ast.Node, error)
}

// Children returns n's children through this field.
func (f Field) Children(n ast.Node) ([]ast.Node, error) {
	return f.get(n)
}

// Cache memoizes each kind's child fields for the life of the process. The
// result for a kind depends only on the kind, so entries are never
// invalidated.
type Cache struct {
	mu    sync.RWMutex
	kinds map[ast.Kind][]Field
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{kinds: make(map[ast.Kind][]Field)}
}

// FieldsFor returns kind's child fields sorted by accessor name. Unknown
// kinds have no fields.
func (c *Cache) FieldsFor(kind ast.Kind) []Field {
	c.mu.RLock()
	fields, ok := c.kinds[kind]
	c.mu.RUnlock()
	if ok {
		return fields
	}

	fields = discover(kind)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.kinds[kind]; ok {
		return existing
	}
	c.kinds[kind] = fields
	return fields
}

// Len reports how many kinds have been seen.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.kinds)
}

func discover(kind ast.Kind) []Field {
	var fields []Field
	for _, acc := range ast.ChildrenOf(kind) {
		if acc.LinkBack || denied[acc.Name] {
			continue
		}
		fields = append(fields, Field{
			Name:     fieldPrefix + acc.Name,
			Accessor: acc.Name,
			Multi:    acc.Multi,
			get:      acc.Get,
		})
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Accessor < fields[j].Accessor
	})
	return fields
}
