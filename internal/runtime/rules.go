package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/jward/cppdriver/internal/serializer"
)

// RolesField is the key Annotate adds to matching objects.
const RolesField = "Roles"

const anyKind = "*"

type valueRule struct {
	field string
	value string
	roles []string
}

// Rules maps serialized node kinds and scalar values to role names. Rules
// are built once by a script and are read-only afterwards, so Annotate is
// safe for concurrent use.
type Rules struct {
	kinds  map[string][]string
	values map[string][]valueRule

	// Hash is the SHA-256 of the script source the rules came from.
	Hash string
}

// NewRules returns an empty rule set. Annotating with it changes nothing.
func NewRules() *Rules {
	return &Rules{
		kinds:  make(map[string][]string),
		values: make(map[string][]valueRule),
	}
}

func (r *Rules) addKind(kind string, roles []string) {
	r.kinds[kind] = appendUnique(r.kinds[kind], roles...)
}

func (r *Rules) addValue(kind, field, value string, roles []string) {
	r.values[kind] = append(r.values[kind], valueRule{field: field, value: value, roles: roles})
}

// Len reports the number of rules.
func (r *Rules) Len() int {
	n := len(r.kinds)
	for _, vs := range r.values {
		n += len(vs)
	}
	return n
}

// LoadRules evaluates the annotation script of dialect.
func (r *Runtime) LoadRules(ctx context.Context, dialect string) (*Rules, error) {
	path := AnnotationScriptPath(dialect)
	src, err := r.ReadScript(path)
	if err != nil {
		return nil, err
	}
	return r.LoadRulesSource(ctx, src, path)
}

// LoadRulesSource evaluates annotation rules from source. label names the
// source in errors.
func (r *Runtime) LoadRulesSource(ctx context.Context, source, label string) (*Rules, error) {
	rules := NewRules()
	sum := sha256.Sum256([]byte(source))
	rules.Hash = hex.EncodeToString(sum[:])

	globals := map[string]any{
		"kind_roles":  makeKindRolesFn(rules),
		"value_roles": makeValueRolesFn(rules),
	}
	if err := r.Exec(ctx, source, label, globals); err != nil {
		return nil, err
	}
	r.log.Debug("annotation rules loaded", "script", label, "rules", rules.Len())
	return rules, nil
}

// Annotate adds a Roles list to every object in doc that a rule matches.
// Kind roles come first, then value roles in the order they were declared.
func (r *Rules) Annotate(doc *serializer.Object) {
	if doc == nil || r.Len() == 0 {
		return
	}
	doc.Each(func(o *serializer.Object) {
		if roles := r.rolesFor(o); len(roles) > 0 {
			o.Set(RolesField, roles)
		}
	})
}

func (r *Rules) rolesFor(o *serializer.Object) []string {
	kind := o.String("IASTClass")
	if kind == "" {
		return nil
	}
	roles := appendUnique(nil, r.kinds[kind]...)
	for _, k := range []string{kind, anyKind} {
		for _, rule := range r.values[k] {
			v, ok := o.Get(rule.field)
			if !ok {
				continue
			}
			if s, ok := scalarKey(v); ok && s == rule.value {
				roles = appendUnique(roles, rule.roles...)
			}
		}
	}
	return roles
}

func scalarKey(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	}
	return "", false
}

func appendUnique(dst []string, items ...string) []string {
next:
	for _, it := range items {
		for _, have := range dst {
			if have == it {
				continue next
			}
		}
		dst = append(dst, it)
	}
	return dst
}

// String summarizes the rule set for logs.
func (r *Rules) String() string {
	return fmt.Sprintf("rules(%d, %.12s)", r.Len(), r.Hash)
}
