package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/risor-io/risor/object"
)

// makeKindRolesFn creates the "kind_roles" host function.
//
// kind_roles(kind, roles) → nil
func makeKindRolesFn(rules *Rules) *object.Builtin {
	return object.NewBuiltin("kind_roles", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("kind_roles", 2, len(args))
		}
		kind, err := toString(args[0])
		if err != nil {
			return object.Errorf("kind_roles: kind %v", err)
		}
		roles, err := toStringList(args[1])
		if err != nil {
			return object.Errorf("kind_roles: roles %v", err)
		}
		rules.addKind(kind, roles)
		return object.Nil
	})
}

// makeValueRolesFn creates the "value_roles" host function. The rule
// applies to objects of kind whose field holds value; kind "*" matches
// every kind.
//
// value_roles(kind, field, value, roles) → nil
func makeValueRolesFn(rules *Rules) *object.Builtin {
	return object.NewBuiltin("value_roles", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 4 {
			return object.NewArgsError("value_roles", 4, len(args))
		}
		kind, err := toString(args[0])
		if err != nil {
			return object.Errorf("value_roles: kind %v", err)
		}
		field, err := toString(args[1])
		if err != nil {
			return object.Errorf("value_roles: field %v", err)
		}
		value, err := scalarText(args[2])
		if err != nil {
			return object.Errorf("value_roles: value %v", err)
		}
		roles, err := toStringList(args[3])
		if err != nil {
			return object.Errorf("value_roles: roles %v", err)
		}
		rules.addValue(kind, field, value, roles)
		return object.Nil
	})
}

func toString(obj object.Object) (string, error) {
	s, ok := obj.(*object.String)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", obj.Type())
	}
	return s.Value(), nil
}

func toStringList(obj object.Object) ([]string, error) {
	l, ok := obj.(*object.List)
	if !ok {
		return nil, fmt.Errorf("expected list, got %s", obj.Type())
	}
	out := make([]string, 0, len(l.Value()))
	for _, item := range l.Value() {
		s, err := toString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// scalarText renders a rule value the way scalarKey renders the matching
// document value.
func scalarText(obj object.Object) (string, error) {
	switch v := obj.(type) {
	case *object.String:
		return v.Value(), nil
	case *object.Bool:
		return strconv.FormatBool(v.Value()), nil
	case *object.Int:
		return strconv.FormatInt(v.Value(), 10), nil
	}
	return "", fmt.Errorf("expected string, bool or int, got %s", obj.Type())
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	log *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.log.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.log.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.log.Error(msg, "source", "script")
}
