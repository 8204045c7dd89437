package serializer

import "github.com/jward/cppdriver/internal/ast"

// directives renders the request's preprocessor statements in source order.
func (s *Serializer) directives() []*Object {
	out := make([]*Object, 0, len(s.req.Directives))
	for _, d := range s.req.Directives {
		if d == nil {
			continue
		}
		out = append(out, s.directive(d))
	}
	return out
}

func (s *Serializer) directive(d ast.Preprocessor) *Object {
	obj := NewObject()
	s.common(obj, d)

	switch d := d.(type) {
	case *ast.MacroDefinition:
		obj.Set("Name", d.Name)
		obj.Set("IsActive", d.Active)
		obj.Set("MacroBodyText", d.Body)

		body := NewObject()
		body.Set("IASTClass", "BodyPosition")
		setLocation(body, d.BodyLoc)
		obj.Set(fieldPrefix+"MacroBodyLocation", body)

		if exps := s.req.Macros.ExpansionsOf(d); len(exps) > 0 {
			list := make([]*Object, 0, len(exps))
			for _, r := range exps {
				e := NewObject()
				e.Set("IASTClass", "ExpansionLocation")
				setLocation(e, r)
				list = append(list, e)
			}
			obj.Set(fieldPrefix+"Expansions", list)
		}
		if d.Params != nil {
			obj.Set("Parameters", append([]string{}, d.Params...))
		}
	case *ast.Conditional:
		switch d.CondKind {
		case ast.KindIf, ast.KindElif:
			obj.Set("Condition", d.Condition)
			obj.Set("IsTaken", d.Taken)
		case ast.KindIfdef, ast.KindIfndef:
			obj.Set("Condition", d.Condition)
			obj.Set("IsTaken", d.Taken)
			obj.Set("MacroReference", d.MacroReference)
		case ast.KindElse:
			obj.Set("IsTaken", d.Taken)
		}
	case *ast.Inclusion:
		obj.Set("Name", d.Name)
		obj.Set("Path", d.Path)
		obj.Set("Resolved", d.Resolved)
		obj.Set("IsSystem", d.System)
	case *ast.ErrorDirective:
		obj.Set("ErrorMsg", d.Message)
	case *ast.Pragma:
		obj.Set("Message", d.Message)
		obj.Set("IsPragmaOperator", d.Operator)
	case *ast.Undef:
		obj.Set("Name", d.Name)
		obj.Set("IsActive", d.Active)
	}
	return obj
}
