package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"girder/pkg/assembly"
	"girder/pkg/part"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source into a form zygomys accepts:
//
//   - :keyword tokens become "__kw_keyword" string literals, so builtins
//     can take keyword arguments without registering keyword globals
//     that would shadow user variables;
//   - kebab-case identifiers become underscore form (zygomys reads an
//     interior hyphen as subtraction): angle-bracket -> angle_bracket;
//   - ; line comments become // comments.
//
// String literal contents pass through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy double-quoted strings through verbatim.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Same for backtick strings.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys only knows // line comments, not the Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// :keyword -> "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// := stays an assignment.
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters is kebab-case, not a
		// minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPartRef wraps an assembly.PartID so parts placed by one builtin
// can be handed to another.
type sexpPartRef struct {
	id assembly.PartID
}

func (p *sexpPartRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %s)", p.id.Short())
}
func (p *sexpPartRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toPartRef extracts a PartID from a sexpPartRef.
func toPartRef(s zygo.Sexp) (assembly.PartID, error) {
	if ref, ok := s.(*sexpPartRef); ok {
		return ref.id, nil
	}
	return "", fmt.Errorf("expected part reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the assembly DSL builtins into a zygomys
// environment. The builtins drive the provided store through the same
// commands the interactive UI uses.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens become recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, store *assembly.Store) {
	placePartBuiltin(env, store, "strip", part.Strip)
	placePartBuiltin(env, store, "corner_bracket", part.CornerBracket)
	placePartBuiltin(env, store, "angle_bracket", part.AngleBracket)

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (attach a 2 b 0) pairs hole 2 of part a with hole 0 of part b,
	// running the same hole-selection path as interactive clicking.
	// -----------------------------------------------------------------------
	env.AddFunction("attach", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("attach requires (attach part hole part hole), got %d arguments", len(args))
		}

		a, err := toPartRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: first part: %w", err)
		}
		holeA, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: first hole: %w", err)
		}
		b, err := toPartRef(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: second part: %w", err)
		}
		holeB, err := toInt(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: second hole: %w", err)
		}
		if a == b {
			return zygo.SexpNull, fmt.Errorf("attach: cannot pair a part with itself")
		}

		if err := store.SelectHole(a, holeA); err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: %w", err)
		}
		if err := store.SelectHole(b, holeB); err != nil {
			store.ResetSelection()
			return zygo.SexpNull, fmt.Errorf("attach: %w", err)
		}

		return &sexpPartRef{id: b}, nil
	})

	// -----------------------------------------------------------------------
	// (spin p 1.5708) rotates part p about its local Z axis, in radians,
	// subject to joint constraints.
	// -----------------------------------------------------------------------
	env.AddFunction("spin", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("spin requires (spin part radians), got %d arguments", len(args))
		}

		id, err := toPartRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spin: part: %w", err)
		}
		delta, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spin: angle: %w", err)
		}

		if err := store.RotatePart(id, delta); err != nil {
			return zygo.SexpNull, fmt.Errorf("spin: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (detach-part p) removes a part and cascades its joints.
	// -----------------------------------------------------------------------
	env.AddFunction("detach_part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("detach-part requires exactly 1 argument, got %d", len(args))
		}

		id, err := toPartRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("detach-part: %w", err)
		}
		if err := store.RemovePart(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("detach-part: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (clear) empties the assembly.
	// -----------------------------------------------------------------------
	env.AddFunction("clear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		store.ClearAll()
		return zygo.SexpNull, nil
	})
}

// placePartBuiltin registers a part-placing builtin:
//
//	(strip :length 5 :at (vec3 0 0 0) :color "#4A90D9")
//	(corner-bracket :at (vec3 10 0 0))
//	(angle-bracket)
//
// Each returns a part reference for use with attach, spin, and
// detach-part.
func placePartBuiltin(env *zygo.Zlisp, store *assembly.Store, name string, typ part.Type) {
	env.AddFunction(name, func(env *zygo.Zlisp, fname string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		props := assembly.InitialProps{}

		if v, ok := pa.kw["length"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: length: %w", name, err)
			}
			props.Length = n
		}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: at: %w", name, err)
			}
			props.Position = vec
		}
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: color: %w", name, err)
			}
			props.Color = s
		}

		id, err := store.AddPart(typ, props)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpPartRef{id: id}, nil
	})
}
