package cheqed

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"
	starsyntax "go.starlark.net/syntax"
)

//go:embed theories/*.star
var builtinTheories embed.FS

// OperatorDecl declares a prefix or infix operator over a constant.
type OperatorDecl struct {
	Name       string
	Arity      int
	Assoc      string
	Precedence int
}

// SetBuilderDecl declares "{x in X | phi}" as sugar for Constant(X, \x.phi).
type SetBuilderDecl struct {
	Constant string
	Member   string
}

// AxiomDecl is a named axiom in concrete syntax.
type AxiomDecl struct {
	Name    string
	Formula string
}

// Declarations is everything a set of theory scripts declared, in order.
type Declarations struct {
	Theories    []string
	Types       []string
	Constants   []string
	Operators   []OperatorDecl
	Binders     []string
	SetBuilders []SetBuilderDecl
	Definitions []string
	Axioms      []AxiomDecl
}

// Loader finds theory scripts by name in the built-in theories and any
// extra directories. Later directories shadow earlier ones.
type Loader struct {
	sources []fs.FS
}

// NewLoader returns a loader that searches dirs after the built-in
// theories.
func NewLoader(dirs ...string) *Loader {
	builtin, err := fs.Sub(builtinTheories, "theories")
	if err != nil {
		panic(err)
	}
	l := &Loader{sources: []fs.FS{builtin}}
	for _, dir := range dirs {
		l.sources = append(l.sources, os.DirFS(dir))
	}
	return l
}

// source returns the text of the named theory from the last source that
// has it.
func (l *Loader) source(name string) (string, []byte, error) {
	file := name + ".star"
	for i := len(l.sources) - 1; i >= 0; i-- {
		src, err := fs.ReadFile(l.sources[i], file)
		if err == nil {
			return file, src, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("unknown theory %q", name)
}

// Declarations runs the named theory scripts in order and collects what
// they declare.
func (l *Loader) Declarations(names ...string) (*Declarations, error) {
	decls := &Declarations{}
	for _, name := range names {
		file, src, err := l.source(name)
		if err != nil {
			return nil, err
		}
		if err := decls.exec(name, file, src); err != nil {
			return nil, err
		}
		decls.Theories = append(decls.Theories, name)
	}
	return decls, nil
}

func (decls *Declarations) exec(name, file string, src []byte) error {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			slog.Debug("theory script", "theory", name, "msg", msg)
		},
	}
	_, err := starlark.ExecFileOptions(&starsyntax.FileOptions{}, thread, file, src, decls.builtins())
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return errors.Errorf("theory %s: %s", name, evalErr.Backtrace())
		}
		return errors.Wrapf(err, "theory %s", name)
	}
	return nil
}

func (decls *Declarations) builtins() starlark.StringDict {
	declare := func(name string, into *[]string) *starlark.Builtin {
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
				return nil, err
			}
			*into = append(*into, s)
			return starlark.None, nil
		})
	}

	return starlark.StringDict{
		"type":       declare("type", &decls.Types),
		"constant":   declare("constant", &decls.Constants),
		"binder":     declare("binder", &decls.Binders),
		"definition": declare("definition", &decls.Definitions),

		"operator": starlark.NewBuiltin("operator", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var op OperatorDecl
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"name", &op.Name,
				"arity", &op.Arity,
				"associativity", &op.Assoc,
				"precedence", &op.Precedence,
			); err != nil {
				return nil, err
			}
			if op.Arity != 1 && op.Arity != 2 {
				return nil, fmt.Errorf("%s: arity of %s must be 1 or 2, got %d", b.Name(), op.Name, op.Arity)
			}
			decls.Operators = append(decls.Operators, op)
			return starlark.None, nil
		}),

		"set_builder": starlark.NewBuiltin("set_builder", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var sb SetBuilderDecl
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"constant", &sb.Constant,
				"member", &sb.Member,
			); err != nil {
				return nil, err
			}
			decls.SetBuilders = append(decls.SetBuilders, sb)
			return starlark.None, nil
		}),

		"axiom": starlark.NewBuiltin("axiom", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var ax AxiomDecl
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"name", &ax.Name,
				"formula", &ax.Formula,
			); err != nil {
				return nil, err
			}
			decls.Axioms = append(decls.Axioms, ax)
			return starlark.None, nil
		}),
	}
}
