package script

import "math"

// Standard names the harness binds before a script runs.
const (
	NameMain      = "__name__"
	NameArgv      = "argv"
	NameDataRoot  = "data_root"
	NameThreshold = "threshold"

	// MainModule is the value of __name__ for the directly executed script.
	MainModule = "__main__"
)

// Env is the ordered set of name bindings a script executes against.
type Env struct {
	names  []string
	values map[string]any
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{values: make(map[string]any)}
}

// Bind sets name to v. Rebinding keeps the name's original position.
func (e *Env) Bind(name string, v any) {
	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}
	e.values[name] = v
}

// Lookup returns the value bound to name.
func (e *Env) Lookup(name string) (any, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Names returns the bound names in first-binding order.
func (e *Env) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Threshold returns the value bound to "threshold", if it is a finite,
// non-negative number.
func (e *Env) Threshold() (float64, bool) {
	v, ok := e.values[NameThreshold]
	if !ok {
		return 0, false
	}
	if checkThreshold(v) != nil {
		return 0, false
	}
	return toFloat(v)
}

// checkThreshold rejects threshold values that are not finite,
// non-negative numbers.
func checkThreshold(v any) error {
	f, ok := toFloat(v)
	if !ok {
		return raise(KindType, "threshold must be a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return raise(KindValue, "threshold must be finite and non-negative, got %v", f)
	}
	return nil
}

// IsMain reports whether __name__ is bound to "__main__".
func (e *Env) IsMain() bool {
	v, _ := e.values[NameMain].(string)
	return v == MainModule
}
