package lang

// Env is an ordered stack of local scopes, innermost last. The type checker
// uses Env[Type]; the executor uses Env[*Cell].
type Env[T any] []map[string]T

// NewEnv returns an environment whose single outermost scope holds a copy of
// base.
func NewEnv[T any](base map[string]T) Env[T] {
	scope := make(map[string]T, len(base))
	for name, v := range base {
		scope[name] = v
	}
	return Env[T]{scope}
}

// Depth returns the number of open scopes.
func (env Env[T]) Depth() int { return len(env) }

// Enter opens a new innermost scope.
func (env *Env[T]) Enter() { *env = append(*env, make(map[string]T)) }

// Exit closes the innermost scope; it returns false if only the outermost
// scope remains, which is never closed.
func (env *Env[T]) Exit() bool {
	n := len(*env)
	if n <= 1 {
		return false
	}
	(*env)[n-1] = nil
	*env = (*env)[:n-1]
	return true
}

// Declare binds name in the innermost scope; it returns false if the name is
// already bound there.
func (env Env[T]) Declare(name string, v T) bool {
	scope := env[len(env)-1]
	if _, defined := scope[name]; defined {
		return false
	}
	scope[name] = v
	return true
}

// Lookup finds name, searching from the innermost scope outward.
func (env Env[T]) Lookup(name string) (v T, found bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if v, found = env[i][name]; found {
			return v, true
		}
	}
	return v, false
}

// Snapshot flattens every visible binding into one map, inner bindings
// shadowing outer ones.
func (env Env[T]) Snapshot() map[string]T {
	snap := make(map[string]T)
	for i := len(env) - 1; i >= 0; i-- {
		for name, v := range env[i] {
			if _, shadowed := snap[name]; !shadowed {
				snap[name] = v
			}
		}
	}
	return snap
}
