// Package pydiscover implements the syntax-tree discoverer and the
// cross-module semantic discoverer: walking a single Python file's
// tree-sitter AST to find pytest items, expanding
// @parametrize decorators into concrete nodeids, and resolving
// same-module and cross-module class inheritance so inherited test
// methods are attributed to every subclass that should run them.
package pydiscover

// Config controls which names pytest would treat as test classes,
// functions, and methods. Defaults match pytest's own.
type Config struct {
	PythonFiles     []string
	PythonClasses   []string
	PythonFunctions []string
}

// DefaultConfig returns pytest's documented default discovery patterns.
func DefaultConfig() Config {
	return Config{
		PythonFiles:     []string{"test_*.py", "*_test.py"},
		PythonClasses:   []string{"Test*"},
		PythonFunctions: []string{"test*"},
	}
}

func (c Config) isTestFunction(name string) bool {
	return matchesAny(c.PythonFunctions, name)
}

func (c Config) isTestClass(name string) bool {
	return matchesAny(c.PythonClasses, name)
}
