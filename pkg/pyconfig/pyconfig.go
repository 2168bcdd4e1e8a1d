// Package pyconfig reads the handful of pytest configuration keys this
// tool honors: testpaths, python_files, python_classes,
// python_functions, norecursedirs, ignore_patterns. It deliberately
// does not carry a general TOML/INI parser: the six flat keys read
// here need only a line-based section scanner.
package pyconfig

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config holds the declared discovery options this tool understands.
// Unknown keys in any source file are ignored.
type Config struct {
	TestPaths       []string
	PythonFiles     []string
	PythonClasses   []string
	PythonFunctions []string
	NoRecurseDirs   []string
	IgnorePatterns  []string

	// Source is the config file this Config was read from, for
	// diagnostics; empty if no config file was found.
	Source string
}

// candidate names pytest itself checks, in its own documented
// precedence order: pytest.ini first, then pyproject.toml, then
// setup.cfg. tox.ini sits in pytest's real precedence chain too but is
// not checked here.
var candidates = []struct {
	name    string
	section string
	isTOML  bool
}{
	{"pytest.ini", "pytest", false},
	{"pyproject.toml", "tool.pytest.ini_options", true},
	{"setup.cfg", "tool:pytest", false},
}

// Resolve finds and parses the first recognized config file under
// root, following pytest's own documented precedence. An absent
// config file is not an error: the returned Config is simply empty,
// and callers fall back to DefaultConfig-style discovery patterns.
func Resolve(root string) (Config, error) {
	for _, c := range candidates {
		path := filepath.Join(root, c.name)
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, found := parseSection(string(content), c.section, c.isTOML)
		if !found {
			continue
		}
		cfg.Source = c.name
		return cfg, nil
	}
	return Config{}, nil
}

var sectionHeaderPattern = regexp.MustCompile(`^\[([^\]]+)\]\s*$`)

// parseSection scans content line by line for a `[section]` header
// (INI-style) or a `[section]` TOML table header — both have identical
// bracket syntax at the line level, which is all this reader needs —
// then reads `key = value` pairs until the next section header or EOF.
func parseSection(content, section string, isTOML bool) (Config, bool) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	inSection := false
	found := false
	var cfg Config

	var pendingKey string
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := sectionHeaderPattern.FindStringSubmatch(trimmed); m != nil {
			inSection = m[1] == section
			if inSection {
				found = true
			}
			pendingKey = ""
			continue
		}
		if !inSection || trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		// Continuation line: an indented value with no "=" belongs to
		// the previous key (pytest.ini/setup.cfg's own multi-line list
		// style: "python_files =\n    test_*.py\n    check_*.py").
		indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		if pendingKey != "" && indented && !strings.Contains(trimmed, "=") {
			assign(&cfg, pendingKey, splitValues(trimmed, isTOML)...)
			continue
		}

		key, value, ok := splitKeyValue(trimmed)
		if !ok {
			continue
		}
		pendingKey = key
		if value != "" {
			assign(&cfg, key, splitValues(value, isTOML)...)
		}
	}

	return cfg, found
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

// splitValues interprets a key's value as either a TOML array literal
// (`["a", "b"]`) or pytest.ini's own whitespace-separated list form.
// testpaths is the one key pytest treats as relative paths rather than
// glob patterns; this reader makes no distinction since both are plain
// strings to the caller.
func splitValues(value string, isTOML bool) []string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		inner := value[1 : len(value)-1]
		var out []string
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			part = strings.Trim(part, `"'`)
			if part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if isTOML {
		return []string{strings.Trim(value, `"'`)}
	}
	return strings.Fields(value)
}

func assign(cfg *Config, key string, values ...string) {
	switch key {
	case "testpaths":
		cfg.TestPaths = append(cfg.TestPaths, values...)
	case "python_files":
		cfg.PythonFiles = append(cfg.PythonFiles, values...)
	case "python_classes":
		cfg.PythonClasses = append(cfg.PythonClasses, values...)
	case "python_functions":
		cfg.PythonFunctions = append(cfg.PythonFunctions, values...)
	case "norecursedirs":
		cfg.NoRecurseDirs = append(cfg.NoRecurseDirs, values...)
	case "ignore_patterns":
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, values...)
	}
}
