package pyconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/rtest-go/pkg/pyconfig"
)

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestResolve_NoConfigFile(t *testing.T) {
	cfg, err := pyconfig.Resolve(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Empty(t, cfg.TestPaths)
}

func TestResolve_PytestIni(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pytest.ini", `[pytest]
testpaths = tests integration
python_files = test_*.py check_*.py
norecursedirs = .venv build
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "pytest.ini", cfg.Source)
	assert.Equal(t, []string{"tests", "integration"}, cfg.TestPaths)
	assert.Equal(t, []string{"test_*.py", "check_*.py"}, cfg.PythonFiles)
	assert.Equal(t, []string{".venv", "build"}, cfg.NoRecurseDirs)
}

func TestResolve_PytestIniMultilineValues(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pytest.ini", `[pytest]
python_files =
    test_*.py
    check_*.py
python_classes = Test*
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_*.py", "check_*.py"}, cfg.PythonFiles)
	assert.Equal(t, []string{"Test*"}, cfg.PythonClasses)
}

func TestResolve_PyprojectToml(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pyproject.toml", `[build-system]
requires = ["setuptools"]

[tool.pytest.ini_options]
testpaths = ["tests"]
python_functions = ["test_*", "spec_*"]
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "pyproject.toml", cfg.Source)
	assert.Equal(t, []string{"tests"}, cfg.TestPaths)
	assert.Equal(t, []string{"test_*", "spec_*"}, cfg.PythonFunctions)
}

func TestResolve_SetupCfg(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "setup.cfg", `[metadata]
name = demo

[tool:pytest]
python_classes = Check* Test*
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "setup.cfg", cfg.Source)
	assert.Equal(t, []string{"Check*", "Test*"}, cfg.PythonClasses)
}

func TestResolve_PytestIniWinsOverPyproject(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pytest.ini", `[pytest]
testpaths = from_ini
`)
	writeConfig(t, root, "pyproject.toml", `[tool.pytest.ini_options]
testpaths = ["from_toml"]
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "pytest.ini", cfg.Source)
	assert.Equal(t, []string{"from_ini"}, cfg.TestPaths)
}

func TestResolve_FileWithoutSectionFallsThrough(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pyproject.toml", `[tool.black]
line-length = 100
`)
	writeConfig(t, root, "setup.cfg", `[tool:pytest]
testpaths = tests
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "setup.cfg", cfg.Source, "a file lacking the pytest section must not shadow a later one that has it")
	assert.Equal(t, []string{"tests"}, cfg.TestPaths)
}

func TestResolve_IgnoresUnknownKeysAndComments(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "pytest.ini", `[pytest]
# a comment
addopts = -ra
testpaths = tests
markers =
    slow
`)

	cfg, err := pyconfig.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"tests"}, cfg.TestPaths)
	assert.Empty(t, cfg.PythonFiles)
}
