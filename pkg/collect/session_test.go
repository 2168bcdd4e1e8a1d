package collect_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/specvital/rtest-go/pkg/collect"
	"github.com/specvital/rtest-go/pkg/pyconfig"
)

func writeFile(root, rel, content string) {
	full := filepath.Join(root, rel)
	Expect(os.MkdirAll(filepath.Dir(full), 0o755)).To(Succeed())
	Expect(os.WriteFile(full, []byte(content), 0o644)).To(Succeed())
}

func newSessionConfig(root string) collect.SessionConfig {
	cfg, err := pyconfig.Resolve(root)
	Expect(err).NotTo(HaveOccurred())
	return collect.NewSessionConfig(root, cfg)
}

var _ = Describe("PerformCollect", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
	})

	// Cross-module inheritance, exercised end to end through a real
	// walked tree rather than two hand-seeded ParsedModules.
	It("re-collects an imported test base under the importing module as well as under its subclass", func() {
		writeFile(root, "a.py", "class TestBase:\n    def test_m(self):\n        pass\n")
		writeFile(root, "test_b.py", "from a import TestBase\n\nclass TestChild(TestBase):\n    def test_n(self):\n        pass\n")

		result, err := collect.PerformCollect(context.Background(), nil, newSessionConfig(root))
		Expect(err).NotTo(HaveOccurred())

		var ids []string
		for _, f := range result.Functions {
			ids = append(ids, f.Nodeid)
		}
		Expect(ids).To(ConsistOf(
			"test_b.py::TestBase::test_m",
			"test_b.py::TestChild::test_m",
			"test_b.py::TestChild::test_n",
		))
	})

	// One file collects cleanly, the other fails at the collection
	// boundary; the failure is recorded as an error and its file is
	// flagged uncertain, without aborting the walk.
	It("recovers a per-file parse failure without aborting the walk", func() {
		writeFile(root, "test_good.py", "def test_ok():\n    pass\n")
		// tree-sitter is error-tolerant, so force a failure at the
		// collection boundary instead: a dangling symlink that matches
		// the test-file pattern but cannot be read.
		badPath := filepath.Join(root, "test_bad.py")
		Expect(os.Symlink(filepath.Join(root, "missing-target.py"), badPath)).To(Succeed())

		result, err := collect.PerformCollect(context.Background(), nil, newSessionConfig(root))
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Errors).NotTo(BeEmpty())
		Expect(result.UncertainFiles).To(ContainElement("test_bad.py"))

		var ids []string
		for _, f := range result.Functions {
			ids = append(ids, f.Nodeid)
		}
		Expect(ids).To(ConsistOf("test_good.py::test_ok"))
	})

	It("walks directories in sorted order so repeated runs are bitwise identical", func() {
		writeFile(root, "test_z.py", "def test_z():\n    pass\n")
		writeFile(root, "test_a.py", "def test_a():\n    pass\n")
		writeFile(root, "sub/test_m.py", "def test_m():\n    pass\n")

		cfg := newSessionConfig(root)
		first, err := collect.PerformCollect(context.Background(), nil, cfg)
		Expect(err).NotTo(HaveOccurred())
		second, err := collect.PerformCollect(context.Background(), nil, cfg)
		Expect(err).NotTo(HaveOccurred())

		idsOf := func(r collect.Result) []string {
			ids := make([]string, len(r.Functions))
			for i, f := range r.Functions {
				ids[i] = f.Nodeid
			}
			return ids
		}
		Expect(idsOf(first)).To(Equal(idsOf(second)))
		Expect(idsOf(first)).To(Equal([]string{
			"sub/test_m.py::test_m",
			"test_a.py::test_a",
			"test_z.py::test_z",
		}))
	})

	It("emits directory, module, and function collectors in walk order", func() {
		writeFile(root, "sub/test_m.py", "def test_m():\n    pass\n")
		writeFile(root, "test_a.py", "def test_a():\n    pass\n")

		result, err := collect.PerformCollect(context.Background(), nil, newSessionConfig(root))
		Expect(err).NotTo(HaveOccurred())

		type entry struct {
			kind   collect.Kind
			nodeid string
		}
		var got []entry
		for _, c := range result.Collectors {
			got = append(got, entry{c.Kind, c.Nodeid})
		}
		Expect(got).To(Equal([]entry{
			{collect.KindDirectory, "sub"},
			{collect.KindModule, "sub/test_m.py"},
			{collect.KindFunction, "sub/test_m.py::test_m"},
			{collect.KindModule, "test_a.py"},
			{collect.KindFunction, "test_a.py::test_a"},
		}))

		for _, c := range result.Collectors {
			if c.Kind == collect.KindFunction {
				Expect(c.Function).NotTo(BeNil())
				Expect(c.Function.Nodeid).To(Equal(c.Nodeid))
			} else {
				Expect(c.Function).To(BeNil())
			}
		}
	})

	It("skips __pycache__ directories entirely", func() {
		writeFile(root, "test_real.py", "def test_real():\n    pass\n")
		writeFile(root, "__pycache__/test_real.cpython-312.pyc", "not python source")

		result, err := collect.PerformCollect(context.Background(), nil, newSessionConfig(root))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Errors).To(BeEmpty())

		var ids []string
		for _, f := range result.Functions {
			ids = append(ids, f.Nodeid)
		}
		Expect(ids).To(ConsistOf("test_real.py::test_real"))
	})
})
