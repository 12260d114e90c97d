package analysis_test

import (
	"fmt"
	"os"
	"path/filepath"

	"gitgrok.app/api/internal/analysis"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func relPaths(files []analysis.DiscoveredFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

var _ = Describe("Discover", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
	})

	It("keeps allow-listed source files outside excluded directories", func() {
		writeFile(root, "main.go", 10)
		writeFile(root, "src/app.tsx", 10)
		writeFile(root, "src/Lib.PY", 10)
		writeFile(root, "README.md", 10)
		writeFile(root, "node_modules/dep/index.js", 10)
		writeFile(root, ".git/hooks/pre-commit.py", 10)
		writeFile(root, "tests/helper_test.go", 10)
		writeFile(root, "vendor/x/y.go", 10)

		files, err := analysis.Discover(root, analysis.DefaultDiscoveryLimits)
		Expect(err).NotTo(HaveOccurred())
		Expect(relPaths(files)).To(Equal([]string{"main.go", "src/Lib.PY", "src/app.tsx"}))
		Expect(files[0].Path).To(Equal(filepath.Join(root, "main.go")))
		Expect(files[0].Size).To(Equal(int64(10)))
	})

	It("walks depth-first in lexical order", func() {
		writeFile(root, "b.go", 1)
		writeFile(root, "a/z.go", 1)
		writeFile(root, "a/b/c.go", 1)
		writeFile(root, "c.go", 1)

		files, err := analysis.Discover(root, analysis.DefaultDiscoveryLimits)
		Expect(err).NotTo(HaveOccurred())
		Expect(relPaths(files)).To(Equal([]string{"a/b/c.go", "a/z.go", "b.go", "c.go"}))
	})

	It("enforces all three caps on a tree that exceeds each of them", func() {
		limits := analysis.DiscoveryLimits{MaxFiles: 5, MaxFileBytes: 100, MaxTotalBytes: 300}
		writeFile(root, "a_huge.go", 1_000)
		for i := range 20 {
			writeFile(root, fmt.Sprintf("pkg/file%02d.go", i), 80)
		}

		files, err := analysis.Discover(root, limits)
		Expect(err).NotTo(HaveOccurred())

		Expect(len(files)).To(BeNumerically("<=", limits.MaxFiles))
		var total int64
		for _, f := range files {
			Expect(f.Size).To(BeNumerically("<=", limits.MaxFileBytes))
			Expect(f.RelPath).NotTo(Equal("a_huge.go"))
			total += f.Size
		}
		Expect(total).To(BeNumerically("<=", limits.MaxTotalBytes))
		Expect(files).To(HaveLen(3))
	})

	It("stops at the file count cap", func() {
		for i := range 9 {
			writeFile(root, fmt.Sprintf("f%d.go", i), 10)
		}

		files, err := analysis.Discover(root, analysis.DiscoveryLimits{MaxFiles: 5, MaxFileBytes: 100, MaxTotalBytes: 10_000})
		Expect(err).NotTo(HaveOccurred())
		Expect(relPaths(files)).To(Equal([]string{"f0.go", "f1.go", "f2.go", "f3.go", "f4.go"}))
	})

	It("does not count skipped oversized files toward the total", func() {
		writeFile(root, "a.go", 500)
		writeFile(root, "b.go", 90)
		writeFile(root, "c.go", 90)

		files, err := analysis.Discover(root, analysis.DiscoveryLimits{MaxFiles: 10, MaxFileBytes: 100, MaxTotalBytes: 200})
		Expect(err).NotTo(HaveOccurred())
		Expect(relPaths(files)).To(Equal([]string{"b.go", "c.go"}))
	})

	It("ignores symlinks", func() {
		outside := filepath.Join(GinkgoT().TempDir(), "secret.go")
		Expect(os.WriteFile(outside, []byte("package secret"), 0o644)).To(Succeed())
		Expect(os.Symlink(outside, filepath.Join(root, "link.go"))).To(Succeed())
		writeFile(root, "real.go", 5)

		files, err := analysis.Discover(root, analysis.DefaultDiscoveryLimits)
		Expect(err).NotTo(HaveOccurred())
		Expect(relPaths(files)).To(Equal([]string{"real.go"}))
	})

	It("fails when the root is missing", func() {
		_, err := analysis.Discover(filepath.Join(root, "missing"), analysis.DefaultDiscoveryLimits)
		Expect(err).To(HaveOccurred())
	})
})
