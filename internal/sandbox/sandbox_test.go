package sandbox_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitgrok.app/api/internal/repourl"
	"gitgrok.app/api/internal/sandbox"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeCloner struct {
	fn    func(dir string) error
	urls  []string
	calls int
}

func (f *fakeCloner) Clone(_ context.Context, url, dir string) error {
	f.calls++
	f.urls = append(f.urls, url)
	if f.fn != nil {
		return f.fn(dir)
	}
	return os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644)
}

var _ = Describe("Manager", func() {
	var (
		ctx    context.Context
		root   string
		cloner *fakeCloner
		mgr    *sandbox.Manager
		ref    repourl.Ref
	)

	BeforeEach(func() {
		ctx = context.Background()
		root = filepath.Join(GinkgoT().TempDir(), "repos")
		cloner = &fakeCloner{}
		mgr = sandbox.NewManager(sandbox.Options{Root: root, StaleAfter: time.Hour}, cloner)
		ref = repourl.Ref{Owner: "octo", Repo: "hello"}
	})

	Describe("Acquire", func() {
		It("clones into a fresh directory named after the repository", func() {
			ws, err := mgr.Acquire(ctx, ref)
			Expect(err).NotTo(HaveOccurred())
			defer ws.Release()

			Expect(filepath.Dir(ws.Path)).To(Equal(root))
			Expect(filepath.Base(ws.Path)).To(HavePrefix("octo-hello-"))
			Expect(filepath.Join(ws.Path, "main.go")).To(BeAnExistingFile())
			Expect(ws.Owner).To(Equal("octo"))
			Expect(ws.Repo).To(Equal("hello"))
			Expect(cloner.urls).To(ConsistOf("https://github.com/octo/hello.git"))
		})

		It("gives concurrent acquisitions of the same repository distinct paths", func() {
			first, err := mgr.Acquire(ctx, ref)
			Expect(err).NotTo(HaveOccurred())
			second, err := mgr.Acquire(ctx, ref)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Path).NotTo(Equal(second.Path))

			Expect(first.Release()).To(Succeed())
			Expect(second.Path).To(BeADirectory())
			Expect(second.Release()).To(Succeed())
		})

		It("removes the partial directory when the clone fails", func() {
			cloner.fn = func(dir string) error {
				_ = os.WriteFile(filepath.Join(dir, "partial"), []byte("x"), 0o644)
				return errors.New("repository not found")
			}

			ws, err := mgr.Acquire(ctx, ref)
			Expect(ws).To(BeNil())
			Expect(errors.Is(err, sandbox.ErrClone)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("octo/hello"))

			entries, readErr := os.ReadDir(root)
			Expect(readErr).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("bounds the clone with the configured timeout", func() {
			var deadline time.Time
			var hasDeadline bool
			mgr = sandbox.NewManager(sandbox.Options{Root: root, CloneTimeout: time.Minute}, clonerFunc(func(ctx context.Context) error {
				deadline, hasDeadline = ctx.Deadline()
				return nil
			}))

			ws, err := mgr.Acquire(ctx, ref)
			Expect(err).NotTo(HaveOccurred())
			defer ws.Release()

			Expect(hasDeadline).To(BeTrue())
			Expect(deadline).To(BeTemporally("~", time.Now().Add(time.Minute), 5*time.Second))
		})
	})

	Describe("Release", func() {
		It("removes the directory and is safe to call twice", func() {
			ws, err := mgr.Acquire(ctx, ref)
			Expect(err).NotTo(HaveOccurred())

			Expect(ws.Release()).To(Succeed())
			Expect(ws.Path).NotTo(BeADirectory())
			Expect(ws.Release()).To(Succeed())
		})
	})

	Describe("SweepStale", func() {
		It("returns zero when the root does not exist yet", func() {
			n, err := mgr.SweepStale(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})

		It("removes only directories older than the threshold", func() {
			stale := filepath.Join(root, "octo-old-1700000000000-4021")
			fresh := filepath.Join(root, "octo-new-1700000000000-977")
			Expect(os.MkdirAll(stale, 0o755)).To(Succeed())
			Expect(os.MkdirAll(fresh, 0o755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(root, "notes.txt"), []byte("keep"), 0o644)).To(Succeed())

			old := time.Now().Add(-2 * time.Hour)
			Expect(os.Chtimes(stale, old, old)).To(Succeed())

			n, err := mgr.SweepStale(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(stale).NotTo(BeADirectory())
			Expect(fresh).To(BeADirectory())
			Expect(filepath.Join(root, "notes.txt")).To(BeAnExistingFile())
		})

		It("leaves old directories it did not create", func() {
			old := time.Now().Add(-2 * time.Hour)
			foreign := []string{"someone-elses-cache", ".git-cache-1-2", "build"}
			for _, name := range foreign {
				dir := filepath.Join(root, name)
				Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
				Expect(os.Chtimes(dir, old, old)).To(Succeed())
			}

			n, err := mgr.SweepStale(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
			for _, name := range foreign {
				Expect(filepath.Join(root, name)).To(BeADirectory())
			}
		})

		It("sweeps a stale directory left by Acquire", func() {
			ws, err := mgr.Acquire(ctx, repourl.Ref{Owner: "octo-cat", Repo: "hello.world"})
			Expect(err).NotTo(HaveOccurred())
			old := time.Now().Add(-2 * time.Hour)
			Expect(os.Chtimes(ws.Path, old, old)).To(Succeed())

			n, err := mgr.SweepStale(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(ws.Path).NotTo(BeADirectory())
		})
	})
})

type clonerFunc func(ctx context.Context) error

func (f clonerFunc) Clone(ctx context.Context, _, _ string) error {
	return f(ctx)
}

var _ = Describe("GitCloner", func() {
	It("reports clone failures with the url", func() {
		dir := GinkgoT().TempDir()
		err := sandbox.GitCloner{}.Clone(context.Background(), "file:///nonexistent/"+strings.Repeat("x", 8), dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("git clone"))
	})
})
