package github_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	"gitgrok.app/api/internal/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		mux    *http.ServeMux
		server *httptest.Server
		client github.Client
	)

	respond := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)

		var err error
		client, err = github.New(github.Options{Token: "test-token", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("RepoInfo", func() {
		It("maps repository fields and authenticates", func() {
			mux.HandleFunc("GET /repos/octocat/Hello-World", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-token"))
				respond(w, `{
					"name": "Hello-World",
					"full_name": "octocat/Hello-World",
					"description": "My first repo",
					"language": "Go",
					"stargazers_count": 42,
					"forks_count": 7,
					"open_issues_count": 3,
					"license": {"name": "MIT License"},
					"created_at": "2011-01-26T19:01:12Z",
					"updated_at": "2024-01-26T19:14:43Z",
					"visibility": "public",
					"html_url": "https://github.com/octocat/Hello-World"
				}`)
			})

			info, err := client.RepoInfo(ctx, "octocat", "Hello-World")
			Expect(err).NotTo(HaveOccurred())
			Expect(info.FullName).To(Equal("octocat/Hello-World"))
			Expect(info.Stars).To(Equal(42))
			Expect(info.Forks).To(Equal(7))
			Expect(info.OpenIssues).To(Equal(3))
			Expect(info.License).To(Equal("MIT License"))
			Expect(info.Visibility).To(Equal("public"))
			Expect(info.URL).To(Equal("https://github.com/octocat/Hello-World"))
			Expect(info.CreatedAt.Year()).To(Equal(2011))
		})

		It("defaults the license name", func() {
			mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, `{"name": "r"}`)
			})

			info, err := client.RepoInfo(ctx, "o", "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(info.License).To(Equal("No license"))
		})

		It("classifies missing repositories as not found", func() {
			mux.HandleFunc("GET /repos/o/missing", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				respond(w, `{"message": "Not Found"}`)
			})

			_, err := client.RepoInfo(ctx, "o", "missing")
			Expect(errors.Is(err, github.ErrNotFound)).To(BeTrue())
			Expect(errors.Is(err, github.ErrUpstream)).To(BeFalse())
		})

		It("classifies server failures as upstream errors", func() {
			mux.HandleFunc("GET /repos/o/broken", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				respond(w, `{"message": "Bad Gateway"}`)
			})

			_, err := client.RepoInfo(ctx, "o", "broken")
			Expect(errors.Is(err, github.ErrUpstream)).To(BeTrue())
		})
	})

	Describe("LatestCommitContributors", func() {
		It("reads the default branch head and falls back to git names", func() {
			mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, `{"name": "r", "default_branch": "trunk"}`)
			})
			mux.HandleFunc("GET /repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("sha")).To(Equal("trunk"))
				Expect(r.URL.Query().Get("per_page")).To(Equal("1"))
				respond(w, `[{
					"sha": "abc",
					"author": {"login": "alice"},
					"committer": null,
					"commit": {
						"author": {"name": "Alice A"},
						"committer": {"name": "GitHub Web Flow"}
					}
				}]`)
			})

			got, err := client.LatestCommitContributors(ctx, "o", "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Author).To(Equal("alice"))
			Expect(got.Committer).To(Equal("GitHub Web Flow"))
		})

		It("reports an empty history as not found", func() {
			mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, `{"default_branch": "main"}`)
			})
			mux.HandleFunc("GET /repos/o/r/commits", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, `[]`)
			})

			_, err := client.LatestCommitContributors(ctx, "o", "r")
			Expect(errors.Is(err, github.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("AllContributors", func() {
		It("requests the top hundred contributors", func() {
			mux.HandleFunc("GET /repos/o/r/contributors", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("per_page")).To(Equal("100"))
				respond(w, `[{"login": "alice", "contributions": 10}, {"login": "bob", "contributions": 3}]`)
			})

			got, err := client.AllContributors(ctx, "o", "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].Login).To(Equal("alice"))
			Expect(got[0].Contributions).To(Equal(10))
		})
	})

	Describe("RecentCommits", func() {
		It("maps commit messages and authors", func() {
			mux.HandleFunc("GET /repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("per_page")).To(Equal("10"))
				respond(w, `[{
					"sha": "abc",
					"html_url": "https://github.com/o/r/commit/abc",
					"commit": {"message": "Fix bug", "author": {"name": "Carol", "date": "2024-05-01T10:00:00Z"}}
				}]`)
			})

			got, err := client.RecentCommits(ctx, "o", "r", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].Message).To(Equal("Fix bug"))
			Expect(got[0].Author).To(Equal("Carol"))
			Expect(got[0].Date.Month().String()).To(Equal("May"))
		})
	})

	Describe("CodeStructure", func() {
		It("lists the recursive tree of the default branch", func() {
			mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, `{"default_branch": "main"}`)
			})
			mux.HandleFunc("GET /repos/o/r/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("recursive")).To(Equal("1"))
				respond(w, `{"sha": "t", "tree": [
					{"path": "cmd", "type": "tree"},
					{"path": "cmd/main.go", "type": "blob", "size": 120}
				]}`)
			})

			got, err := client.CodeStructure(ctx, "o", "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[1].Path).To(Equal("cmd/main.go"))
			Expect(got[1].Size).To(Equal(120))
		})
	})

	Describe("ListOpenIssues", func() {
		It("skips pull requests", func() {
			mux.HandleFunc("GET /repos/o/r/issues", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("state")).To(Equal("open"))
				respond(w, `[
					{"number": 1, "title": "Bug", "state": "open", "user": {"login": "alice"}, "labels": [{"name": "bug"}]},
					{"number": 2, "title": "PR", "state": "open", "pull_request": {"url": "x"}}
				]`)
			})

			got, err := client.ListOpenIssues(ctx, "o", "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].Author).To(Equal("alice"))
			Expect(got[0].Labels).To(ConsistOf("bug"))
		})
	})

	Describe("mutations", func() {
		It("creates an issue with title and body", func() {
			mux.HandleFunc("POST /repos/o/r/issues", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body).To(HaveKeyWithValue("title", "Crash on start"))
				Expect(body).To(HaveKeyWithValue("body", "Steps to reproduce"))
				w.WriteHeader(http.StatusCreated)
				respond(w, `{"number": 9, "title": "Crash on start", "state": "open", "html_url": "https://github.com/o/r/issues/9"}`)
			})

			got, err := client.CreateIssue(ctx, "o", "r", github.IssueInput{Title: "Crash on start", Body: "Steps to reproduce"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Number).To(Equal(9))
			Expect(got.URL).To(Equal("https://github.com/o/r/issues/9"))
		})

		It("creates a pull request", func() {
			mux.HandleFunc("POST /repos/o/r/pulls", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body).To(HaveKeyWithValue("head", "feature"))
				Expect(body).To(HaveKeyWithValue("base", "main"))
				Expect(body).NotTo(HaveKey("body"))
				w.WriteHeader(http.StatusCreated)
				respond(w, `{"number": 5, "title": "Add feature", "state": "open", "head": {"ref": "feature"}, "base": {"ref": "main"}}`)
			})

			got, err := client.CreatePullRequest(ctx, "o", "r", github.PullRequestInput{Title: "Add feature", Head: "feature", Base: "main"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Number).To(Equal(5))
			Expect(got.Head).To(Equal("feature"))
			Expect(got.Base).To(Equal("main"))
		})

		It("creates a push webhook by default", func() {
			mux.HandleFunc("POST /repos/o/r/hooks", func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Events []string          `json:"events"`
					Config map[string]string `json:"config"`
					Active bool              `json:"active"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Events).To(ConsistOf("push"))
				Expect(body.Config).To(HaveKeyWithValue("url", "https://hooks.example.com/gh"))
				Expect(body.Config).To(HaveKeyWithValue("content_type", "json"))
				Expect(body.Active).To(BeTrue())
				w.WriteHeader(http.StatusCreated)
				respond(w, `{"id": 77, "events": ["push"], "active": true, "config": {"url": "https://hooks.example.com/gh"}}`)
			})

			got, err := client.CreateRepoWebhook(ctx, "o", "r", github.WebhookInput{URL: "https://hooks.example.com/gh"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(int64(77)))
			Expect(got.URL).To(Equal("https://hooks.example.com/gh"))
		})
	})

	Describe("ListUserRepos", func() {
		It("lists a user's repositories", func() {
			mux.HandleFunc("GET /users/octocat/repos", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, `[{"name": "Hello-World", "full_name": "octocat/Hello-World", "private": false, "html_url": "u"}]`)
			})

			got, err := client.ListUserRepos(ctx, "octocat")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].FullName).To(Equal("octocat/Hello-World"))
		})
	})
})
