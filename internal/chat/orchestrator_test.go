package chat_test

import (
	"context"
	"errors"
	"strings"

	"gitgrok.app/api/internal/chat"
	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/repourl"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Orchestrator", func() {
	var (
		ctx   context.Context
		gh    *mockGitHub
		llm   *mockLLM
		store *memoryStore
		orch  *chat.Orchestrator
		q     chat.Question
	)

	BeforeEach(func() {
		ctx = context.Background()
		gh = &mockGitHub{}
		llm = &mockLLM{
			selection: "allContributors",
			answer:    `{"response": "octocat made 42 contributions."}`,
		}
		store = &memoryStore{}
		orch = chat.NewOrchestrator(gh, llm, store, chat.Options{})
		q = chat.Question{
			UserID:  7,
			Text:    "who are the contributors?",
			RepoURL: "https://github.com/octocat/Hello-World",
		}
	})

	It("answers with a contributor tool for contributor questions", func() {
		ans, err := orch.Answer(ctx, q)
		Expect(err).NotTo(HaveOccurred())

		Expect(ans.ToolUsed).To(BeElementOf(chat.ToolAllContributors, chat.ToolLatestCommitContributors))
		Expect(ans.ToolUsed).NotTo(Equal(chat.ToolNone))
		Expect(ans.Text).To(Equal("octocat made 42 contributions."))
		Expect(gh.calls).To(Equal(1))

		Expect(llm.requests).To(HaveLen(2))
		Expect(llm.requests[0].Prompt).To(ContainSubstring("octocat/Hello-World"))
		Expect(llm.requests[0].Prompt).To(ContainSubstring("- allContributors:"))
		Expect(llm.requests[1].Prompt).To(ContainSubstring(`"login": "octocat"`))
		Expect(llm.requests[1].Prompt).To(ContainSubstring("Repository contributors"))
	})

	It("stores the question and the answer with repository context", func() {
		_, err := orch.Answer(ctx, q)
		Expect(err).NotTo(HaveOccurred())

		Expect(store.turns).To(HaveLen(2))
		user, bot := store.turns[0], store.turns[1]

		Expect(user.SenderType).To(Equal(model.SenderUser))
		Expect(user.Message).To(Equal("who are the contributors?"))
		Expect(user.Context.Owner).To(Equal("octocat"))
		Expect(user.Context.Repo).To(Equal("Hello-World"))
		Expect(user.Context.SelectedTool).To(BeEmpty())
		Expect(*user.BotID).To(Equal(chat.DefaultBotID))
		Expect(user.RecipientUserID).To(BeNil())
		Expect(user.Valid()).To(BeTrue())

		Expect(bot.SenderType).To(Equal(model.SenderBot))
		Expect(bot.Message).To(Equal("octocat made 42 contributions."))
		Expect(bot.Context.SelectedTool).To(Equal("allContributors"))
		Expect(bot.Valid()).To(BeTrue())
	})

	It("returns recent history newest first including the current question", func() {
		for _, text := range []string{"first", "second"} {
			q.Text = text
			_, err := orch.Answer(ctx, q)
			Expect(err).NotTo(HaveOccurred())
		}

		q.Text = "third"
		ans, err := orch.Answer(ctx, q)
		Expect(err).NotTo(HaveOccurred())

		Expect(ans.History).To(HaveLen(chat.DefaultHistoryLimit))
		Expect(ans.History[0].Message).To(Equal("third"))
		Expect(ans.History[0].SenderType).To(Equal(model.SenderUser))
	})

	Context("validation", func() {
		DescribeTable("rejects incomplete questions before any call",
			func(mutate func(*chat.Question)) {
				mutate(&q)
				_, err := orch.Answer(ctx, q)
				Expect(errors.Is(err, chat.ErrValidation)).To(BeTrue())
				Expect(store.turns).To(BeEmpty())
				Expect(llm.requests).To(BeEmpty())
			},
			Entry("missing user", func(q *chat.Question) { q.UserID = 0 }),
			Entry("missing question", func(q *chat.Question) { q.Text = "   " }),
			Entry("missing url", func(q *chat.Question) { q.RepoURL = "" }),
			Entry("markup only", func(q *chat.Question) { q.Text = "<b></b>" }),
		)

		It("rejects urls it cannot decompose", func() {
			q.RepoURL = "not-a-url"
			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, repourl.ErrInvalidURL)).To(BeTrue())
			Expect(store.turns).To(BeEmpty())
		})
	})

	Context("tool selection", func() {
		It("fails on an unknown tool without calling GitHub", func() {
			llm.selection = "deleteRepository"

			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, chat.ErrToolExecution)).To(BeTrue())
			Expect(gh.calls).To(Equal(0))
		})

		It("normalizes case, whitespace and quotes", func() {
			llm.selection = "  `LatestCommitContributors`.\n"

			ans, err := orch.Answer(ctx, q)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.ToolUsed).To(Equal(chat.ToolLatestCommitContributors))
		})

		It("answers without GitHub data for noTool", func() {
			llm.selection = "notool"

			ans, err := orch.Answer(ctx, q)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.ToolUsed).To(Equal(chat.ToolNone))
			Expect(gh.calls).To(Equal(0))
			Expect(llm.requests[1].Prompt).To(ContainSubstring("No repository data was needed"))
		})

		It("fails a mutating tool with missing params before any network call", func() {
			llm.selection = "createIssue"
			q.Params = map[string]string{"title": "Broken build"}

			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, chat.ErrToolExecution)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("body"))
			Expect(gh.calls).To(Equal(0))
		})

		It("sends issue bodies to GitHub unchanged", func() {
			llm.selection = "createIssue"
			q.Params = map[string]string{
				"title": "  Broken build ",
				"body":  "Use `Vec<T>` here",
			}
			var got github.IssueInput
			gh.createIssueFn = func(_ context.Context, _, _ string, in github.IssueInput) (*model.Issue, error) {
				got = in
				return &model.Issue{Number: 12, Title: in.Title}, nil
			}

			ans, err := orch.Answer(ctx, q)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.ToolUsed).To(Equal(chat.ToolCreateIssue))
			Expect(got.Title).To(Equal("Broken build"))
			Expect(got.Body).To(Equal("Use `Vec<T>` here"))
		})

		It("rejects a title carrying markup before storing anything", func() {
			llm.selection = "createIssue"
			q.Params = map[string]string{
				"title": "<script>alert(1)</script>Broken build",
				"body":  "Fails on main",
			}

			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, chat.ErrValidation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("title"))
			Expect(store.turns).To(BeEmpty())
			Expect(gh.calls).To(Equal(0))
		})

		It("keeps the webhook secret byte for byte", func() {
			llm.selection = "createRepoWebhook"
			q.Params = map[string]string{
				"url":    "https://hooks.example.com/gitgrok",
				"secret": "s3<cr>et<x",
			}
			var got github.WebhookInput
			gh.createWebhookFn = func(_ context.Context, _, _ string, in github.WebhookInput) (*model.Webhook, error) {
				got = in
				return &model.Webhook{ID: 3, URL: in.URL}, nil
			}

			_, err := orch.Answer(ctx, q)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.URL).To(Equal("https://hooks.example.com/gitgrok"))
			Expect(got.Secret).To(Equal("s3<cr>et<x"))
		})
	})

	Context("failures", func() {
		It("keeps the question when tool selection fails", func() {
			llm.selectionErr = errors.New("rate limited")

			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, chat.ErrLLM)).To(BeTrue())
			Expect(store.turns).To(HaveLen(1))
			Expect(store.turns[0].SenderType).To(Equal(model.SenderUser))
		})

		It("keeps the question when the GitHub call fails", func() {
			gh.allContributorsFn = func(context.Context, string, string) ([]model.Contributor, error) {
				return nil, github.ErrUpstream
			}

			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, chat.ErrToolExecution)).To(BeTrue())
			Expect(errors.Is(err, github.ErrUpstream)).To(BeTrue())
			Expect(store.turns).To(HaveLen(1))
		})

		It("does not store an answer when the answer call fails", func() {
			llm.answerErr = errors.New("timeout")

			_, err := orch.Answer(ctx, q)
			Expect(errors.Is(err, chat.ErrLLM)).To(BeTrue())
			Expect(store.turns).To(HaveLen(1))
		})

		It("stops when the question cannot be stored", func() {
			store.appendErr = errors.New("db down")

			_, err := orch.Answer(ctx, q)
			Expect(err).To(MatchError(ContainSubstring("storing question")))
			Expect(llm.requests).To(BeEmpty())
		})
	})

	It("sanitizes the question before storing and prompting", func() {
		q.Text = `<img src=x onerror="steal()">Who <b>maintains</b> this?`

		_, err := orch.Answer(ctx, q)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.turns[0].Message).To(Equal("Who maintains this?"))
		Expect(llm.requests[0].Prompt).NotTo(ContainSubstring("onerror"))
	})

	It("clamps stored answers to the message limit", func() {
		llm.answer = strings.Repeat("a", model.MaxChatMessageLen+100)

		ans, err := orch.Answer(ctx, q)
		Expect(err).NotTo(HaveOccurred())
		Expect(ans.Text).To(HaveLen(model.MaxChatMessageLen + 100))
		Expect(store.turns[1].Message).To(HaveLen(model.MaxChatMessageLen))
	})

	It("records issue and pull request context", func() {
		q.Params = map[string]string{"issueId": "17", "pullRequestId": "4"}

		_, err := orch.Answer(ctx, q)
		Expect(err).NotTo(HaveOccurred())
		Expect(*store.turns[0].Context.IssueID).To(Equal(int64(17)))
		Expect(*store.turns[1].Context.PullRequestID).To(Equal(int64(4)))
	})

	It("rejects malformed issue ids before storing anything", func() {
		q.Params = map[string]string{"issueId": "-3"}

		_, err := orch.Answer(ctx, q)
		Expect(errors.Is(err, chat.ErrValidation)).To(BeTrue())
		Expect(store.turns).To(BeEmpty())
	})

	Describe("History", func() {
		It("loads turns for the repository", func() {
			_, err := orch.Answer(ctx, q)
			Expect(err).NotTo(HaveOccurred())

			turns, err := orch.History(ctx, 7, "git@github.com:octocat/Hello-World.git", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].SenderType).To(Equal(model.SenderBot))
		})
	})
})
