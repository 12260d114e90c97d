package chat

import (
	"fmt"
	"strings"
)

type ToolName string

const (
	ToolRepoInfo                 ToolName = "repoInfo"
	ToolRecentCommits            ToolName = "recentCommits"
	ToolLatestCommitContributors ToolName = "latestCommitContributors"
	ToolAllContributors          ToolName = "allContributors"
	ToolCodeStructure            ToolName = "codeStructure"
	ToolCreateIssue              ToolName = "createIssue"
	ToolCreatePullRequest        ToolName = "createPullRequest"
	ToolListOpenIssues           ToolName = "listOpenIssues"
	ToolCreateRepoWebhook        ToolName = "createRepoWebhook"
	ToolNone                     ToolName = "noTool"
)

type toolSpec struct {
	name        ToolName
	description string
	label       string
}

// tools is the closed set offered to the selection prompt, in prompt order.
var tools = []toolSpec{
	{ToolRepoInfo, "General repository details: description, language, stars, forks, open issue count, license, visibility.", "Repository information"},
	{ToolRecentCommits, "The most recent commits with messages, authors and dates.", "Recent commits"},
	{ToolLatestCommitContributors, "Who authored and who committed the latest commit on the default branch.", "Author and committer of the latest commit"},
	{ToolAllContributors, "Everyone who contributed to the repository, with contribution counts.", "Repository contributors and their contribution counts"},
	{ToolCodeStructure, "The file and directory layout of the default branch.", "Repository file tree"},
	{ToolCreateIssue, "Open a new issue (needs title and body).", "Newly created issue"},
	{ToolCreatePullRequest, "Open a pull request (needs title, head and base branches).", "Newly created pull request"},
	{ToolListOpenIssues, "Currently open issues.", "Open issues"},
	{ToolCreateRepoWebhook, "Register a webhook on the repository (needs url).", "Newly created webhook"},
	{ToolNone, "No GitHub data is needed, e.g. greetings or general questions.", "No repository data"},
}

// ParseToolName matches s, case-insensitively and ignoring surrounding
// whitespace, against the known tool names.
func ParseToolName(s string) (ToolName, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, t := range tools {
		if strings.ToLower(string(t.name)) == norm {
			return t.name, true
		}
	}
	return "", false
}

func (n ToolName) Label() string {
	for _, t := range tools {
		if t.name == n {
			return t.label
		}
	}
	return string(n)
}

func (n ToolName) Mutating() bool {
	return n == ToolCreateIssue || n == ToolCreatePullRequest || n == ToolCreateRepoWebhook
}

// Tool is a validated tool invocation. Each variant carries exactly the
// parameters its GitHub call needs.
type Tool interface {
	Name() ToolName
	isTool()
}

type (
	RepoInfo                 struct{}
	RecentCommits            struct{ Limit int }
	LatestCommitContributors struct{}
	AllContributors          struct{}
	CodeStructure            struct{}
	ListOpenIssues           struct{}
	NoTool                   struct{}

	CreateIssue struct {
		Title string
		Body  string
	}

	CreatePullRequest struct {
		Title string
		Head  string
		Base  string
		Body  string
	}

	CreateRepoWebhook struct {
		URL    string
		Events []string
		Secret string
	}
)

func (RepoInfo) Name() ToolName                 { return ToolRepoInfo }
func (RecentCommits) Name() ToolName            { return ToolRecentCommits }
func (LatestCommitContributors) Name() ToolName { return ToolLatestCommitContributors }
func (AllContributors) Name() ToolName          { return ToolAllContributors }
func (CodeStructure) Name() ToolName            { return ToolCodeStructure }
func (ListOpenIssues) Name() ToolName           { return ToolListOpenIssues }
func (NoTool) Name() ToolName                   { return ToolNone }
func (CreateIssue) Name() ToolName              { return ToolCreateIssue }
func (CreatePullRequest) Name() ToolName        { return ToolCreatePullRequest }
func (CreateRepoWebhook) Name() ToolName        { return ToolCreateRepoWebhook }

func (RepoInfo) isTool()                 {}
func (RecentCommits) isTool()            {}
func (LatestCommitContributors) isTool() {}
func (AllContributors) isTool()          {}
func (CodeStructure) isTool()            {}
func (ListOpenIssues) isTool()           {}
func (NoTool) isTool()                   {}
func (CreateIssue) isTool()              {}
func (CreatePullRequest) isTool()        {}
func (CreateRepoWebhook) isTool()        {}

// NewTool builds the variant for name from caller-supplied params. Missing
// required params fail with ErrToolExecution.
func NewTool(name ToolName, params map[string]string) (Tool, error) {
	switch name {
	case ToolRepoInfo:
		return RepoInfo{}, nil
	case ToolRecentCommits:
		return RecentCommits{}, nil
	case ToolLatestCommitContributors:
		return LatestCommitContributors{}, nil
	case ToolAllContributors:
		return AllContributors{}, nil
	case ToolCodeStructure:
		return CodeStructure{}, nil
	case ToolListOpenIssues:
		return ListOpenIssues{}, nil
	case ToolNone:
		return NoTool{}, nil
	case ToolCreateIssue:
		if err := require(name, params, "title", "body"); err != nil {
			return nil, err
		}
		return CreateIssue{Title: params["title"], Body: params["body"]}, nil
	case ToolCreatePullRequest:
		if err := require(name, params, "title", "head", "base"); err != nil {
			return nil, err
		}
		return CreatePullRequest{
			Title: params["title"],
			Head:  params["head"],
			Base:  params["base"],
			Body:  params["body"],
		}, nil
	case ToolCreateRepoWebhook:
		if err := require(name, params, "url"); err != nil {
			return nil, err
		}
		return CreateRepoWebhook{
			URL:    params["url"],
			Events: splitList(params["events"]),
			Secret: params["secret"],
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tool %q", ErrToolExecution, name)
	}
}

func require(name ToolName, params map[string]string, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(params[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s", ErrToolExecution, name, strings.Join(missing, ", "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
