package dto

// GET endpoints bind from a JSON body when one is sent, otherwise from the query string.

type ListReposRequest struct {
	Username string `json:"username" form:"username"`
}

type GetRepoRequest struct {
	Username string `json:"username" form:"username"`
	Repo     string `json:"repo" form:"repo"`
}

type RepoCoordinates struct {
	Owner string `json:"owner" form:"owner"`
	Repo  string `json:"repo" form:"repo"`
}

type CreateIssueRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
