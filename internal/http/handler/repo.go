package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/http/dto"
	"gitgrok.app/api/internal/service"
)

type RepoHandler struct {
	repoService service.RepoService
	errors      ErrorResponder
}

func NewRepoHandler(repoService service.RepoService, errors ErrorResponder) *RepoHandler {
	return &RepoHandler{
		repoService: repoService,
		errors:      errors,
	}
}

func (h *RepoHandler) ListRepos(c *gin.Context) {
	var req dto.ListReposRequest
	if err := bindFlexible(c, &req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	repos, err := h.repoService.ListRepos(c.Request.Context(), req.Username)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repos": repos})
}

func (h *RepoHandler) GetRepo(c *gin.Context) {
	var req dto.GetRepoRequest
	if err := bindFlexible(c, &req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	info, err := h.repoService.GetRepo(c.Request.Context(), req.Username, req.Repo)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": info})
}

func (h *RepoHandler) CreateIssue(c *gin.Context) {
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	issue, err := h.repoService.CreateIssue(c.Request.Context(), req.Owner, req.Repo, github.IssueInput{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func (h *RepoHandler) LatestContributors(c *gin.Context) {
	var req dto.RepoCoordinates
	if err := bindFlexible(c, &req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	contributors, err := h.repoService.LatestContributors(c.Request.Context(), req.Owner, req.Repo)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributors": contributors})
}

func (h *RepoHandler) AllContributors(c *gin.Context) {
	var req dto.RepoCoordinates
	if err := bindFlexible(c, &req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	contributors, err := h.repoService.AllContributors(c.Request.Context(), req.Owner, req.Repo)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributors": contributors})
}
