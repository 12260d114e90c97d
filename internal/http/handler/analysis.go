package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/dto"
	"gitgrok.app/api/internal/http/middleware"
	"gitgrok.app/api/internal/service"
)

type AnalysisHandler struct {
	analysisService service.AnalysisService
	errors          ErrorResponder
}

func NewAnalysisHandler(analysisService service.AnalysisService, errors ErrorResponder) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		errors:          errors,
	}
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	report, err := h.analysisService.Analyze(ctx, middleware.GetUserID(ctx), req.RepoURL)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	slog.InfoContext(ctx, "repository analyzed",
		"owner", report.Owner,
		"repo", report.Repo,
		"files_analyzed", report.FilesAnalyzed,
	)

	resp := dto.ToAnalysisResponse(report)
	resp.Success = true
	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReportListRequest
	if err := bindFlexible(c, &req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	reports, err := h.analysisService.List(ctx, middleware.GetUserID(ctx), req.Limit)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": dto.ToAnalysisResponses(reports)})
}
