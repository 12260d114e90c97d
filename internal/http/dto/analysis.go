package dto

import (
	"time"

	"gitgrok.app/api/internal/model"
)

type AnalyzeRequest struct {
	RepoURL string `json:"repoUrl"`
}

type ReportListRequest struct {
	Limit int `json:"limit" form:"limit"`
}

type AnalysisMetadata struct {
	Owner           string    `json:"owner"`
	Repo            string    `json:"repo"`
	FilesDiscovered int       `json:"filesDiscovered"`
	FilesAnalyzed   int       `json:"filesAnalyzed"`
	AnalyzedAt      time.Time `json:"analyzedAt"`
}

type AnalysisResponse struct {
	Success  bool             `json:"success,omitempty"`
	ID       int64            `json:"id,string"`
	Report   string           `json:"report"`
	Metadata AnalysisMetadata `json:"metadata"`
}

func ToAnalysisResponse(r *model.AnalysisReport) AnalysisResponse {
	return AnalysisResponse{
		ID:     r.ID,
		Report: r.Markdown,
		Metadata: AnalysisMetadata{
			Owner:           r.Owner,
			Repo:            r.Repo,
			FilesDiscovered: r.FilesDiscovered,
			FilesAnalyzed:   r.FilesAnalyzed,
			AnalyzedAt:      r.CompletedAt,
		},
	}
}

func ToAnalysisResponses(reports []model.AnalysisReport) []AnalysisResponse {
	out := make([]AnalysisResponse, 0, len(reports))
	for i := range reports {
		out = append(out, ToAnalysisResponse(&reports[i]))
	}
	return out
}
