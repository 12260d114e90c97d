package model

import "time"

// AnalysisReport is the markdown produced for one repository analysis run.
type AnalysisReport struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	Owner           string    `json:"owner"`
	Repo            string    `json:"repo"`
	Markdown        string    `json:"markdown"`
	FilesDiscovered int       `json:"filesDiscovered"`
	FilesAnalyzed   int       `json:"filesAnalyzed"`
	CompletedAt     time.Time `json:"completedAt"`
}
