package dto

import "time"

// ReportRequest identifies the submission a similarity report is built for.
type ReportRequest struct {
	StudentID    uint `query:"student_id" validate:"required,gt=0"`
	AssignmentID uint `query:"assignment_id" validate:"required,gt=0"`
}

// PeerComparison is one entry in a similarity report. Similarity is always in
// [0,1]; rendering it as a percentage is the caller's concern.
type PeerComparison struct {
	PeerName   string    `json:"peer_name"`
	Similarity float64   `json:"similarity"`
	UploadTime time.Time `json:"upload_time"`
}

// SkippedPeer names a peer whose document could not be read and was left out
// of the ranking.
type SkippedPeer struct {
	PeerName string `json:"peer_name"`
	Reason   string `json:"reason"`
}

// ReportResponse is the full ranked comparison for one student's latest
// submission on an assignment, recomputed from current peer documents.
type ReportResponse struct {
	AssignmentID uint             `json:"assignment_id"`
	StudentID    uint             `json:"student_id"`
	SubmissionID uint             `json:"submission_id"`
	ModelVersion string           `json:"model_version"`
	Comparisons  []PeerComparison `json:"comparisons"`
	Skipped      []SkippedPeer    `json:"skipped,omitempty"`
}
