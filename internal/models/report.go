package models

import (
	"time"
)

const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"

	ReportReasonInappropriate = "inappropriate_content"
	ReportReasonHarassment    = "harassment"
	ReportReasonSpam          = "spam"
	ReportReasonFalseInfo     = "false_information"
	ReportReasonHateSpeech    = "hate_speech"
	ReportReasonCopyright     = "copyright_violation"
	ReportReasonOther         = "other"
)

// ValidReportReasons список допустимых причин жалоб
var ValidReportReasons = map[string]struct{}{
	ReportReasonInappropriate: {},
	ReportReasonHarassment:    {},
	ReportReasonSpam:          {},
	ReportReasonFalseInfo:     {},
	ReportReasonHateSpeech:    {},
	ReportReasonCopyright:     {},
	ReportReasonOther:         {},
}

// ValidReportStatuses список статусов жалоб
var ValidReportStatuses = map[string]struct{}{
	ReportStatusPending:   {},
	ReportStatusResolved:  {},
	ReportStatusDismissed: {},
}

type Report struct {
	ID         string     `db:"id" json:"id"`
	PostID     string     `db:"post_id" json:"post_id"`
	Reason     string     `db:"reason" json:"reason"`
	Details    *string    `db:"details" json:"details,omitempty"`
	ReporterID string     `db:"reporter_id" json:"reporter_id"`
	Status     string     `db:"status" json:"status"`
	AdminNotes *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	ReviewedBy *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ReportStats - количество жалоб по статусам.
type ReportStats struct {
	Pending   int `db:"pending" json:"pending"`
	Resolved  int `db:"resolved" json:"resolved"`
	Dismissed int `db:"dismissed" json:"dismissed"`
	Total     int `db:"total" json:"total"`
}
