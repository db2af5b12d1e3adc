package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	BugStatusOpen       = "open"
	BugStatusInProgress = "in_progress"
	BugStatusResolved   = "resolved"
	BugStatusClosed     = "closed"

	BugSeverityLow      = "low"
	BugSeverityMedium   = "medium"
	BugSeverityHigh     = "high"
	BugSeverityCritical = "critical"
)

type Bug struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Reporter  types.ID `json:"reporter"`

	Title    string `json:"title"`
	Severity string `json:"severity"`
	Status   string `json:"status"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

type BugCreation struct {
	ProjectID types.ID `json:"projectId"`
	Title     string   `json:"title"`

	// default to BugSeverityLow / BugStatusOpen when omitted
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

// BugUpdating empty fields are left untouched
type BugUpdating struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

type BugQuery struct {
	ProjectID *types.ID `form:"projectId"`
	Status    string    `form:"status"`
}
