package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type ProjectMember struct {
	ProjectId types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId  types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       string    `json:"role"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type ProjectMemberDetail struct {
	ProjectMember

	ProjectTitle string `json:"projectTitle"`

	MemberName string `json:"memberName"`
}

type ProjectMemberQuery struct {
	ProjectID *types.ID `form:"projectId"`
	MemberID  *types.ID `form:"memberId"`
}

// ProjectRole is one membership of a session identity, resolved for display.
type ProjectRole struct {
	ProjectID    types.ID `json:"projectId"`
	ProjectTitle string   `json:"projectTitle"`
	Role         string   `json:"role"`
}
