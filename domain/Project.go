package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Title       string `json:"title"`
	Description string `json:"description"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	Creator    types.ID  `json:"creator"`
}

type ProjectCreating struct {
	Title       string `json:"title" binding:"required,lte=128"`
	Description string `json:"description"`

	// ids of users to attach as members besides the creating lead
	Members []types.ID `json:"members"`
}

type ProjectUpdating struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     types.ID `json:"creator"`
}

const ProjectRoleLead = "lead"
const ProjectRoleMember = "member"
