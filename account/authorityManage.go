package account

import (
	"fmt"

	"bugtrack/authority"
	"bugtrack/domain"
	"bugtrack/persistence"

	"github.com/fundwit/go-commons/types"
)

var (
	LoadPermFunc = loadPerms
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

// loadPerms builds the permission set of a user from its global role and
// its project memberships. Project roles are the metadata of ownership:
// the creating lead of a project carries "lead_<projectId>".
func loadPerms(uid types.ID) (authority.Permissions, authority.ProjectRoles) {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	roles := []string{}
	projectRoles := []domain.ProjectRole{}

	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: uid}).Scan(&user).Error; err != nil {
		panic(err)
	}
	if user.Role == domain.RoleAdmin {
		roles = append(roles, SystemAdminPerm)
	}
	if user.Role != "" {
		roles = append(roles, "role:"+user.Role)
	}

	var gms []domain.ProjectMember
	if err := db.Model(&domain.ProjectMember{}).Where(&domain.ProjectMember{MemberId: uid}).Scan(&gms).Error; err != nil {
		panic(err)
	}

	var memberProjectIds []types.ID
	for _, gm := range gms {
		roles = append(roles, fmt.Sprintf("%s_%d", gm.Role, gm.ProjectId))
		projectRoles = append(projectRoles, domain.ProjectRole{ProjectID: gm.ProjectId, Role: gm.Role})
		memberProjectIds = append(memberProjectIds, gm.ProjectId)
	}

	if len(memberProjectIds) > 0 {
		var projects []domain.Project
		if err := db.Model(&domain.Project{}).Where("id IN (?)", memberProjectIds).Scan(&projects).Error; err != nil {
			panic(err)
		}
		titles := map[types.ID]string{}
		for _, p := range projects {
			titles[p.ID] = p.Title
		}
		for i := range projectRoles {
			projectRoles[i].ProjectTitle = titles[projectRoles[i].ProjectID]
		}
	}

	return roles, projectRoles
}
