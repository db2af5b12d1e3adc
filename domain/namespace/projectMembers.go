package namespace

import (
	"bugtrack/account"
	"bugtrack/domain"
	"bugtrack/persistence"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
)

var (
	QueryProjectTitlesFunc   = QueryProjectTitles
	QueryAccountNamesFunc    = account.QueryAccountNames
	DetailProjectMembersFunc = DetailProjectMembers

	QueryProjectMemberDetailsFunc = QueryProjectMemberDetails
)

func QueryProjectMemberDetails(d *domain.ProjectMemberQuery, sec *session.Session) (*[]domain.ProjectMemberDetail, error) {
	dbQuery := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Model(&domain.ProjectMember{})

	if !sec.Perms.HasGlobalViewRole() {
		dbQuery = dbQuery.Where("project_id IN (?)", sec.VisibleProjects())
	}
	if d.ProjectID != nil {
		dbQuery = dbQuery.Where("project_id = ?", d.ProjectID)
	}
	if d.MemberID != nil {
		dbQuery = dbQuery.Where("member_id = ?", d.MemberID)
	}

	var result []domain.ProjectMember
	if err := dbQuery.Find(&result).Error; err != nil {
		return nil, err
	}

	details, err := DetailProjectMembersFunc(&result)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func DetailProjectMembers(pms *[]domain.ProjectMember) (*[]domain.ProjectMemberDetail, error) {
	if pms == nil {
		return &[]domain.ProjectMemberDetail{}, nil
	}

	var projectIds []types.ID
	var memberIds []types.ID
	for _, pm := range *pms {
		projectIds = append(projectIds, pm.ProjectId)
		memberIds = append(memberIds, pm.MemberId)
	}

	projectIdTitleMap, err := QueryProjectTitlesFunc(projectIds)
	if err != nil {
		return nil, err
	}
	memberIdNameMap, err := QueryAccountNamesFunc(memberIds)
	if err != nil {
		return nil, err
	}

	details := []domain.ProjectMemberDetail{}
	for _, pm := range *pms {
		detail := domain.ProjectMemberDetail{ProjectMember: pm, ProjectTitle: "Unknown", MemberName: "Unknown"}
		if title, found := projectIdTitleMap[pm.ProjectId]; found {
			detail.ProjectTitle = title
		}
		if name, found := memberIdNameMap[pm.MemberId]; found {
			detail.MemberName = name
		}
		details = append(details, detail)
	}
	return &details, nil
}
