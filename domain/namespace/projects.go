package namespace

import (
	"errors"
	"time"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/domain/bug"
	"bugtrack/domain/bug/comment"
	"bugtrack/idgen"
	"bugtrack/persistence"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryProjectsFunc = QueryProjects
	DetailProjectFunc = DetailProject
	CreateProjectFunc = CreateProject
	UpdateProjectFunc = UpdateProject
	DeleteProjectFunc = DeleteProject
)

func QueryProjects(sec *session.Session) (*[]domain.Project, error) {
	var projects []domain.Project
	dbQuery := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Order("create_time DESC")
	if !sec.Perms.HasGlobalViewRole() {
		dbQuery = dbQuery.Where("id IN (?)", sec.VisibleProjects())
	}
	if err := dbQuery.Find(&projects).Error; err != nil {
		return nil, err
	}
	return &projects, nil
}

func DetailProject(id types.ID, sec *session.Session) (*domain.Project, error) {
	project := domain.Project{}
	db := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec))
	if err := db.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, &bizerror.ErrNotFound{Cause: errors.New("Project not found")}
		}
		return nil, err
	}
	return &project, nil
}

func CreateProject(c *domain.ProjectCreating, sec *session.Session) (*domain.Project, error) {
	now := time.Now()
	p := domain.Project{ID: idgen.NextID(idWorker), Title: c.Title, Description: c.Description,
		CreateTime: now, Creator: sec.Identity.ID}
	lead := domain.ProjectMember{ProjectId: p.ID, MemberId: sec.Identity.ID, Role: domain.ProjectRoleLead, CreateTime: now}

	err := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		for _, memberId := range c.Members {
			if memberId == sec.Identity.ID {
				continue
			}
			member := account.User{}
			if err := tx.Where(&account.User{ID: memberId}).First(&member).Error; err != nil {
				if gorm.IsRecordNotFoundError(err) {
					return &bizerror.ErrNotFound{Cause: errors.New("User not found")}
				}
				return err
			}
			m := domain.ProjectMember{ProjectId: p.ID, MemberId: memberId, Role: domain.ProjectRoleMember, CreateTime: now}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	grantLeadToSession(sec, &p)
	return &p, nil
}

// grantLeadToSession makes a freshly created project visible to the creator
// without forcing a re-login.
func grantLeadToSession(sec *session.Session, p *domain.Project) {
	role := domain.ProjectRole{ProjectID: p.ID, ProjectTitle: p.Title, Role: domain.ProjectRoleLead}
	perm := domain.ProjectRoleLead + "_" + p.ID.String()

	sec.Perms = append(sec.Perms, perm)
	sec.ProjectRoles = append(sec.ProjectRoles, role)

	if sec.Token == "" {
		return
	}
	// concurrent requests read the cached session, replace it instead of
	// mutating in place
	if cached, found := session.TokenCache.Get(sec.Token); found {
		if cachedSession, ok := cached.(*session.Session); ok {
			updated := cachedSession.Clone()
			updated.Perms = append(updated.Perms, perm)
			updated.ProjectRoles = append(updated.ProjectRoles, role)
			session.TokenCache.Set(sec.Token, &updated, cache.DefaultExpiration)
		}
	}
}

func UpdateProject(id types.ID, d *domain.ProjectUpdating, sec *session.Session) (*domain.Project, error) {
	changes := map[string]interface{}{}
	if d.Title != "" {
		changes["title"] = d.Title
	}
	if d.Description != "" {
		changes["description"] = d.Description
	}

	project := domain.Project{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("Project not found")}
			}
			return err
		}
		if err := checkProjectMutationPerms(id, sec); err != nil {
			return err
		}

		if d.Creator != 0 && d.Creator != project.Creator {
			creator := account.User{}
			if err := tx.Where(&account.User{ID: d.Creator}).First(&creator).Error; err != nil {
				if gorm.IsRecordNotFoundError(err) {
					return &bizerror.ErrNotFound{Cause: errors.New("User not found")}
				}
				return err
			}
			changes["creator"] = d.Creator
		}
		if len(changes) == 0 {
			return &bizerror.ErrBadParam{Cause: errors.New("No data provided for update")}
		}

		if err := tx.Model(&domain.Project{}).Where(&domain.Project{ID: id}).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where(&domain.Project{ID: id}).First(&project).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &project, nil
}

func DeleteProject(id types.ID, sec *session.Session) (*domain.Project, error) {
	project := domain.Project{}
	var bugs []domain.Bug
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("Project not found")}
			}
			return err
		}
		if err := checkProjectMutationPerms(id, sec); err != nil {
			return err
		}
		if err := tx.Where(&domain.Bug{ProjectID: id}).Find(&bugs).Error; err != nil {
			return err
		}
		for _, b := range bugs {
			if err := comment.CleanBugCommentsDirectly(b.ID, tx); err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(domain.Bug{}).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.ProjectMember{ProjectId: id}).Delete(domain.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Project{ID: id}).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if bug.DeleteBugIndexFunc != nil {
		for _, b := range bugs {
			bug.DeleteBugIndexFunc(b.ID)
		}
	}
	return &project, nil
}

// checkProjectMutationPerms allows system admins and the project lead.
func checkProjectMutationPerms(id types.ID, sec *session.Session) error {
	if sec.Perms.HasRole(account.SystemAdminPerm) ||
		sec.Perms.HasRole(domain.ProjectRoleLead+"_"+id.String()) {
		return nil
	}
	return bizerror.ErrForbidden
}

func QueryProjectTitles(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var records []domain.Project
	if err := db.Model(&domain.Project{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Title
	}
	return result, nil
}
