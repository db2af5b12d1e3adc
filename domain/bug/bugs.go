package bug

import (
	"errors"
	"fmt"
	"strings"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/domain/bug/comment"
	"bugtrack/idgen"
	"bugtrack/persistence"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateBugFunc = CreateBug
	QueryBugsFunc = QueryBugs
	DetailBugFunc = DetailBug
	UpdateBugFunc = UpdateBug
	DeleteBugFunc = DeleteBug

	// index hooks, wired at startup when search is enabled
	IndexBugsFunc      func(bugs []domain.Bug)
	DeleteBugIndexFunc func(id types.ID)
)

func CreateBug(c *domain.BugCreation, sec *session.Session) (*domain.Bug, error) {
	if c.ProjectID == 0 {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("Project ID is required")}
	}
	title := strings.TrimSpace(c.Title)
	if len(title) < 3 {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("Title is required and must be at least 3 characters")}
	}

	severity := c.Severity
	if severity == "" {
		severity = domain.BugSeverityLow
	}
	status := c.Status
	if status == "" {
		status = domain.BugStatusOpen
	}
	if err := domain.CheckEnum("severity", severity); err != nil {
		return nil, err
	}
	if err := domain.CheckEnum("status", status); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	record := domain.Bug{ID: idgen.NextID(idWorker), ProjectID: c.ProjectID, Reporter: sec.Identity.ID,
		Title: title, Severity: severity, Status: status, CreateTime: now, UpdateTime: now}

	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		project := domain.Project{}
		if err := tx.Where(&domain.Project{ID: c.ProjectID}).First(&project).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("Project not found")}
			}
			return err
		}
		return tx.Create(record).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if IndexBugsFunc != nil {
		IndexBugsFunc([]domain.Bug{record})
	}
	return &record, nil
}

func QueryBugs(q *domain.BugQuery, sec *session.Session) (*[]domain.Bug, error) {
	dbQuery := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Model(&domain.Bug{})
	if q.ProjectID != nil {
		if !sec.Perms.HasProjectViewPerm(*q.ProjectID) {
			return nil, bizerror.ErrForbidden
		}
		dbQuery = dbQuery.Where("project_id = ?", q.ProjectID)
	} else if !sec.Perms.HasGlobalViewRole() {
		dbQuery = dbQuery.Where("project_id IN (?)", sec.VisibleProjects())
	}
	if q.Status != "" {
		if err := domain.CheckEnum("status", q.Status); err != nil {
			return nil, err
		}
		dbQuery = dbQuery.Where("status = ?", q.Status)
	}

	bugs := []domain.Bug{}
	if err := dbQuery.Order("create_time DESC").Find(&bugs).Error; err != nil {
		return nil, err
	}
	return &bugs, nil
}

func DetailBug(id types.ID, sec *session.Session) (*domain.Bug, error) {
	record := domain.Bug{}
	db := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec))
	if err := db.Where(&domain.Bug{ID: id}).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, &bizerror.ErrNotFound{Cause: fmt.Errorf("Bug with ID %d not found", id)}
		}
		return nil, err
	}
	return &record, nil
}

func UpdateBug(id types.ID, u *domain.BugUpdating, sec *session.Session) (*domain.Bug, error) {
	changes := map[string]interface{}{}
	if u.Title != "" {
		title := strings.TrimSpace(u.Title)
		if len(title) < 3 {
			return nil, &bizerror.ErrBadParam{Cause: errors.New("Title is required and must be at least 3 characters")}
		}
		changes["title"] = title
	}
	if u.Severity != "" {
		if err := domain.CheckEnum("severity", u.Severity); err != nil {
			return nil, err
		}
		changes["severity"] = u.Severity
	}
	if u.Status != "" {
		if err := domain.CheckEnum("status", u.Status); err != nil {
			return nil, err
		}
		changes["status"] = u.Status
	}
	if len(changes) == 0 {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("No data provided for update")}
	}
	changes["update_time"] = types.CurrentTimestamp()

	record := domain.Bug{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Bug{ID: id}).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: fmt.Errorf("Bug with ID %d not found", id)}
			}
			return err
		}
		if err := checkBugMutationPerms(&record, sec); err != nil {
			return err
		}
		if err := tx.Model(&domain.Bug{}).Where(&domain.Bug{ID: id}).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where(&domain.Bug{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if IndexBugsFunc != nil {
		IndexBugsFunc([]domain.Bug{record})
	}
	return &record, nil
}

func DeleteBug(id types.ID, sec *session.Session) (*domain.Bug, error) {
	record := domain.Bug{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Bug{ID: id}).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: fmt.Errorf("Bug with ID %d not found", id)}
			}
			return err
		}
		if err := checkBugMutationPerms(&record, sec); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Bug{ID: id}).Error; err != nil {
			return err
		}
		return comment.CleanBugCommentsDirectly(id, tx)
	})
	if txErr != nil {
		return nil, txErr
	}

	if DeleteBugIndexFunc != nil {
		DeleteBugIndexFunc(id)
	}
	return &record, nil
}

// checkBugMutationPerms allows the reporter, the project lead and system admins.
func checkBugMutationPerms(record *domain.Bug, sec *session.Session) error {
	if record.Reporter == sec.Identity.ID ||
		sec.Perms.HasRole(account.SystemAdminPerm) ||
		sec.Perms.HasRole(domain.ProjectRoleLead+"_"+record.ProjectID.String()) {
		return nil
	}
	return bizerror.ErrForbidden
}
