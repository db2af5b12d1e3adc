package comment

import (
	"errors"
	"strings"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/idgen"
	"bugtrack/persistence"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCommentFunc = CreateComment
	QueryCommentsFunc = QueryComments
	DetailCommentFunc = DetailComment
	UpdateCommentFunc = UpdateComment
	DeleteCommentFunc = DeleteComment
)

type Comment struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	BugID  types.ID `json:"bugId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID types.ID `json:"userId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Content string `json:"content" sql:"type:TEXT"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

type CommentCreation struct {
	BugID   types.ID `json:"bugId"`
	Content string   `json:"content"`

	// UserID defaults to the session identity when omitted
	UserID types.ID `json:"userId"`
}

type CommentUpdating struct {
	Content string `json:"content"`
}

type CommentQuery struct {
	BugID *types.ID `form:"bugId"`
}

func CreateComment(c *CommentCreation, sec *session.Session) (*Comment, error) {
	content := strings.TrimSpace(c.Content)
	if c.BugID == 0 || content == "" {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("Missing required fields")}
	}

	userId := c.UserID
	if userId == 0 {
		userId = sec.Identity.ID
	}

	record := Comment{ID: idgen.NextID(idWorker), BugID: c.BugID, UserID: userId,
		Content: content, Timestamp: types.CurrentTimestamp()}

	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		bug := domain.Bug{}
		if err := tx.Where(&domain.Bug{ID: c.BugID}).First(&bug).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("Bug not found")}
			}
			return err
		}
		user := account.User{}
		if err := tx.Where(&account.User{ID: userId}).First(&user).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("User not found")}
			}
			return err
		}
		return tx.Create(record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func QueryComments(q *CommentQuery, sec *session.Session) (*[]Comment, error) {
	dbQuery := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Model(&Comment{})
	if q.BugID != nil {
		dbQuery = dbQuery.Where("bug_id = ?", q.BugID)
	}

	comments := []Comment{}
	if err := dbQuery.Order("timestamp ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return &comments, nil
}

func DetailComment(id types.ID, sec *session.Session) (*Comment, error) {
	record := Comment{}
	db := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec))
	if err := db.Where(&Comment{ID: id}).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, &bizerror.ErrNotFound{Cause: errors.New("Comment not found")}
		}
		return nil, err
	}
	return &record, nil
}

func UpdateComment(id types.ID, u *CommentUpdating, sec *session.Session) (*Comment, error) {
	content := strings.TrimSpace(u.Content)
	if content == "" {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("Content is required")}
	}

	record := Comment{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Comment{ID: id}).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("Comment not found")}
			}
			return err
		}
		if err := checkCommentMutationPerms(&record, sec); err != nil {
			return err
		}
		if err := tx.Model(&Comment{}).Where(&Comment{ID: id}).
			Update("content", content).Error; err != nil {
			return err
		}
		return tx.Where(&Comment{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func DeleteComment(id types.ID, sec *session.Session) (*Comment, error) {
	record := Comment{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Comment{ID: id}).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return &bizerror.ErrNotFound{Cause: errors.New("Comment not found")}
			}
			return err
		}
		if err := checkCommentMutationPerms(&record, sec); err != nil {
			return err
		}
		return tx.Delete(&Comment{ID: id}).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// checkCommentMutationPerms allows the comment author and system admins.
func checkCommentMutationPerms(record *Comment, sec *session.Session) error {
	if record.UserID == sec.Identity.ID || sec.Perms.HasRole(account.SystemAdminPerm) {
		return nil
	}
	return bizerror.ErrForbidden
}

// CleanBugCommentsDirectly removes all comments of a bug inside the caller's
// transaction, so a bug deletion never leaves orphans.
func CleanBugCommentsDirectly(bugID types.ID, tx *gorm.DB) error {
	return tx.Where(&Comment{BugID: bugID}).Delete(Comment{}).Error
}
