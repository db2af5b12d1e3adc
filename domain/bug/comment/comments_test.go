package comment_test

import (
	"testing"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/domain/bug/comment"
	"bugtrack/persistence"
	"bugtrack/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestCreateCommentValidation(t *testing.T) {
	RegisterTestingT(t)

	sec := testinfra.BuildSecCtx(types.ID(10))

	t.Run("bug id and content are mandatory", func(t *testing.T) {
		_, err := comment.CreateComment(&comment.CommentCreation{Content: "note"}, sec)
		Expect(err.Error()).To(Equal("Missing required fields"))

		_, err = comment.CreateComment(&comment.CommentCreation{BugID: 1, Content: "   "}, sec)
		Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrBadParam{}))
		Expect(err.Error()).To(Equal("Missing required fields"))
	})
}

func TestComments(t *testing.T) {
	RegisterTestingT(t)

	testDatabase := testinfra.StartMysqlTestDatabase("bugtrack")
	defer testinfra.StopMysqlTestDatabase(testDatabase)
	Expect(testDatabase.DS.GormDB(nil).AutoMigrate(
		&account.User{}, &domain.Project{}, &domain.Bug{}, &comment.Comment{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = testDatabase.DS

	db := testDatabase.DS.GormDB(nil)
	Expect(db.Create(&account.User{ID: 10, Name: "author", Email: "a@t.com"}).Error).To(BeNil())
	now := types.CurrentTimestamp()
	Expect(db.Create(&domain.Bug{ID: 500, ProjectID: 100, Title: "crash", Reporter: 10,
		CreateTime: now, UpdateTime: now}).Error).To(BeNil())

	author := testinfra.BuildSecCtx(types.ID(10))

	t.Run("create defaults the author to the session identity", func(t *testing.T) {
		c, err := comment.CreateComment(&comment.CommentCreation{BugID: 500, Content: "  first note  "}, author)
		Expect(err).To(BeNil())
		Expect(c.UserID).To(Equal(types.ID(10)))
		Expect(c.Content).To(Equal("first note"))
		Expect(c.Timestamp.Time().IsZero()).To(BeFalse())
	})

	t.Run("create verifies the referenced bug and user", func(t *testing.T) {
		_, err := comment.CreateComment(&comment.CommentCreation{BugID: 987654, Content: "note"}, author)
		Expect(err.Error()).To(Equal("Bug not found"))

		_, err = comment.CreateComment(&comment.CommentCreation{BugID: 500, UserID: 987654, Content: "note"}, author)
		Expect(err.Error()).To(Equal("User not found"))
	})

	t.Run("query filters by bug id in timestamp order", func(t *testing.T) {
		_, err := comment.CreateComment(&comment.CommentCreation{BugID: 500, Content: "second note"}, author)
		Expect(err).To(BeNil())

		bugId := types.ID(500)
		list, err := comment.QueryComments(&comment.CommentQuery{BugID: &bugId}, author)
		Expect(err).To(BeNil())
		Expect(len(*list)).To(Equal(2))
		Expect((*list)[0].Content).To(Equal("first note"))
		Expect((*list)[1].Content).To(Equal("second note"))

		other := types.ID(501)
		list, err = comment.QueryComments(&comment.CommentQuery{BugID: &other}, author)
		Expect(err).To(BeNil())
		Expect(*list).To(BeEmpty())
	})

	t.Run("update requires content and is author or admin only", func(t *testing.T) {
		c, err := comment.CreateComment(&comment.CommentCreation{BugID: 500, Content: "to update"}, author)
		Expect(err).To(BeNil())

		_, err = comment.UpdateComment(c.ID, &comment.CommentUpdating{Content: "  "}, author)
		Expect(err.Error()).To(Equal("Content is required"))

		outsider := testinfra.BuildSecCtx(types.ID(33))
		_, err = comment.UpdateComment(c.ID, &comment.CommentUpdating{Content: "hack"}, outsider)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		updated, err := comment.UpdateComment(c.ID, &comment.CommentUpdating{Content: "updated note"}, author)
		Expect(err).To(BeNil())
		Expect(updated.Content).To(Equal("updated note"))

		admin := testinfra.BuildSecCtx(types.ID(99), account.SystemAdminPerm)
		_, err = comment.UpdateComment(c.ID, &comment.CommentUpdating{Content: "admin note"}, admin)
		Expect(err).To(BeNil())

		_, err = comment.UpdateComment(types.ID(987654), &comment.CommentUpdating{Content: "x"}, admin)
		Expect(err.Error()).To(Equal("Comment not found"))
	})

	t.Run("delete returns the removed comment and then reports not found", func(t *testing.T) {
		c, err := comment.CreateComment(&comment.CommentCreation{BugID: 500, Content: "to delete"}, author)
		Expect(err).To(BeNil())

		deleted, err := comment.DeleteComment(c.ID, author)
		Expect(err).To(BeNil())
		Expect(deleted.ID).To(Equal(c.ID))

		_, err = comment.DeleteComment(c.ID, author)
		Expect(err.Error()).To(Equal("Comment not found"))
	})
}
