package comment

import (
	"errors"
	"net/http"

	"bugtrack/bizerror"
	"bugtrack/misc"
	"bugtrack/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var CommentsApiRoot = "/comments"

func RegisterCommentsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	comments := r.Group(CommentsApiRoot, middleWares...)
	comments.GET("", HandleQueryComments)
	comments.POST("", HandleCreateComment)
	comments.GET(":id", HandleDetailComment)
	comments.PUT(":id", HandleUpdateComment)
	comments.DELETE(":id", HandleDeleteComment)
}

func HandleQueryComments(c *gin.Context) {
	query := CommentQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(err)
	}
	result, err := QueryCommentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateComment(c *gin.Context) {
	payload := CommentCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateCommentFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment created successfully", "comment": result})
}

func HandleDetailComment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid comment ID")})
	}
	result, err := DetailCommentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateComment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid comment ID")})
	}
	payload := CommentUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateCommentFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully", "comment": result})
}

func HandleDeleteComment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid comment ID")})
	}
	result, err := DeleteCommentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully", "comment": result})
}
