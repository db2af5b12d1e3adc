package bug

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/misc"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var BugsApiRoot = "/bugs"

func RegisterBugsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	bugs := r.Group(BugsApiRoot, middleWares...)
	bugs.GET("", HandleQueryBugs)
	bugs.POST("", HandleCreateBug)
	bugs.GET(":id", HandleDetailBug)
	bugs.PUT(":id", HandleUpdateBug)
	bugs.DELETE(":id", HandleDeleteBug)

	// route names kept from earlier API revisions, old clients still use them
	legacy := r.Group("", middleWares...)
	legacy.POST("/createbug", HandleCreateBug)
	legacy.GET("/allbugs", HandleQueryBugs)
	legacy.GET("/getbugs/:projectid", HandleQueryProjectBugs)
}

func HandleQueryBugs(c *gin.Context) {
	query := domain.BugQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(err)
	}
	result, err := QueryBugsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryProjectBugs(c *gin.Context) {
	idStr := c.Param("projectid")
	idNum, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || idNum == 0 {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid project ID")})
	}
	projectId := types.ID(idNum)

	query := domain.BugQuery{ProjectID: &projectId}
	result, err := QueryBugsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateBug(c *gin.Context) {
	payload := domain.BugCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateBugFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"bugid": result.ID, "message": "Bug created successfully"})
}

func HandleDetailBug(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid bug ID")})
	}
	result, err := DetailBugFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateBug(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid bug ID")})
	}
	payload := domain.BugUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateBugFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bug updated successfully", "bug": result})
}

func HandleDeleteBug(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid bug ID")})
	}
	result, err := DeleteBugFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Bug with ID %d deleted successfully", result.ID)})
}
