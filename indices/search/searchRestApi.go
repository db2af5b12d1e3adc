package search

import (
	"net/http"

	"bugtrack/session"

	"github.com/gin-gonic/gin"
)

var (
	PathBugSearch = "/bug-search"
)

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathBugSearch, middleWares...)
	g.GET("", handleSearchBugs)
}

func handleSearchBugs(c *gin.Context) {
	query := BugSearchQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(err)
	}
	result, err := SearchBugsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
