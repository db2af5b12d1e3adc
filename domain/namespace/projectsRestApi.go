package namespace

import (
	"errors"
	"net/http"

	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/misc"
	"bugtrack/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var ProjectsApiRoot = "/projects"

func RegisterProjectsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	projects := r.Group(ProjectsApiRoot, middleWares...)
	projects.GET("", HandleQueryProjects)
	projects.POST("", HandleCreateProject)
	projects.GET(":id", HandleDetailProject)
	projects.PUT(":id", HandleUpdateProject)
	projects.DELETE(":id", HandleDeleteProject)
}

func RegisterProjectMembersRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	members := r.Group("/project-members", middleWares...)
	members.GET("", HandleQueryProjectMembers)
}

func HandleQueryProjects(c *gin.Context) {
	result, err := QueryProjectsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &result)
}

func HandleDetailProject(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid project ID")})
	}
	result, err := DetailProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateProject(c *gin.Context) {
	payload := domain.ProjectCreating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateProjectFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Project created successfully", "project": result})
}

func HandleUpdateProject(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid project ID")})
	}
	payload := domain.ProjectUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateProjectFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully", "project": result})
}

func HandleDeleteProject(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid project ID")})
	}
	result, err := DeleteProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully", "project": result})
}

func HandleQueryProjectMembers(c *gin.Context) {
	query := domain.ProjectMemberQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(err)
	}
	result, err := QueryProjectMemberDetailsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
