package main

import (
	"log"
	"net/http"
	"os"

	"bugtrack/account"
	"bugtrack/authority"
	"bugtrack/avatar"
	"bugtrack/bizerror"
	"bugtrack/client/es"
	"bugtrack/client/s3"
	"bugtrack/common"
	"bugtrack/domain"
	"bugtrack/domain/bug"
	"bugtrack/domain/bug/comment"
	"bugtrack/domain/namespace"
	"bugtrack/indices"
	"bugtrack/indices/search"
	"bugtrack/infra/tracing"
	"bugtrack/persistence"
	"bugtrack/session"
	"bugtrack/sessions"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	log.Println("service start")

	tracingCloser, err := tracing.InitTracer(common.GetServiceName())
	if err != nil {
		log.Fatalf("tracer init failed %v\n", err)
	}
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{}, &domain.Project{}, &domain.ProjectMember{},
		&domain.Bug{}, &comment.Comment{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	session.LoadPermsFunc = func(uid types.ID) (authority.Permissions, authority.ProjectRoles) {
		return account.LoadPermFunc(uid)
	}

	engine := gin.New()
	engine.Use(gin.Logger(), tracing.TracingIngress(), bizerror.ErrorHandling())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	account.RegisterPublicUserRestApis(engine)
	sessions.RegisterSessionsRestApis(engine)

	authed := session.SimpleAuthFilter()
	account.RegisterUsersRestApis(engine, authed)
	sessions.RegisterSessionHandler(engine, authed)
	namespace.RegisterProjectsRestApis(engine, authed)
	namespace.RegisterProjectMembersRestApis(engine, authed)
	bug.RegisterBugsRestApis(engine, authed)
	comment.RegisterCommentsRestApis(engine, authed)
	avatar.RegisterAvatarsRestApis(engine, authed)

	if os.Getenv("ELASTICSEARCH_URL") != "" {
		es.CreateClientFromEnv()
		bug.IndexBugsFunc = func(bugs []domain.Bug) { indices.IndexBugs(bugs) }
		bug.DeleteBugIndexFunc = func(id types.ID) { indices.DeleteBugIndex(id) }
		search.RegisterSearchRestAPI(engine, authed)
	}

	if os.Getenv("OSS_ENDPOINT") != "" {
		s3.Bootstrap()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	if err := engine.Run(":" + port); err != nil {
		panic(err)
	}
}
