package namespace_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bugtrack/bizerror"
	"bugtrack/common"
	"bugtrack/domain"
	"bugtrack/domain/namespace"
	"bugtrack/session"
	"bugtrack/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestProjectsAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	namespace.RegisterProjectsRestApis(router)

	t.Run("should be able to query projects", func(t *testing.T) {
		namespace.QueryProjectsFunc = func(sec *session.Session) (*[]domain.Project, error) {
			ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			return &[]domain.Project{{ID: 123, Title: "demo", Description: "d", CreateTime: ts, Creator: 10}}, nil
		}
		defer func() { namespace.QueryProjectsFunc = namespace.QueryProjects }()

		req := httptest.NewRequest(http.MethodGet, namespace.ProjectsApiRoot, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[{"id": "123", "title": "demo", "description": "d",
			"createTime": "2026-01-01T00:00:00Z", "creator": "10"}]`))
	})

	t.Run("create should respond 201 with an envelope", func(t *testing.T) {
		namespace.CreateProjectFunc = func(c *domain.ProjectCreating, sec *session.Session) (*domain.Project, error) {
			ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			return &domain.Project{ID: 123, Title: c.Title, CreateTime: ts, Creator: 10}, nil
		}
		defer func() { namespace.CreateProjectFunc = namespace.CreateProject }()

		req := httptest.NewRequest(http.MethodPost, namespace.ProjectsApiRoot,
			common.StringReader(`{"title": "demo"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"message": "Project created successfully",
			"project": {"id": "123", "title": "demo", "description": "",
				"createTime": "2026-01-01T00:00:00Z", "creator": "10"}}`))
	})

	t.Run("missing title should fail binding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, namespace.ProjectsApiRoot, common.StringReader(`{}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("validation failed"))
	})

	t.Run("malformed project id should be rejected", func(t *testing.T) {
		invoked := false
		namespace.DeleteProjectFunc = func(id types.ID, sec *session.Session) (*domain.Project, error) {
			invoked = true
			return nil, nil
		}
		defer func() { namespace.DeleteProjectFunc = namespace.DeleteProject }()

		req := httptest.NewRequest(http.MethodDelete, namespace.ProjectsApiRoot+"/0", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "common.bad_param", "message": "Invalid project ID"}`))
		Expect(invoked).To(BeFalse())
	})
}
