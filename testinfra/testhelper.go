package testinfra

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"bugtrack/authority"
	"bugtrack/domain"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a session for tests, project roles are derived from
// perms of the form "<role>_<projectId>".
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	projectRoles := authority.ProjectRoles{}
	for _, perm := range perms {
		idx := strings.LastIndex(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			projectId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			projectRoles = append(projectRoles, domain.ProjectRole{ProjectID: projectId, Role: role})
		}
	}

	return &session.Session{Identity: session.Identity{ID: uid}, Perms: perms, ProjectRoles: projectRoles}
}

// ExecuteRequest drives a request through the router and collects the response.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
