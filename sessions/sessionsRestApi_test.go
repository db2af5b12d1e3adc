package sessions_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/common"
	"bugtrack/domain"
	"bugtrack/persistence"
	"bugtrack/session"
	"bugtrack/sessions"
	"bugtrack/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestLoginAPI(t *testing.T) {
	RegisterTestingT(t)

	os.Setenv("JWT_SECRET", "test-signing-secret")

	testDatabase := testinfra.StartMysqlTestDatabase("bugtrack")
	defer testinfra.StopMysqlTestDatabase(testDatabase)
	Expect(testDatabase.DS.GormDB(nil).AutoMigrate(&account.User{}, &domain.Project{}, &domain.ProjectMember{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = testDatabase.DS

	digest, err := account.HashSecret("right-pass")
	Expect(err).To(BeNil())
	Expect(testDatabase.DS.GormDB(nil).Create(&account.User{
		ID: 10, Name: "ann", Email: "ann@test.com", Secret: digest, Role: domain.RoleUser}).Error).To(BeNil())

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	sessions.RegisterSessionsRestApis(router)
	sessions.RegisterSessionHandler(router)

	invalidCredentialsBody := `{"code": "security.invalid_credentials", "message": "Invalid email or password"}`

	t.Run("missing fields should be rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, sessions.PathLogin, common.StringReader(`{"email":"ann@test.com"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("unknown email and wrong password should look identical", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, sessions.PathLogin,
			common.StringReader(`{"email":"nobody@test.com", "password":"whatever"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(invalidCredentialsBody))

		req = httptest.NewRequest(http.MethodPost, sessions.PathLogin,
			common.StringReader(`{"email":"ann@test.com", "password":"wrong-pass"}`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(invalidCredentialsBody))
	})

	t.Run("valid credentials should yield a token and a cached session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, sessions.PathLogin,
			common.StringReader(`{"email":"Ann@Test.com", "password":"right-pass"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		resp := struct {
			Message string           `json:"message"`
			Token   string           `json:"token"`
			User    account.UserInfo `json:"user"`
		}{}
		Expect(json.Unmarshal([]byte(body), &resp)).To(BeNil())
		Expect(resp.Message).To(Equal("Login successful"))
		Expect(resp.Token).ToNot(BeEmpty())
		Expect(resp.User.Email).To(Equal("ann@test.com"))

		cached, found := session.TokenCache.Get(resp.Token)
		Expect(found).To(BeTrue())
		Expect(cached.(*session.Session).Identity.Name).To(Equal("ann"))

		identity, err := session.VerifyToken(resp.Token)
		Expect(err).To(BeNil())
		Expect(identity.Email).To(Equal("ann@test.com"))

		// logout evicts the cached session
		logoutReq := httptest.NewRequest(http.MethodDelete, "/sessions", nil)
		logoutReq.Header.Set("Authorization", "Bearer "+resp.Token)
		status, _, _ = testinfra.ExecuteRequest(logoutReq, router)
		Expect(status).To(Equal(http.StatusNoContent))
		_, found = session.TokenCache.Get(resp.Token)
		Expect(found).To(BeFalse())
	})
}
