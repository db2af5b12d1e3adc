package account_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/common"
	"bugtrack/notification"
	"bugtrack/session"
	"bugtrack/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestRegisterUserAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	account.RegisterPublicUserRestApis(router)

	t.Run("should validate the payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, account.PathRegister, common.StringReader(`{"name":"ann"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("validation failed"))

		req = httptest.NewRequest(http.MethodPost, account.PathRegister, nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "bad_request.body_not_found", "message": "body not found"}`))
	})

	t.Run("should respond with the created user and a token", func(t *testing.T) {
		account.RegisterUserFunc = func(reg *account.UserRegistration, sec *session.Session) (*account.UserInfo, error) {
			return &account.UserInfo{ID: 123, Name: reg.Name, Email: reg.Email, Role: "user"}, nil
		}
		session.IssueTokenFunc = func(identity *session.Identity) (string, error) {
			return "test-token", nil
		}
		welcomed := ""
		notification.SendWelcomeEmailFunc = func(name, email string) {
			welcomed = email
		}
		defer func() {
			account.RegisterUserFunc = account.RegisterUser
			session.IssueTokenFunc = session.IssueToken
			notification.SendWelcomeEmailFunc = notification.SendWelcomeEmail
		}()

		req := httptest.NewRequest(http.MethodPost, account.PathRegister,
			common.StringReader(`{"name":"ann", "email":"ann@test.com", "password":"secret1"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"message": "User registered successfully.",
			"user": {"id": "123", "name": "ann", "email": "ann@test.com", "role": "user"},
			"token": "test-token"}`))
		Expect(welcomed).To(Equal("ann@test.com"))
	})

	t.Run("duplicate email should yield the pinned message", func(t *testing.T) {
		account.RegisterUserFunc = func(reg *account.UserRegistration, sec *session.Session) (*account.UserInfo, error) {
			return nil, bizerror.ErrEmailExists
		}
		defer func() { account.RegisterUserFunc = account.RegisterUser }()

		req := httptest.NewRequest(http.MethodPost, account.PathRegister,
			common.StringReader(`{"name":"ann", "email":"ann@test.com", "password":"secret1"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "account.email_exists", "message": "Email already exists"}`))
	})
}

func TestUsersAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	account.RegisterUsersRestApis(router)

	t.Run("malformed ids should be rejected before any lookup", func(t *testing.T) {
		invoked := false
		account.DetailUserFunc = func(id types.ID, sec *session.Session) (*account.UserInfo, error) {
			invoked = true
			return nil, nil
		}
		defer func() { account.DetailUserFunc = account.DetailUser }()

		req := httptest.NewRequest(http.MethodGet, account.PathUsers+"/abc", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "common.bad_param", "message": "Invalid user ID"}`))
		Expect(invoked).To(BeFalse())
	})

	t.Run("update should respond with an envelope", func(t *testing.T) {
		account.UpdateUserFunc = func(id types.ID, u *account.UserUpdating, sec *session.Session) (*account.UserInfo, error) {
			Expect(id).To(Equal(types.ID(123)))
			return &account.UserInfo{ID: id, Name: u.Name, Email: "ann@test.com", Role: "user"}, nil
		}
		defer func() { account.UpdateUserFunc = account.UpdateUser }()

		req := httptest.NewRequest(http.MethodPut, account.PathUsers+"/123", common.StringReader(`{"name":"ann b"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"message": "User updated successfully",
			"user": {"id": "123", "name": "ann b", "email": "ann@test.com", "role": "user"}}`))
	})

	t.Run("service not found errors should pass through as 404", func(t *testing.T) {
		account.DeleteUserFunc = func(id types.ID, sec *session.Session) (*account.UserInfo, error) {
			return nil, &bizerror.ErrNotFound{Cause: errors.New("User not found")}
		}
		defer func() { account.DeleteUserFunc = account.DeleteUser }()

		req := httptest.NewRequest(http.MethodDelete, account.PathUsers+"/123", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code": "common.record_not_found", "message": "User not found"}`))
	})
}

func TestResetPasswordAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	account.RegisterPublicUserRestApis(router)

	t.Run("forgot-password should not reveal whether the email exists", func(t *testing.T) {
		requested := ""
		account.ForgotPasswordFunc = func(email string, ctx context.Context) error {
			requested = email
			return nil
		}
		defer func() { account.ForgotPasswordFunc = account.ForgotPassword }()

		req := httptest.NewRequest(http.MethodPost, "/forgot-password",
			common.StringReader(`{"email":"unknown@test.com"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"message": "If the email is registered, a reset link has been sent"}`))
		Expect(requested).To(Equal("unknown@test.com"))
	})

	t.Run("reset-password with a bad token should be a 400", func(t *testing.T) {
		account.ResetPasswordFunc = func(token, password string, ctx context.Context) error {
			return bizerror.ErrInvalidResetToken
		}
		defer func() { account.ResetPasswordFunc = account.ResetPassword }()

		req := httptest.NewRequest(http.MethodPost, "/reset-password",
			common.StringReader(`{"token":"stale", "password":"secret1"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "account.invalid_reset_token", "message": "Invalid or expired reset token"}`))
	})
}
