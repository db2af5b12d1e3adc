package account

import (
	"errors"
	"net/http"

	"bugtrack/bizerror"
	"bugtrack/misc"
	"bugtrack/notification"
	"bugtrack/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathRegister = "/register"
	PathUsers    = "/users"
)

func RegisterPublicUserRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("", middleWares...)
	g.POST(PathRegister, HandleRegisterUser)
	g.POST("/forgot-password", HandleForgotPassword)
	g.POST("/reset-password", HandleResetPassword)
}

func RegisterUsersRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group(PathUsers, middleWares...)
	users.GET("", HandleQueryUsers)
	users.POST("", HandleCreateUser)
	users.GET(":id", HandleDetailUser)
	users.PUT(":id", HandleUpdateUser)
	users.DELETE(":id", HandleDeleteUser)
}

func HandleRegisterUser(c *gin.Context) {
	payload := UserRegistration{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}

	user, err := RegisterUserFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}

	token, err := session.IssueTokenFunc(&session.Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
	if err != nil {
		panic(err)
	}

	notification.SendWelcomeEmailFunc(user.Name, user.Email)

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully.", "user": user, "token": token})
}

func HandleCreateUser(c *gin.Context) {
	payload := UserRegistration{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}

	user, err := CreateUserFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

func HandleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func HandleDetailUser(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid user ID")})
	}
	user, err := DetailUserFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func HandleUpdateUser(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid user ID")})
	}
	payload := UserUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	user, err := UpdateUserFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

func HandleDeleteUser(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid user ID")})
	}
	user, err := DeleteUserFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully", "user": user})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,gte=6,lte=72"`
}

func HandleForgotPassword(c *gin.Context) {
	payload := ForgotPasswordRequest{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	if err := ForgotPasswordFunc(payload.Email, c.Request.Context()); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

func HandleResetPassword(c *gin.Context) {
	payload := ResetPasswordRequest{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	if err := ResetPasswordFunc(payload.Token, payload.Password, c.Request.Context()); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
