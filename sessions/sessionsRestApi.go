package sessions

import (
	"net/http"
	"strings"
	"time"

	"bugtrack/account"
	"bugtrack/bizerror"
	"bugtrack/persistence"
	"bugtrack/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

var PathLogin = "/login"

// loginLimiter throttles credential guessing across all clients.
var loginLimiter = rate.NewLimiter(rate.Every(time.Second), 20)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func RegisterSessionsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("", middleWares...)
	g.POST(PathLogin, HandleLogin)
}

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/sessions", middleWares...)
	g.DELETE("", HandleLogout)
}

func HandleLogin(c *gin.Context) {
	if !loginLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts, try again later"})
		return
	}

	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(err)
	}

	user := account.User{}
	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	if err := db.Where(&account.User{Email: strings.ToLower(login.Email)}).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			panic(bizerror.ErrInvalidCredentials)
		}
		panic(err)
	}
	if !account.VerifySecret(login.Password, user.Secret) {
		panic(bizerror.ErrInvalidCredentials)
	}

	identity := session.Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
	token, err := session.IssueTokenFunc(&identity)
	if err != nil {
		panic(err)
	}

	perms, projectRoles := account.LoadPermFunc(user.ID)
	session.TokenCache.Set(token, &session.Session{
		Token:        token,
		Identity:     identity,
		Perms:        perms,
		ProjectRoles: projectRoles,
		SigningTime:  time.Now(),
	}, cache.DefaultExpiration)

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "user": user.Info()})
}

func HandleLogout(c *gin.Context) {
	token := session.BearerToken(c.Request)
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
