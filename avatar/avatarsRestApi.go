package avatar

import (
	"errors"
	"net/http"

	"bugtrack/bizerror"
	"bugtrack/misc"
	"bugtrack/session"

	"github.com/gin-gonic/gin"
)

var (
	AvatarsApiRoot = "/avatars"

	DetailAvatarFunc = DetailAvatar
	CreateAvatarFunc = CreateAvatar
)

func RegisterAvatarsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(AvatarsApiRoot, middleWares...)
	g.GET(":id", HandleGetAvatar)
	g.POST(":id", HandleCreateAvatar)
}

func HandleGetAvatar(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid user ID")})
	}

	bytes, err := DetailAvatarFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}

	c.Data(http.StatusOK, "image/png", bytes)
}

func HandleCreateAvatar(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("Invalid user ID")})
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(err)
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	if err := CreateAvatarFunc(id, src, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}

	c.JSON(http.StatusOK, gin.H{})
}
