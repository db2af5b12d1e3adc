package session

import (
	"net/http"
	"strings"
	"time"

	"bugtrack/authority"
	"bugtrack/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

var TokenCache = cache.New(TokenExpiration, 10*time.Minute)

const KeySecCtx = "SecCtx"

// LoadPermsFunc is wired at startup to the account package perms loader,
// keeping this package free of a dependency on the user store.
var LoadPermsFunc func(uid types.ID) (authority.Permissions, authority.ProjectRoles)

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

func InjectSessionIntoGinContext(ctx *gin.Context, secCtx *Session) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := BearerToken(ctx.Request)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}

		if value, found := TokenCache.Get(token); found {
			if secCtx, ok := value.(*Session); ok {
				InjectSessionIntoGinContext(ctx, secCtx)
				ctx.Next()
				return
			}
		}

		// cache miss: verify the signed token and rebuild the session
		identity, err := VerifyToken(token)
		if err != nil {
			panic(bizerror.ErrUnauthenticated)
		}
		secCtx := &Session{Token: token, Identity: *identity, SigningTime: time.Now()}
		if LoadPermsFunc != nil {
			secCtx.Perms, secCtx.ProjectRoles = LoadPermsFunc(identity.ID)
		}
		TokenCache.Set(token, secCtx, cache.DefaultExpiration)

		InjectSessionIntoGinContext(ctx, secCtx)
		ctx.Next()
	}
}
