package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"bugtrack/bizerror"
	"bugtrack/notification"
	"bugtrack/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

// reset tokens are single use and expire after one hour
var ResetTokenCache = cache.New(time.Hour, 10*time.Minute)

var (
	ForgotPasswordFunc = ForgotPassword
	ResetPasswordFunc  = ResetPassword
)

// ForgotPassword always reports success to the caller so the endpoint
// can not be used to probe which emails are registered.
func ForgotPassword(email string, ctx context.Context) error {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Where(&User{Email: strings.ToLower(email)}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token := uuid.New().String()
	ResetTokenCache.Set(token, user.ID, cache.DefaultExpiration)
	notification.SendPasswordResetEmailFunc(user.Name, user.Email, token)
	return nil
}

func ResetPassword(token, newPassword string, ctx context.Context) error {
	if newPassword == "" {
		return &bizerror.ErrBadParam{Cause: errors.New("Password is required")}
	}
	value, found := ResetTokenCache.Get(token)
	if !found {
		return bizerror.ErrInvalidResetToken
	}
	uid, ok := value.(types.ID)
	if !ok {
		return bizerror.ErrInvalidResetToken
	}

	digest, err := HashSecret(newPassword)
	if err != nil {
		return err
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Model(&User{}).Where(&User{ID: uid}).Update("secret", digest).Error; err != nil {
		return err
	}
	ResetTokenCache.Delete(token)
	return nil
}
