package account

import (
	"errors"
	"strings"

	"bugtrack/bizerror"
	"bugtrack/domain"
	"bugtrack/idgen"
	"bugtrack/persistence"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
	"golang.org/x/crypto/bcrypt"
)

const SystemAdminPerm = "system:admin"

const mysqlErrDuplicateEntry = 1062

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RegisterUserFunc = RegisterUser
	CreateUserFunc   = CreateUser
	QueryUsersFunc   = QueryUsers
	DetailUserFunc   = DetailUser
	UpdateUserFunc   = UpdateUser
	DeleteUserFunc   = DeleteUser
)

func HashSecret(raw string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func VerifySecret(raw, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}

// RegisterUser is the public registration path. A requested role is ignored
// unless the acting session holds the admin role; everyone else gets "user".
func RegisterUser(reg *UserRegistration, sec *session.Session) (*UserInfo, error) {
	role := domain.RoleUser
	if reg.Role != "" && sec != nil && sec.Perms.HasRole(SystemAdminPerm) {
		if err := domain.CheckEnum("role", reg.Role); err != nil {
			return nil, err
		}
		role = reg.Role
	}
	return createUser(reg, role, sec)
}

// CreateUser is the admin-only user management path.
func CreateUser(reg *UserRegistration, sec *session.Session) (*UserInfo, error) {
	if !sec.Perms.HasRole(SystemAdminPerm) {
		return nil, bizerror.ErrForbidden
	}
	role := domain.RoleUser
	if reg.Role != "" {
		if err := domain.CheckEnum("role", reg.Role); err != nil {
			return nil, err
		}
		role = reg.Role
	}
	return createUser(reg, role, sec)
}

func createUser(reg *UserRegistration, role string, sec *session.Session) (*UserInfo, error) {
	digest, err := HashSecret(reg.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:     idgen.NextID(userIdWorker),
		Name:   reg.Name,
		Email:  strings.ToLower(reg.Email),
		Secret: digest,
		Role:   role,
	}
	db := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec))
	if err := db.Create(&user).Error; err != nil {
		// uniqueness is enforced by the database, not a pre-check
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return nil, bizerror.ErrEmailExists
		}
		return nil, err
	}

	info := user.Info()
	return &info, nil
}

func QueryUsers(sec *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec))
	if err := db.Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func DetailUser(id types.ID, sec *session.Session) (*UserInfo, error) {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec))
	if err := db.Where(&User{ID: id}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &bizerror.ErrNotFound{Cause: errors.New("User not found")}
		}
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

func UpdateUser(id types.ID, u *UserUpdating, sec *session.Session) (*UserInfo, error) {
	if !sec.Perms.HasRole(SystemAdminPerm) && id != sec.Identity.ID {
		return nil, bizerror.ErrForbidden
	}
	if u.Role != "" && !sec.Perms.HasRole(SystemAdminPerm) {
		return nil, bizerror.ErrForbidden
	}

	user := User{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&User{ID: id}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &bizerror.ErrNotFound{Cause: errors.New("User not found")}
			}
			return err
		}

		changes := map[string]interface{}{}
		if u.Name != "" {
			changes["name"] = u.Name
		}
		if u.Email != "" {
			changes["email"] = strings.ToLower(u.Email)
		}
		if u.Password != "" {
			digest, err := HashSecret(u.Password)
			if err != nil {
				return err
			}
			changes["secret"] = digest
		}
		if u.Role != "" {
			if err := domain.CheckEnum("role", u.Role); err != nil {
				return err
			}
			changes["role"] = u.Role
		}
		if len(changes) == 0 {
			return &bizerror.ErrBadParam{Cause: errors.New("No data provided for update")}
		}

		if err := tx.Model(&User{}).Where(&User{ID: id}).Updates(changes).Error; err != nil {
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
				return bizerror.ErrEmailExists
			}
			return err
		}
		return tx.Where(&User{ID: id}).First(&user).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	info := user.Info()
	return &info, nil
}

func DeleteUser(id types.ID, sec *session.Session) (*UserInfo, error) {
	if !sec.Perms.HasRole(SystemAdminPerm) {
		return nil, bizerror.ErrForbidden
	}

	user := User{}
	txErr := persistence.ActiveDataSourceManager.GormDB(session.ContextOf(sec)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&User{ID: id}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &bizerror.ErrNotFound{Cause: errors.New("User not found")}
			}
			return err
		}
		if err := tx.Delete(&User{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.ProjectMember{}, "member_id = ?", id).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	info := user.Info()
	return &info, nil
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}
