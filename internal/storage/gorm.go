package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"EmergencyAssist/internal/models"
	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage 基于 gorm 的关系型存储，支持 sqlite / mysql / postgres
type GormStorage struct {
	emitter
	db  *gorm.DB
	now func() time.Time
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return NewGormStorageWithSignals(db, util.Sig())
}

func NewGormStorageWithSignals(db *gorm.DB, sig *util.Signals) *GormStorage {
	return &GormStorage{emitter: emitter{sig: sig}, db: db, now: time.Now}
}

// Migrate 建表，并在规程与联系人表为空时写入内置数据
func (s *GormStorage) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(
		&models.User{},
		&models.EmergencyProtocol{},
		&models.EmergencyContact{},
		&models.UserSession{},
	); err != nil {
		return apperrors.Wrapf(err, "migrate %s", db.Dialector.Name())
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.EmergencyProtocol{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			seeds := models.SeedProtocols(s.now())
			if err := tx.Create(&seeds).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.EmergencyContact{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			seeds := models.SeedContacts()
			if err := tx.Create(&seeds).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// first 查询单条记录，不存在时返回 (nil, nil)
func first[T any](db *gorm.DB, conds ...any) (*T, error) {
	var v T
	err := db.Order("id").First(&v, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal(err, "storage query")
	}
	return &v, nil
}

func (s *GormStorage) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *GormStorage) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx), id)
}

func (s *GormStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx), "username = ?", username)
}

func (s *GormStorage) CreateUser(ctx context.Context, in models.UserInsert) (*models.User, error) {
	u := in.NewUser(s.now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := first[models.User](tx, "username = ?", in.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateUsername
		}
		return tx.Create(&u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, err
	}
	s.userCreated(u.Clone())
	return &u, nil
}

func (s *GormStorage) UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := first[models.User](s.forUpdate(tx), id)
		if err != nil || u == nil {
			return err
		}
		if patch.Username != nil && *patch.Username != u.Username {
			other, err := first[models.User](tx, "username = ?", *patch.Username)
			if err != nil {
				return err
			}
			if other != nil {
				return ErrDuplicateUsername
			}
		}
		patch.Apply(u)
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		out = u
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateUsername
	}
	return out, err
}

func (s *GormStorage) GetEmergencyProtocols(ctx context.Context) ([]models.EmergencyProtocol, error) {
	list := []models.EmergencyProtocol{}
	if err := s.db.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStorage) GetEmergencyProtocol(ctx context.Context, protocolType string) (*models.EmergencyProtocol, error) {
	return first[models.EmergencyProtocol](s.db.WithContext(ctx), "type = ?", protocolType)
}

func (s *GormStorage) CreateEmergencyProtocol(ctx context.Context, in models.ProtocolInsert) (*models.EmergencyProtocol, error) {
	p := in.NewProtocol(s.now())
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStorage) GetEmergencyContacts(ctx context.Context, country string) ([]models.EmergencyContact, error) {
	return s.contactsWhere(ctx, "country = ? AND is_active = ?", country, true)
}

func (s *GormStorage) GetEmergencyContactsByType(ctx context.Context, contactType, country string) ([]models.EmergencyContact, error) {
	return s.contactsWhere(ctx, "type = ? AND country = ? AND is_active = ?", contactType, country, true)
}

func (s *GormStorage) contactsWhere(ctx context.Context, query string, args ...any) ([]models.EmergencyContact, error) {
	list := []models.EmergencyContact{}
	if err := s.db.WithContext(ctx).Where(query, args...).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStorage) CreateEmergencyContact(ctx context.Context, in models.ContactInsert) (*models.EmergencyContact, error) {
	c := in.NewContact()
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStorage) CreateUserSession(ctx context.Context, in models.SessionInsert) (*models.UserSession, error) {
	sess := in.NewSession(s.now())
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *GormStorage) GetUserSession(ctx context.Context, id uint) (*models.UserSession, error) {
	sess, err := first[models.UserSession](s.db.WithContext(ctx), id)
	if sess != nil && sess.Actions == nil {
		sess.Actions = []models.Action{}
	}
	return sess, err
}

func (s *GormStorage) GetUserSessionsByUser(ctx context.Context, userID uint) ([]models.UserSession, error) {
	list := []models.UserSession{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Actions == nil {
			list[i].Actions = []models.Action{}
		}
	}
	return list, nil
}

func (s *GormStorage) UpdateUserSession(ctx context.Context, id uint, patch models.SessionPatch) (*models.UserSession, error) {
	return s.mutateSession(ctx, id, patch.Apply)
}

func (s *GormStorage) AppendUserSessionAction(ctx context.Context, id uint, action models.Action) (*models.UserSession, error) {
	return s.mutateSession(ctx, id, func(sess *models.UserSession) {
		sess.Actions = append(sess.Actions, action)
	})
}

func (s *GormStorage) EndUserSession(ctx context.Context, id uint) (*models.UserSession, error) {
	return s.mutateSession(ctx, id, endSession(s.now))
}

func (s *GormStorage) mutateSession(ctx context.Context, id uint, mutate func(*models.UserSession)) (*models.UserSession, error) {
	var before, after models.UserSession
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess, err := first[models.UserSession](s.forUpdate(tx), id)
		if err != nil || sess == nil {
			return err
		}
		found = true
		before = sess.Clone()
		mutate(sess)
		if err := tx.Save(sess).Error; err != nil {
			return err
		}
		after = sess.Clone()
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "update session").WithContext("session_id", strconv.FormatUint(uint64(id), 10))
	}
	if !found {
		return nil, nil
	}
	s.sessionChanged(before, after.Clone())
	return &after, nil
}

func (s *GormStorage) CountActiveSessions(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UserSession{}).Where("end_time IS NULL").Count(&n).Error
	return n, err
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
