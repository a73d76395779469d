package postgres

import (
	"errors"

	apperrors "github.com/edi-app/edi-intake/internal"
	userDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/user"
	"github.com/edi-app/edi-intake/internal/identity"
	"gorm.io/gorm"
)

// UserRepository implements identity.Repository using GORM. Requires a
// session opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey on every dialect.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) identity.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *userDatamodel.User) error {
	err := r.db.Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
