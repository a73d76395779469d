package postgres

import (
	"errors"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/applicant"
	applicantDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/applicant"
	"gorm.io/gorm"
)

// ApplicantRepository implements applicant.Repository using GORM. Requires a
// session opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey on every dialect.
type ApplicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) applicant.Repository {
	return &ApplicantRepository{db: db}
}

func (r *ApplicantRepository) Create(record *applicantDatamodel.Applicant) error {
	err := r.db.Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateNumber
		}
		return err
	}
	return nil
}

func (r *ApplicantRepository) GetByID(id string) (*applicantDatamodel.Applicant, error) {
	var record applicantDatamodel.Applicant
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicantNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List pages through records in auto number order, the order the intake
// assigned them. Zero-valued filter fields are skipped.
func (r *ApplicantRepository) List(filter applicant.Filter) ([]*applicantDatamodel.Applicant, error) {
	query := r.db.Model(&applicantDatamodel.Applicant{})

	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Zone != "" {
		query = query.Where("zone = ?", filter.Zone)
	}
	if filter.Woreda != "" {
		query = query.Where("woreda = ?", filter.Woreda)
	}
	if filter.Batch != "" {
		query = query.Where("batch = ?", filter.Batch)
	}
	if filter.Sex != "" {
		query = query.Where("sex = ?", filter.Sex)
	}
	if filter.EnterpriseCategory != "" {
		query = query.Where("enterprise_category = ?", filter.EnterpriseCategory)
	}
	if filter.BusinessSector != "" {
		query = query.Where("business_sector = ?", filter.BusinessSector)
	}
	if filter.ModeOfFinance != "" {
		query = query.Where("mode_of_finance = ?", filter.ModeOfFinance)
	}
	if filter.CollectedBy != "" {
		query = query.Where("collected_by = ?", filter.CollectedBy)
	}

	var records []*applicantDatamodel.Applicant
	err := query.Order("auto_number ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ApplicantRepository) Update(record *applicantDatamodel.Applicant) error {
	return r.db.Save(record).Error
}

func (r *ApplicantRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&applicantDatamodel.Applicant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrApplicantNotFound
	}
	return nil
}
