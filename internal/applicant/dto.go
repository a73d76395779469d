package applicant

import (
	"fmt"
	"time"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/core/common/validation"
)

// DateLayout is the wire format for the form's date fields.
const DateLayout = "2006-01-02"

// validDate checks a string or *string field parses as a calendar date.
// Empty values pass; Required owns presence.
func validDate(fieldName string, disallowFuture bool) func(interface{}) *apperrors.AppError {
	return func(value interface{}) *apperrors.AppError {
		var raw string
		switch v := value.(type) {
		case string:
			raw = v
		case *string:
			if v == nil {
				return nil
			}
			raw = *v
		default:
			return nil
		}
		if raw == "" {
			return nil
		}

		parsed, err := time.Parse(DateLayout, raw)
		if err != nil {
			message := fmt.Sprintf("%s must be a %s date, got %q", fieldName, DateLayout, raw)
			return apperrors.NewValidationFieldError(fieldName, message, apperrors.ErrCodeInvalidDate)
		}
		if disallowFuture && parsed.After(time.Now()) {
			message := fmt.Sprintf("%s cannot be in the future", fieldName)
			return apperrors.NewValidationFieldError(fieldName, message, apperrors.ErrCodeInvalidDate)
		}
		return nil
	}
}

func mustParseDate(raw string) time.Time {
	parsed, _ := time.Parse(DateLayout, raw)
	return parsed
}

// CreateApplicantDTO is the intake form payload. There is no total_employees
// field: the total is always derived, never submitted.
type CreateApplicantDTO struct {
	Region string `json:"region"`
	Batch  string `json:"batch"`
	Zone   string `json:"zone"`
	Woreda string `json:"woreda"`
	Kebele string `json:"kebele"`

	FirstName        string `json:"first_name"`
	FatherName       string `json:"father_name"`
	GrandfatherName  string `json:"grandfather_name"`
	DateOfBirth      string `json:"date_of_birth"`
	DateCollected    string `json:"date_collected"`
	Sex              string `json:"sex"`
	ApplicantAddress string `json:"applicant_address"`

	HasBusinessLicense    bool    `json:"has_business_license"`
	TradeLicenseNumber    *string `json:"trade_license_number,omitempty"`
	Trade                 *string `json:"trade,omitempty"`
	RegistrationNumber    *string `json:"registration_number,omitempty"`
	TINNumber             *string `json:"tin_number,omitempty"`
	DateOfBusinessLicense *string `json:"date_of_business_license,omitempty"`

	EnterpriseCategory string `json:"enterprise_category"`
	OwnershipForm      string `json:"ownership_form"`
	BusinessSector     string `json:"business_sector"`
	NumberOfOwners     int    `json:"number_of_owners"`
	OwnersNames        string `json:"owners_names"`
	RegisteredAddress  string `json:"registered_address"`
	BusinessPremise    string `json:"business_premise"`

	MaleEmployees   int `json:"male_employees"`
	FemaleEmployees int `json:"female_employees"`

	BusinessCapitalETB   float64 `json:"business_capital_etb"`
	MonthlyRevenueETB    float64 `json:"monthly_revenue_etb"`
	AnnualRevenueLast3   float64 `json:"annual_revenue_last3"`
	NetProfitLast3       float64 `json:"net_profit_last3"`
	FinancingRequiredETB float64 `json:"financing_required_etb"`
	SourceOfRepayment    string  `json:"source_of_repayment"`
	PurposeOfFunds       string  `json:"purpose_of_funds"`

	GuarantorFirstName       string  `json:"guarantor_first_name"`
	GuarantorFatherName      string  `json:"guarantor_father_name"`
	GuarantorGrandfatherName string  `json:"guarantor_grandfather_name"`
	GuarantorPhone           string  `json:"guarantor_phone"`
	GuarantorMonthlyIncome   float64 `json:"guarantor_monthly_income"`

	CreditHistory    string `json:"credit_history"`
	CBEAccountNumber string `json:"cbe_account_number"`
	CBEBranch        string `json:"cbe_branch"`
	CBECity          string `json:"cbe_city"`
	ModeOfFinance    string `json:"mode_of_finance"`
}

// Validate applies the form's field-level constraints: required fields,
// closed sets, date shapes and non-negative amounts. Net profit is the one
// amount allowed below zero, it records losses.
func (dto CreateApplicantDTO) Validate() *apperrors.AppError {
	v := validation.NewValidator()

	v.Field("region", dto.Region).Required()
	v.Field("batch", dto.Batch).Required()
	v.Field("zone", dto.Zone).Required()
	v.Field("woreda", dto.Woreda).Required()
	v.Field("kebele", dto.Kebele).Required()

	v.Field("first_name", dto.FirstName).Required()
	v.Field("father_name", dto.FatherName).Required()
	v.Field("grandfather_name", dto.GrandfatherName).Required()
	v.Field("date_of_birth", dto.DateOfBirth).Required().Custom(validDate("date_of_birth", true))
	v.Field("date_collected", dto.DateCollected).Required().Custom(validDate("date_collected", false))
	v.Field("sex", dto.Sex).Required().OneOf(Sexes...)
	v.Field("applicant_address", dto.ApplicantAddress).Required()

	v.Field("date_of_business_license", dto.DateOfBusinessLicense).Custom(validDate("date_of_business_license", false))

	v.Field("enterprise_category", dto.EnterpriseCategory).Required().OneOf(EnterpriseCategories...)
	v.Field("ownership_form", dto.OwnershipForm).Required().OneOf(OwnershipForms...)
	v.Field("business_sector", dto.BusinessSector).Required().OneOf(BusinessSectors...)
	v.Field("number_of_owners", dto.NumberOfOwners).MinInt(1, apperrors.ErrCodeValidationFailed)
	v.Field("owners_names", dto.OwnersNames).Required()
	v.Field("registered_address", dto.RegisteredAddress).Required()
	v.Field("business_premise", dto.BusinessPremise).Required().OneOf(BusinessPremises...)

	v.Field("male_employees", dto.MaleEmployees).NonNegativeInt()
	v.Field("female_employees", dto.FemaleEmployees).NonNegativeInt()

	v.Field("business_capital_etb", dto.BusinessCapitalETB).NonNegativeFloat()
	v.Field("monthly_revenue_etb", dto.MonthlyRevenueETB).NonNegativeFloat()
	v.Field("annual_revenue_last3", dto.AnnualRevenueLast3).NonNegativeFloat()
	v.Field("financing_required_etb", dto.FinancingRequiredETB).NonNegativeFloat()
	v.Field("source_of_repayment", dto.SourceOfRepayment).Required()
	v.Field("purpose_of_funds", dto.PurposeOfFunds).Required()

	v.Field("guarantor_first_name", dto.GuarantorFirstName).Required()
	v.Field("guarantor_father_name", dto.GuarantorFatherName).Required()
	v.Field("guarantor_grandfather_name", dto.GuarantorGrandfatherName).Required()
	v.Field("guarantor_phone", dto.GuarantorPhone).Required()
	v.Field("guarantor_monthly_income", dto.GuarantorMonthlyIncome).NonNegativeFloat()

	v.Field("credit_history", dto.CreditHistory).Required()
	v.Field("cbe_account_number", dto.CBEAccountNumber).Required()
	v.Field("cbe_branch", dto.CBEBranch).Required()
	v.Field("cbe_city", dto.CBECity).Required()
	v.Field("mode_of_finance", dto.ModeOfFinance).Required().OneOf(ModesOfFinance...)

	return v.Validate()
}

// toDomain builds the domain record from a validated payload. Identity,
// numbering and timestamps are left for the service to assign.
func (dto CreateApplicantDTO) toDomain() *Applicant {
	a := &Applicant{
		Region: dto.Region,
		Batch:  dto.Batch,
		Zone:   dto.Zone,
		Woreda: dto.Woreda,
		Kebele: dto.Kebele,

		FirstName:        dto.FirstName,
		FatherName:       dto.FatherName,
		GrandfatherName:  dto.GrandfatherName,
		DateOfBirth:      mustParseDate(dto.DateOfBirth),
		DateCollected:    mustParseDate(dto.DateCollected),
		Sex:              dto.Sex,
		ApplicantAddress: dto.ApplicantAddress,

		HasBusinessLicense: dto.HasBusinessLicense,
		TradeLicenseNumber: dto.TradeLicenseNumber,
		Trade:              dto.Trade,
		RegistrationNumber: dto.RegistrationNumber,
		TINNumber:          dto.TINNumber,

		EnterpriseCategory: dto.EnterpriseCategory,
		OwnershipForm:      dto.OwnershipForm,
		BusinessSector:     dto.BusinessSector,
		NumberOfOwners:     dto.NumberOfOwners,
		OwnersNames:        dto.OwnersNames,
		RegisteredAddress:  dto.RegisteredAddress,
		BusinessPremise:    dto.BusinessPremise,

		MaleEmployees:   dto.MaleEmployees,
		FemaleEmployees: dto.FemaleEmployees,

		BusinessCapitalETB:   dto.BusinessCapitalETB,
		MonthlyRevenueETB:    dto.MonthlyRevenueETB,
		AnnualRevenueLast3:   dto.AnnualRevenueLast3,
		NetProfitLast3:       dto.NetProfitLast3,
		FinancingRequiredETB: dto.FinancingRequiredETB,
		SourceOfRepayment:    dto.SourceOfRepayment,
		PurposeOfFunds:       dto.PurposeOfFunds,

		GuarantorFirstName:       dto.GuarantorFirstName,
		GuarantorFatherName:      dto.GuarantorFatherName,
		GuarantorGrandfatherName: dto.GuarantorGrandfatherName,
		GuarantorPhone:           dto.GuarantorPhone,
		GuarantorMonthlyIncome:   dto.GuarantorMonthlyIncome,

		CreditHistory:    dto.CreditHistory,
		CBEAccountNumber: dto.CBEAccountNumber,
		CBEBranch:        dto.CBEBranch,
		CBECity:          dto.CBECity,
		ModeOfFinance:    dto.ModeOfFinance,
	}

	if dto.DateOfBusinessLicense != nil && *dto.DateOfBusinessLicense != "" {
		licensed := mustParseDate(*dto.DateOfBusinessLicense)
		a.DateOfBusinessLicense = &licensed
	}

	a.RecomputeTotalEmployees()
	return a
}

// UpdateApplicantDTO is the elevated-path patch. Identity, location and
// licence fields are immutable after intake; what remains editable is the
// post-intake review surface: classification, employment, financials,
// guarantor contact and banking. Absent fields are left untouched.
type UpdateApplicantDTO struct {
	EnterpriseCategory *string `json:"enterprise_category,omitempty"`
	OwnershipForm      *string `json:"ownership_form,omitempty"`
	BusinessSector     *string `json:"business_sector,omitempty"`
	BusinessPremise    *string `json:"business_premise,omitempty"`
	ModeOfFinance      *string `json:"mode_of_finance,omitempty"`

	MaleEmployees   *int `json:"male_employees,omitempty"`
	FemaleEmployees *int `json:"female_employees,omitempty"`

	BusinessCapitalETB   *float64 `json:"business_capital_etb,omitempty"`
	MonthlyRevenueETB    *float64 `json:"monthly_revenue_etb,omitempty"`
	AnnualRevenueLast3   *float64 `json:"annual_revenue_last3,omitempty"`
	NetProfitLast3       *float64 `json:"net_profit_last3,omitempty"`
	FinancingRequiredETB *float64 `json:"financing_required_etb,omitempty"`
	SourceOfRepayment    *string  `json:"source_of_repayment,omitempty"`
	PurposeOfFunds       *string  `json:"purpose_of_funds,omitempty"`

	GuarantorPhone         *string  `json:"guarantor_phone,omitempty"`
	GuarantorMonthlyIncome *float64 `json:"guarantor_monthly_income,omitempty"`

	CreditHistory    *string `json:"credit_history,omitempty"`
	CBEAccountNumber *string `json:"cbe_account_number,omitempty"`
	CBEBranch        *string `json:"cbe_branch,omitempty"`
	CBECity          *string `json:"cbe_city,omitempty"`
}

// Validate re-applies the field constraints to every present field.
func (dto UpdateApplicantDTO) Validate() *apperrors.AppError {
	v := validation.NewValidator()

	if dto.EnterpriseCategory != nil {
		v.Field("enterprise_category", *dto.EnterpriseCategory).Required().OneOf(EnterpriseCategories...)
	}
	if dto.OwnershipForm != nil {
		v.Field("ownership_form", *dto.OwnershipForm).Required().OneOf(OwnershipForms...)
	}
	if dto.BusinessSector != nil {
		v.Field("business_sector", *dto.BusinessSector).Required().OneOf(BusinessSectors...)
	}
	if dto.BusinessPremise != nil {
		v.Field("business_premise", *dto.BusinessPremise).Required().OneOf(BusinessPremises...)
	}
	if dto.ModeOfFinance != nil {
		v.Field("mode_of_finance", *dto.ModeOfFinance).Required().OneOf(ModesOfFinance...)
	}

	if dto.MaleEmployees != nil {
		v.Field("male_employees", *dto.MaleEmployees).NonNegativeInt()
	}
	if dto.FemaleEmployees != nil {
		v.Field("female_employees", *dto.FemaleEmployees).NonNegativeInt()
	}

	if dto.BusinessCapitalETB != nil {
		v.Field("business_capital_etb", *dto.BusinessCapitalETB).NonNegativeFloat()
	}
	if dto.MonthlyRevenueETB != nil {
		v.Field("monthly_revenue_etb", *dto.MonthlyRevenueETB).NonNegativeFloat()
	}
	if dto.AnnualRevenueLast3 != nil {
		v.Field("annual_revenue_last3", *dto.AnnualRevenueLast3).NonNegativeFloat()
	}
	if dto.FinancingRequiredETB != nil {
		v.Field("financing_required_etb", *dto.FinancingRequiredETB).NonNegativeFloat()
	}
	if dto.SourceOfRepayment != nil {
		v.Field("source_of_repayment", *dto.SourceOfRepayment).Required()
	}
	if dto.PurposeOfFunds != nil {
		v.Field("purpose_of_funds", *dto.PurposeOfFunds).Required()
	}

	if dto.GuarantorPhone != nil {
		v.Field("guarantor_phone", *dto.GuarantorPhone).Required()
	}
	if dto.GuarantorMonthlyIncome != nil {
		v.Field("guarantor_monthly_income", *dto.GuarantorMonthlyIncome).NonNegativeFloat()
	}

	if dto.CreditHistory != nil {
		v.Field("credit_history", *dto.CreditHistory).Required()
	}
	if dto.CBEAccountNumber != nil {
		v.Field("cbe_account_number", *dto.CBEAccountNumber).Required()
	}
	if dto.CBEBranch != nil {
		v.Field("cbe_branch", *dto.CBEBranch).Required()
	}
	if dto.CBECity != nil {
		v.Field("cbe_city", *dto.CBECity).Required()
	}

	return v.Validate()
}

// Apply writes the present fields onto the record and reports which columns
// changed. The caller recomputes the employee total afterwards.
func (dto UpdateApplicantDTO) Apply(a *Applicant) []string {
	var changed []string

	if dto.EnterpriseCategory != nil {
		a.EnterpriseCategory = *dto.EnterpriseCategory
		changed = append(changed, "enterprise_category")
	}
	if dto.OwnershipForm != nil {
		a.OwnershipForm = *dto.OwnershipForm
		changed = append(changed, "ownership_form")
	}
	if dto.BusinessSector != nil {
		a.BusinessSector = *dto.BusinessSector
		changed = append(changed, "business_sector")
	}
	if dto.BusinessPremise != nil {
		a.BusinessPremise = *dto.BusinessPremise
		changed = append(changed, "business_premise")
	}
	if dto.ModeOfFinance != nil {
		a.ModeOfFinance = *dto.ModeOfFinance
		changed = append(changed, "mode_of_finance")
	}

	if dto.MaleEmployees != nil {
		a.MaleEmployees = *dto.MaleEmployees
		changed = append(changed, "male_employees")
	}
	if dto.FemaleEmployees != nil {
		a.FemaleEmployees = *dto.FemaleEmployees
		changed = append(changed, "female_employees")
	}

	if dto.BusinessCapitalETB != nil {
		a.BusinessCapitalETB = *dto.BusinessCapitalETB
		changed = append(changed, "business_capital_etb")
	}
	if dto.MonthlyRevenueETB != nil {
		a.MonthlyRevenueETB = *dto.MonthlyRevenueETB
		changed = append(changed, "monthly_revenue_etb")
	}
	if dto.AnnualRevenueLast3 != nil {
		a.AnnualRevenueLast3 = *dto.AnnualRevenueLast3
		changed = append(changed, "annual_revenue_last3")
	}
	if dto.NetProfitLast3 != nil {
		a.NetProfitLast3 = *dto.NetProfitLast3
		changed = append(changed, "net_profit_last3")
	}
	if dto.FinancingRequiredETB != nil {
		a.FinancingRequiredETB = *dto.FinancingRequiredETB
		changed = append(changed, "financing_required_etb")
	}
	if dto.SourceOfRepayment != nil {
		a.SourceOfRepayment = *dto.SourceOfRepayment
		changed = append(changed, "source_of_repayment")
	}
	if dto.PurposeOfFunds != nil {
		a.PurposeOfFunds = *dto.PurposeOfFunds
		changed = append(changed, "purpose_of_funds")
	}

	if dto.GuarantorPhone != nil {
		a.GuarantorPhone = *dto.GuarantorPhone
		changed = append(changed, "guarantor_phone")
	}
	if dto.GuarantorMonthlyIncome != nil {
		a.GuarantorMonthlyIncome = *dto.GuarantorMonthlyIncome
		changed = append(changed, "guarantor_monthly_income")
	}

	if dto.CreditHistory != nil {
		a.CreditHistory = *dto.CreditHistory
		changed = append(changed, "credit_history")
	}
	if dto.CBEAccountNumber != nil {
		a.CBEAccountNumber = *dto.CBEAccountNumber
		changed = append(changed, "cbe_account_number")
	}
	if dto.CBEBranch != nil {
		a.CBEBranch = *dto.CBEBranch
		changed = append(changed, "cbe_branch")
	}
	if dto.CBECity != nil {
		a.CBECity = *dto.CBECity
		changed = append(changed, "cbe_city")
	}

	return changed
}

// Filter narrows a listing. Zero values mean "any".
type Filter struct {
	Region             string
	Zone               string
	Woreda             string
	Batch              string
	Sex                string
	EnterpriseCategory string
	BusinessSector     string
	ModeOfFinance      string
	CollectedBy        string

	Limit  int
	Offset int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps pagination to sane bounds.
func (f *Filter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ApplicantsResponse is the paged listing shape.
type ApplicantsResponse struct {
	Applicants []*Applicant `json:"applicants"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}
