package applicant

import (
	"time"

	applicantDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/applicant"
)

// Closed field sets from the intake form. Values are stored verbatim;
// anything outside these lists is rejected at validation time.
const (
	SexMale   = "m"
	SexFemale = "f"
)

var (
	Sexes                = []string{SexMale, SexFemale}
	EnterpriseCategories = []string{"micro", "small", "medium", "startup"}
	OwnershipForms       = []string{"soleproprietorship", "partnership", "plc"}
	BusinessSectors      = []string{"manufacturing", "construction", "agriculture", "mining", "service", "others"}
	BusinessPremises     = []string{"rented", "applicant_owned", "government"}
	ModesOfFinance       = []string{"conventional", "ifb"}
)

// Applicant is one committed intake record. ID is opaque; AutoNumber is the
// human-facing sequential number, unique and monotonic with gaps allowed.
type Applicant struct {
	ID         string `json:"id"`
	AutoNumber int64  `json:"auto_number"`

	Region string `json:"region"`
	Batch  string `json:"batch"`
	Zone   string `json:"zone"`
	Woreda string `json:"woreda"`
	Kebele string `json:"kebele"`

	FirstName        string    `json:"first_name"`
	FatherName       string    `json:"father_name"`
	GrandfatherName  string    `json:"grandfather_name"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	DateCollected    time.Time `json:"date_collected"`
	Sex              string    `json:"sex"`
	ApplicantAddress string    `json:"applicant_address"`

	HasBusinessLicense    bool       `json:"has_business_license"`
	TradeLicenseNumber    *string    `json:"trade_license_number,omitempty"`
	Trade                 *string    `json:"trade,omitempty"`
	RegistrationNumber    *string    `json:"registration_number,omitempty"`
	TINNumber             *string    `json:"tin_number,omitempty"`
	DateOfBusinessLicense *time.Time `json:"date_of_business_license,omitempty"`

	EnterpriseCategory string `json:"enterprise_category"`
	OwnershipForm      string `json:"ownership_form"`
	BusinessSector     string `json:"business_sector"`
	NumberOfOwners     int    `json:"number_of_owners"`
	OwnersNames        string `json:"owners_names"`
	RegisteredAddress  string `json:"registered_address"`
	BusinessPremise    string `json:"business_premise"`

	MaleEmployees   int `json:"male_employees"`
	FemaleEmployees int `json:"female_employees"`
	TotalEmployees  int `json:"total_employees"`

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

	CollectedBy *string   `json:"collected_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecomputeTotalEmployees derives the total from the sex-split counts.
// Every write path calls this; the total is never accepted as input.
func (a *Applicant) RecomputeTotalEmployees() {
	a.TotalEmployees = a.MaleEmployees + a.FemaleEmployees
}

func ToDataModel(a *Applicant) *applicantDatamodel.Applicant {
	return &applicantDatamodel.Applicant{
		ID:         a.ID,
		AutoNumber: a.AutoNumber,

		Region: a.Region,
		Batch:  a.Batch,
		Zone:   a.Zone,
		Woreda: a.Woreda,
		Kebele: a.Kebele,

		FirstName:        a.FirstName,
		FatherName:       a.FatherName,
		GrandfatherName:  a.GrandfatherName,
		DateOfBirth:      a.DateOfBirth,
		DateCollected:    a.DateCollected,
		Sex:              a.Sex,
		ApplicantAddress: a.ApplicantAddress,

		HasBusinessLicense:    a.HasBusinessLicense,
		TradeLicenseNumber:    a.TradeLicenseNumber,
		Trade:                 a.Trade,
		RegistrationNumber:    a.RegistrationNumber,
		TINNumber:             a.TINNumber,
		DateOfBusinessLicense: a.DateOfBusinessLicense,

		EnterpriseCategory: a.EnterpriseCategory,
		OwnershipForm:      a.OwnershipForm,
		BusinessSector:     a.BusinessSector,
		NumberOfOwners:     a.NumberOfOwners,
		OwnersNames:        a.OwnersNames,
		RegisteredAddress:  a.RegisteredAddress,
		BusinessPremise:    a.BusinessPremise,

		MaleEmployees:   a.MaleEmployees,
		FemaleEmployees: a.FemaleEmployees,
		TotalEmployees:  a.TotalEmployees,

		BusinessCapitalETB:   a.BusinessCapitalETB,
		MonthlyRevenueETB:    a.MonthlyRevenueETB,
		AnnualRevenueLast3:   a.AnnualRevenueLast3,
		NetProfitLast3:       a.NetProfitLast3,
		FinancingRequiredETB: a.FinancingRequiredETB,
		SourceOfRepayment:    a.SourceOfRepayment,
		PurposeOfFunds:       a.PurposeOfFunds,

		GuarantorFirstName:       a.GuarantorFirstName,
		GuarantorFatherName:      a.GuarantorFatherName,
		GuarantorGrandfatherName: a.GuarantorGrandfatherName,
		GuarantorPhone:           a.GuarantorPhone,
		GuarantorMonthlyIncome:   a.GuarantorMonthlyIncome,

		CreditHistory:    a.CreditHistory,
		CBEAccountNumber: a.CBEAccountNumber,
		CBEBranch:        a.CBEBranch,
		CBECity:          a.CBECity,
		ModeOfFinance:    a.ModeOfFinance,

		CollectedBy: a.CollectedBy,
		CreatedAt:   a.CreatedAt,
	}
}

func FromDataModel(a *applicantDatamodel.Applicant) *Applicant {
	return &Applicant{
		ID:         a.ID,
		AutoNumber: a.AutoNumber,

		Region: a.Region,
		Batch:  a.Batch,
		Zone:   a.Zone,
		Woreda: a.Woreda,
		Kebele: a.Kebele,

		FirstName:        a.FirstName,
		FatherName:       a.FatherName,
		GrandfatherName:  a.GrandfatherName,
		DateOfBirth:      a.DateOfBirth,
		DateCollected:    a.DateCollected,
		Sex:              a.Sex,
		ApplicantAddress: a.ApplicantAddress,

		HasBusinessLicense:    a.HasBusinessLicense,
		TradeLicenseNumber:    a.TradeLicenseNumber,
		Trade:                 a.Trade,
		RegistrationNumber:    a.RegistrationNumber,
		TINNumber:             a.TINNumber,
		DateOfBusinessLicense: a.DateOfBusinessLicense,

		EnterpriseCategory: a.EnterpriseCategory,
		OwnershipForm:      a.OwnershipForm,
		BusinessSector:     a.BusinessSector,
		NumberOfOwners:     a.NumberOfOwners,
		OwnersNames:        a.OwnersNames,
		RegisteredAddress:  a.RegisteredAddress,
		BusinessPremise:    a.BusinessPremise,

		MaleEmployees:   a.MaleEmployees,
		FemaleEmployees: a.FemaleEmployees,
		TotalEmployees:  a.TotalEmployees,

		BusinessCapitalETB:   a.BusinessCapitalETB,
		MonthlyRevenueETB:    a.MonthlyRevenueETB,
		AnnualRevenueLast3:   a.AnnualRevenueLast3,
		NetProfitLast3:       a.NetProfitLast3,
		FinancingRequiredETB: a.FinancingRequiredETB,
		SourceOfRepayment:    a.SourceOfRepayment,
		PurposeOfFunds:       a.PurposeOfFunds,

		GuarantorFirstName:       a.GuarantorFirstName,
		GuarantorFatherName:      a.GuarantorFatherName,
		GuarantorGrandfatherName: a.GuarantorGrandfatherName,
		GuarantorPhone:           a.GuarantorPhone,
		GuarantorMonthlyIncome:   a.GuarantorMonthlyIncome,

		CreditHistory:    a.CreditHistory,
		CBEAccountNumber: a.CBEAccountNumber,
		CBEBranch:        a.CBEBranch,
		CBECity:          a.CBECity,
		ModeOfFinance:    a.ModeOfFinance,

		CollectedBy: a.CollectedBy,
		CreatedAt:   a.CreatedAt,
	}
}

func FromDataModelSlice(applicants []*applicantDatamodel.Applicant) []*Applicant {
	result := make([]*Applicant, len(applicants))
	for i, a := range applicants {
		result[i] = FromDataModel(a)
	}
	return result
}
