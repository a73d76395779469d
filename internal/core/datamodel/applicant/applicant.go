package applicant

import "time"

type Applicant struct {
	ID         string `gorm:"primaryKey"`
	AutoNumber int64  `gorm:"column:auto_number;uniqueIndex;not null"`

	Region string `gorm:"column:region;not null"`
	Batch  string `gorm:"column:batch;not null"`
	Zone   string `gorm:"column:zone;not null"`
	Woreda string `gorm:"column:woreda;not null"`
	Kebele string `gorm:"column:kebele;not null"`

	FirstName        string    `gorm:"column:first_name;not null"`
	FatherName       string    `gorm:"column:father_name;not null"`
	GrandfatherName  string    `gorm:"column:grandfather_name;not null"`
	DateOfBirth      time.Time `gorm:"column:date_of_birth;type:date"`
	DateCollected    time.Time `gorm:"column:date_collected;type:date"`
	Sex              string    `gorm:"column:sex;not null"`
	ApplicantAddress string    `gorm:"column:applicant_address;not null"`

	HasBusinessLicense    bool       `gorm:"column:has_business_license;not null"`
	TradeLicenseNumber    *string    `gorm:"column:trade_license_number"`
	Trade                 *string    `gorm:"column:trade"`
	RegistrationNumber    *string    `gorm:"column:registration_number"`
	TINNumber             *string    `gorm:"column:tin_number"`
	DateOfBusinessLicense *time.Time `gorm:"column:date_of_business_license;type:date"`

	EnterpriseCategory string `gorm:"column:enterprise_category;not null"`
	OwnershipForm      string `gorm:"column:ownership_form;not null"`
	BusinessSector     string `gorm:"column:business_sector;not null"`
	NumberOfOwners     int    `gorm:"column:number_of_owners;not null"`
	OwnersNames        string `gorm:"column:owners_names;not null"`
	RegisteredAddress  string `gorm:"column:registered_address;not null"`
	BusinessPremise    string `gorm:"column:business_premise;not null"`

	MaleEmployees   int `gorm:"column:male_employees;not null"`
	FemaleEmployees int `gorm:"column:female_employees;not null"`
	TotalEmployees  int `gorm:"column:total_employees;not null"`

	BusinessCapitalETB   float64 `gorm:"column:business_capital_etb;not null"`
	MonthlyRevenueETB    float64 `gorm:"column:monthly_revenue_etb;not null"`
	AnnualRevenueLast3   float64 `gorm:"column:annual_revenue_last3;not null"`
	NetProfitLast3       float64 `gorm:"column:net_profit_last3;not null"`
	FinancingRequiredETB float64 `gorm:"column:financing_required_etb;not null"`
	SourceOfRepayment    string  `gorm:"column:source_of_repayment;not null"`
	PurposeOfFunds       string  `gorm:"column:purpose_of_funds;not null"`

	GuarantorFirstName       string  `gorm:"column:guarantor_first_name;not null"`
	GuarantorFatherName      string  `gorm:"column:guarantor_father_name;not null"`
	GuarantorGrandfatherName string  `gorm:"column:guarantor_grandfather_name;not null"`
	GuarantorPhone           string  `gorm:"column:guarantor_phone;not null"`
	GuarantorMonthlyIncome   float64 `gorm:"column:guarantor_monthly_income;not null"`

	CreditHistory    string `gorm:"column:credit_history;not null"`
	CBEAccountNumber string `gorm:"column:cbe_account_number;not null"`
	CBEBranch        string `gorm:"column:cbe_branch;not null"`
	CBECity          string `gorm:"column:cbe_city;not null"`
	ModeOfFinance    string `gorm:"column:mode_of_finance;not null"`

	CollectedBy *string   `gorm:"column:collected_by;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
