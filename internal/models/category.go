package models

// Category is the closed set of bookkeeping categories a transaction or
// ledger entry can be filed under. The AI extraction prompt embeds this set
// verbatim, and normalization maps anything outside it to CategoryOther.
type Category string

const (
	CategoryTravelExpense       Category = "travel_expense"
	CategoryFuelExpense         Category = "fuel_expense"
	CategoryOfficeExpense       Category = "office_expense"
	CategoryConstructionExpense Category = "construction_expense"
	CategoryMaterialExpense     Category = "material_expense"
	CategorySalaryExpense       Category = "salary_expense"
	CategoryRentExpense         Category = "rent_expense"
	CategoryUtilitiesExpense    Category = "utilities_expense"
	CategoryProfessionalFees    Category = "professional_fees"
	CategoryMarketingExpense    Category = "marketing_expense"
	CategoryMaintenanceExpense  Category = "maintenance_expense"
	CategoryInsuranceExpense    Category = "insurance_expense"
	CategorySalesIncome         Category = "sales_income"
	CategoryServiceIncome       Category = "service_income"
	CategoryOtherIncome         Category = "other_income"
	CategoryCGSTPayable         Category = "cgst_payable"
	CategorySGSTPayable         Category = "sgst_payable"
	CategoryIGSTPayable         Category = "igst_payable"
	CategoryCGSTReceivable      Category = "cgst_receivable"
	CategorySGSTReceivable      Category = "sgst_receivable"
	CategoryIGSTReceivable      Category = "igst_receivable"
	CategoryAccountsPayable     Category = "accounts_payable"
	CategoryAccountsReceivable  Category = "accounts_receivable"
	CategoryCash                Category = "cash"
	CategoryBank                Category = "bank"
	CategoryOther               Category = "other"
)

// AllCategories lists every valid category in prompt order.
var AllCategories = []Category{
	CategoryTravelExpense,
	CategoryFuelExpense,
	CategoryOfficeExpense,
	CategoryConstructionExpense,
	CategoryMaterialExpense,
	CategorySalaryExpense,
	CategoryRentExpense,
	CategoryUtilitiesExpense,
	CategoryProfessionalFees,
	CategoryMarketingExpense,
	CategoryMaintenanceExpense,
	CategoryInsuranceExpense,
	CategorySalesIncome,
	CategoryServiceIncome,
	CategoryOtherIncome,
	CategoryCGSTPayable,
	CategorySGSTPayable,
	CategoryIGSTPayable,
	CategoryCGSTReceivable,
	CategorySGSTReceivable,
	CategoryIGSTReceivable,
	CategoryAccountsPayable,
	CategoryAccountsReceivable,
	CategoryCash,
	CategoryBank,
	CategoryOther,
}

var validCategories = func() map[Category]bool {
	m := make(map[Category]bool, len(AllCategories))
	for _, c := range AllCategories {
		m[c] = true
	}
	return m
}()

// ParseCategory maps a raw string to a Category, falling back to
// CategoryOther for anything outside the closed set.
func ParseCategory(raw string) Category {
	c := Category(raw)
	if validCategories[c] {
		return c
	}
	return CategoryOther
}

// IsValid reports whether c is a member of the closed category set.
func (c Category) IsValid() bool {
	return validCategories[c]
}
