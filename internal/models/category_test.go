package models

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Category
	}{
		{"known expense", "fuel_expense", CategoryFuelExpense},
		{"known income", "sales_income", CategorySalesIncome},
		{"gst category", "cgst_payable", CategoryCGSTPayable},
		{"other itself", "other", CategoryOther},
		{"unknown falls back", "groceries", CategoryOther},
		{"empty falls back", "", CategoryOther},
		{"case sensitive", "Fuel_Expense", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.raw); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range AllCategories {
		if !c.IsValid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("not_a_category").IsValid() {
		t.Error("unknown category should not be valid")
	}
}
