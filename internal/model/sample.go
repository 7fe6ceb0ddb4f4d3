package model

import "github.com/shopspring/decimal"

// SampleResult returns a canned parsing result. It lets the CLI and the UI be
// exercised end to end without a Gemini API key or an input document.
func SampleResult() *Result {
	adb := decimal.NewFromFloat(40000.50)
	bal1 := decimal.NewFromInt(72000)
	bal2 := decimal.NewFromInt(38500)

	return &Result{
		Fields: Statement{
			Fields: Fields{
				BankName:            "State Bank of India",
				AccountHolderName:   "Mr. HEMANT S SHARMA",
				AccountNumberMasked: "********9272",
				StatementMonth:      "2025-09",
				AccountType:         "Savings",
				Currency:            "INR",
			},
			Summary: Summary{
				OpeningBalance:      decimal.NewFromInt(42000),
				ClosingBalance:      decimal.NewFromInt(38500),
				TotalCredits:        decimal.NewFromInt(30000),
				TotalDebits:         decimal.NewFromInt(33500),
				AverageDailyBalance: &adb,
			},
			Transactions: []Transaction{
				{
					Date:        "2025-09-01",
					Description: "SALARY CREDIT HDFC BANK",
					Amount:      decimal.NewFromInt(30000),
					Balance:     &bal1,
					Category:    "CREDIT",
				},
				{
					Date:        "2025-09-10",
					Description: "ATM CASH WITHDRAWAL - SBI MUMBAI",
					Amount:      decimal.NewFromInt(-33500),
					Balance:     &bal2,
					Category:    "ATM",
				},
			},
		},
		Insights: []string{
			"Salary of ₹30,000 credited on 1 Sep.",
			"Single ATM withdrawal of ₹33,500 detected.",
			"Closing balance stands at ₹38,500 with no overdrafts.",
			"Healthy cash flow pattern for this month.",
		},
		Quality: Quality{
			Warnings:   []string{},
			TextSource: "Sample Data",
		},
	}
}
