package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testTransaction(account string, day int, amount, balance float64) *Transaction {
	return NewTransaction(account,
		time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(amount), "ref", decimal.NewFromFloat(balance))
}

func TestTransactionValidate(t *testing.T) {
	valid := testTransaction("S1", 1, 10, 100)
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid transaction, got %v", err)
	}

	noAccount := testTransaction("", 1, 10, 100)
	if err := noAccount.Validate(); err == nil {
		t.Error("Expected empty account to be invalid")
	}

	noDate := NewTransaction("S1", time.Time{}, decimal.NewFromInt(10), "ref", decimal.NewFromInt(100))
	if err := noDate.Validate(); err == nil {
		t.Error("Expected zero date to be invalid")
	}
}

func TestTransactionClone(t *testing.T) {
	original := testTransaction("S1", 1, 10, 100)
	original.Category = "groceries"

	clone := original.Clone()
	clone.Category = "fuel"
	clone.Details = "changed"

	if original.Category != "groceries" {
		t.Error("Expected mutating the clone to leave the original untouched")
	}
	if original.Details != "" {
		t.Error("Expected original details to remain empty")
	}
}

func TestOpeningBalance(t *testing.T) {
	tx := testTransaction("S1", 1, 10.01, 100.0)

	want := decimal.NewFromFloat(89.99)
	if !tx.OpeningBalance().Equal(want) {
		t.Errorf("OpeningBalance = %s, want %s", tx.OpeningBalance(), want)
	}

	zero := testTransaction("S1", 1, 0, 100)
	if !zero.OpeningBalance().Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected zero-amount opening balance to equal its closing balance")
	}
}

func TestSameDay(t *testing.T) {
	a := testTransaction("S1", 1, 10, 100)
	b := testTransaction("S1", 1, 20, 120)
	c := testTransaction("S1", 2, 20, 120)

	if !a.SameDay(b) {
		t.Error("Expected transactions on the same date to be same-day")
	}
	if a.SameDay(c) {
		t.Error("Expected transactions on different dates not to be same-day")
	}
}

func TestAccounts(t *testing.T) {
	transactions := []*Transaction{
		testTransaction("S3", 1, 10, 100),
		testTransaction("S1", 1, 10, 100),
		testTransaction("S3", 2, 10, 110),
		testTransaction("S2", 1, 10, 100),
	}

	accounts := Accounts(transactions)
	want := []string{"S1", "S2", "S3"}

	if len(accounts) != len(want) {
		t.Fatalf("Accounts returned %d entries, want %d", len(accounts), len(want))
	}
	for i, account := range want {
		if accounts[i] != account {
			t.Errorf("Accounts[%d] = %s, want %s", i, accounts[i], account)
		}
	}
}

func TestPartition(t *testing.T) {
	transactions := []*Transaction{
		testTransaction("S1", 1, 10, 100),
		testTransaction("S2", 1, 20, 200),
		testTransaction("S1", 2, 30, 130),
	}

	matching, others := Partition(transactions, "S1")

	if len(matching) != 2 || len(others) != 1 {
		t.Fatalf("Partition returned %d/%d, want 2/1", len(matching), len(others))
	}
	if others[0].Account != "S2" {
		t.Errorf("Expected the other partition to hold S2, got %s", others[0].Account)
	}
	if !matching[0].Date.Before(matching[1].Date) {
		t.Error("Expected partition to preserve input order")
	}
}

func TestParseDecimalFromString(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"12.34", "12.34", false},
		{"-12.34", "-12.34", false},
		{"$1,234.56", "1234.56", false},
		{" 10 ", "10", false},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tc := range cases {
		got, err := ParseDecimalFromString(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDecimalFromString(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimalFromString(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseDecimalFromString(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseDateWithFormats(t *testing.T) {
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []string{"2024-06-01", "01/06/2024", "2024/06/01", "01-06-2024"}
	for _, input := range cases {
		got, err := ParseDateWithFormats(input)
		if err != nil {
			t.Errorf("ParseDateWithFormats(%q) unexpected error: %v", input, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDateWithFormats(%q) = %s, want %s", input, got, want)
		}
	}

	if _, err := ParseDateWithFormats("not a date"); err == nil {
		t.Error("Expected unparseable date to fail")
	}
}

func TestCreateTransactionFromCSV(t *testing.T) {
	tx, err := CreateTransactionFromCSV("S1", "2024-06-01", "-42.50", "COFFEE SHOP", "957.50")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if tx.Account != "S1" {
		t.Errorf("Account = %s, want S1", tx.Account)
	}
	if !tx.Amount.Equal(decimal.NewFromFloat(-42.50)) {
		t.Errorf("Amount = %s, want -42.5", tx.Amount)
	}
	if !tx.Balance.Equal(decimal.NewFromFloat(957.50)) {
		t.Errorf("Balance = %s, want 957.5", tx.Balance)
	}

	// Missing balance column is tolerated; some exports omit it.
	tx, err = CreateTransactionFromCSV("S1", "2024-06-01", "10", "ref", "")
	if err != nil {
		t.Fatalf("Unexpected error with empty balance: %v", err)
	}
	if !tx.Balance.IsZero() {
		t.Errorf("Expected empty balance to default to zero, got %s", tx.Balance)
	}

	if _, err := CreateTransactionFromCSV("S1", "bad date", "10", "ref", "100"); err == nil {
		t.Error("Expected invalid date to fail")
	}
	if _, err := CreateTransactionFromCSV("S1", "2024-06-01", "ten", "ref", "100"); err == nil {
		t.Error("Expected invalid amount to fail")
	}
}
