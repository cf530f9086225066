package handler

import (
	"testing"
	"time"

	"finance-ledger/internal/store"
)

func view(date string, amount int64, category string) store.TransactionView {
	d, _ := time.Parse(time.DateOnly, date)
	v := store.TransactionView{Date: d, Amount: amount}
	if category != "" {
		v.Category = &category
	}
	return v
}

func TestResolvePeriod_Default(t *testing.T) {
	now := time.Date(2024, 5, 31, 15, 30, 0, 0, time.UTC)
	p := resolvePeriod(&SummaryQuery{}, now)
	if got := p.To.Format(time.DateOnly); got != "2024-05-31" {
		t.Errorf("to = %s", got)
	}
	if got := p.From.Format(time.DateOnly); got != "2024-05-01" {
		t.Errorf("from = %s", got)
	}
	if p.days() != 31 {
		t.Errorf("days = %d", p.days())
	}

	prev := p.previous()
	if prev.From.Format(time.DateOnly) != "2024-03-31" || prev.To.Format(time.DateOnly) != "2024-04-30" {
		t.Errorf("previous = %v..%v", prev.From, prev.To)
	}
}

func TestResolvePeriod_Explicit(t *testing.T) {
	p := resolvePeriod(&SummaryQuery{From: "2024-01-10", To: "2024-01-01"}, time.Now())
	if p.From.Format(time.DateOnly) != "2024-01-01" || p.To.Format(time.DateOnly) != "2024-01-10" {
		t.Errorf("swapped bounds not fixed: %v..%v", p.From, p.To)
	}
	f := p.filter("acc")
	if f.To.Format(time.DateOnly) != "2024-01-11" || f.AccountID != "acc" {
		t.Errorf("filter = %+v", f)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev int64
		want      float64
	}{
		{0, 0, 0},
		{500, 0, 100},
		{150, 100, 50},
		{50, 100, -50},
		{-200, -100, 100},
	}
	for _, tt := range tests {
		if got := percentChange(tt.cur, tt.prev); got != tt.want {
			t.Errorf("percentChange(%d, %d) = %v, want %v", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func TestCategoryTotals_TopThreeAndOther(t *testing.T) {
	rows := []store.TransactionView{
		view("2024-01-01", -500, "Rent"),
		view("2024-01-02", -300, "Food"),
		view("2024-01-03", -200, "Fuel"),
		view("2024-01-04", -100, "Games"),
		view("2024-01-05", -50, "Books"),
		view("2024-01-06", -100, "Food"),
		view("2024-01-07", 9000, "Salary"),
		view("2024-01-08", -999, ""),
	}
	got := categoryTotals(rows)
	want := []categoryTotal{{"Rent", 500}, {"Food", 400}, {"Fuel", 200}, {"Other", 150}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDayTotals_ZeroFilled(t *testing.T) {
	from, _ := time.Parse(time.DateOnly, "2024-02-01")
	to, _ := time.Parse(time.DateOnly, "2024-02-03")
	rows := []store.TransactionView{
		view("2024-02-01", 1000, ""),
		view("2024-02-01", -250, "Food"),
		view("2024-02-03", -75, ""),
	}
	got := dayTotals(rows, period{From: from, To: to})
	want := []dayTotal{
		{Date: "2024-02-01", Income: 1000, Expenses: 250},
		{Date: "2024-02-02"},
		{Date: "2024-02-03", Expenses: 75},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildSummary(t *testing.T) {
	from, _ := time.Parse(time.DateOnly, "2024-02-01")
	p := period{From: from, To: from}
	current := []store.TransactionView{view("2024-02-01", 1000, ""), view("2024-02-01", -400, "Food")}
	previous := []store.TransactionView{view("2024-01-31", 500, ""), view("2024-01-31", -400, "Food")}

	s := buildSummary(current, previous, p)
	if s.IncomeAmount != 1000 || s.ExpensesAmount != -400 || s.RemainingAmount != 600 {
		t.Errorf("amounts: %+v", s)
	}
	if s.IncomeChange != 100 || s.ExpensesChange != 0 || s.RemainingChange != 500 {
		t.Errorf("changes: %+v", s)
	}
	if len(s.Days) != 1 || len(s.Categories) != 1 {
		t.Errorf("days/categories: %+v", s)
	}
}
