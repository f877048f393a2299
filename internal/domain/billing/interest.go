package billing

import (
	"math"
	"time"

	"petclinic/internal/platform/money"
)

const (
	TaxRate             = 0.15
	MonthlyInterestRate = 0.015
	DefaultTermDays     = 45
)

func taxed(amount float64) float64 {
	return money.Round2(amount * (1 + TaxRate))
}

// monthsBetween cuenta meses calendario completos entre from y to (0 si to <= from).
func monthsBetween(from, to time.Time) int {
	from, to = dateOf(from), dateOf(to)
	if !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Interest: solo facturas OVERDUE, no exentas y con vencimiento.
// interest = round2(amount * 1.015^meses) - amount
func Interest(b Bill, today time.Time) float64 {
	if b.Status != StatusOverdue || b.InterestExempt || b.DueDate.IsZero() {
		return 0
	}
	months := monthsBetween(b.DueDate, today)
	if months == 0 {
		return 0
	}
	compounded := money.Round2(b.Amount * math.Pow(1+MonthlyInterestRate, float64(months)))
	return money.Round2(compounded - b.Amount)
}

// TimeRemaining devuelve días hasta el vencimiento; 0 si ya pasó.
func TimeRemaining(b Bill, today time.Time) int {
	if b.DueDate.IsZero() {
		return 0
	}
	d := int(dateOf(b.DueDate).Sub(dateOf(today)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Total = amount + interest.
func Total(b Bill, today time.Time) float64 {
	return money.Round2(b.Amount + Interest(b, today))
}
