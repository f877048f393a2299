package billing

import (
	"context"
	"errors"
	"testing"
)

func TestInterest_Compounds(t *testing.T) {
	b := Bill{Amount: 100, Status: StatusOverdue, DueDate: day(2025, 1, 10)}

	if got := Interest(b, day(2025, 2, 10)); got != 1.5 {
		t.Fatalf("1 month: got %v, want 1.5", got)
	}
	if got := Interest(b, day(2025, 3, 10)); got != 3.02 {
		t.Fatalf("2 months: got %v, want 3.02", got)
	}
	if got := Interest(b, day(2025, 3, 9)); got != 1.5 {
		t.Fatalf("incomplete month does not count: got %v", got)
	}
	if got := Total(b, day(2025, 3, 10)); got != 103.02 {
		t.Fatalf("total: got %v, want 103.02", got)
	}
}

func TestInterest_ZeroWhenNotApplicable(t *testing.T) {
	today := day(2025, 6, 1)

	unpaid := Bill{Amount: 100, Status: StatusUnpaid, DueDate: day(2025, 1, 10)}
	if got := Interest(unpaid, today); got != 0 {
		t.Fatalf("unpaid: got %v", got)
	}
	exempt := Bill{Amount: 100, Status: StatusOverdue, InterestExempt: true, DueDate: day(2025, 1, 10)}
	if got := Interest(exempt, today); got != 0 {
		t.Fatalf("exempt: got %v", got)
	}
	if got := TimeRemaining(exempt, today); got != 0 {
		t.Fatalf("past due date must give 0 days, got %d", got)
	}
}

func TestValidatePayment(t *testing.T) {
	today := day(2025, 3, 10)

	ok := PaymentInput{CardNumber: "4111 1111 1111 1111", CVV: "123", ExpirationDate: "03/25"}
	if err := validatePayment(ok, today); err != nil {
		t.Fatalf("expected valid payment, got %v", err)
	}

	bad := []PaymentInput{
		{CardNumber: "4111", CVV: "123", ExpirationDate: "12/30"},
		{CardNumber: "4111111111111111", CVV: "12", ExpirationDate: "12/30"},
		{CardNumber: "4111111111111111", CVV: "123", ExpirationDate: "13/30"},
		{CardNumber: "4111111111111111", CVV: "123", ExpirationDate: "02/25"},
	}
	for _, in := range bad {
		if err := validatePayment(in, today); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestService_Pay(t *testing.T) {
	pub := &recordingPublisher{}
	svc, repo := newTestService(WithPublisher(pub))
	ctx := context.Background()
	_ = repo.Create(ctx, Bill{ID: "b1", CustomerID: "c1", Amount: 100, Status: StatusOverdue, DueDate: day(2025, 1, 10)})
	_ = repo.Create(ctx, Bill{ID: "b2", CustomerID: "c1", Amount: 50, Status: StatusUnpaid, DueDate: day(2025, 4, 10)})

	balance, err := svc.CurrentBalance(ctx, "c1")
	if err != nil {
		t.Fatalf("CurrentBalance error: %v", err)
	}
	// b1: dos meses vencida => 3.02 de interés.
	if balance != 153.02 {
		t.Fatalf("expected balance 153.02, got %v", balance)
	}

	card := PaymentInput{CardNumber: "4111111111111111", CVV: "123", ExpirationDate: "12/30"}

	if _, err := svc.Pay(ctx, "other", "b1", card); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other customer, got %v", err)
	}

	b, err := svc.Pay(ctx, "c1", "b1", card)
	if err != nil {
		t.Fatalf("Pay error: %v", err)
	}
	if b.Status != StatusPaid {
		t.Fatalf("expected PAID, got %s", b.Status)
	}
	if len(pub.envs) != 1 || pub.envs[0].Type != "bill.paid" {
		t.Fatalf("expected bill.paid event, got %+v", pub.envs)
	}

	if _, err := svc.Pay(ctx, "c1", "b1", card); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for paid bill, got %v", err)
	}

	balance, _ = svc.CurrentBalance(ctx, "c1")
	if balance != 50 {
		t.Fatalf("expected balance 50 after paying, got %v", balance)
	}
}

func TestService_FilterByAmountAndDates(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	_ = repo.Create(ctx, Bill{ID: "1", CustomerID: "c1", Amount: 10, Date: day(2025, 1, 1), DueDate: day(2025, 2, 15)})
	_ = repo.Create(ctx, Bill{ID: "2", CustomerID: "c1", Amount: 90, Date: day(2025, 2, 1), DueDate: day(2025, 3, 18)})
	_ = repo.Create(ctx, Bill{ID: "3", CustomerID: "c2", Amount: 50, Date: day(2025, 2, 1), DueDate: day(2025, 3, 18)})

	byAmount, err := svc.FilterByAmount(ctx, "c1", 10, 50)
	if err != nil || len(byAmount) != 1 || byAmount[0].ID != "1" {
		t.Fatalf("unexpected amount filter result: %+v (%v)", byAmount, err)
	}
	byDate, err := svc.FilterByDate(ctx, "c1", day(2025, 2, 1), day(2025, 2, 1))
	if err != nil || len(byDate) != 1 || byDate[0].ID != "2" {
		t.Fatalf("unexpected date filter result: %+v (%v)", byDate, err)
	}
	if _, err := svc.FilterByDueDate(ctx, "c1", day(2025, 3, 1), day(2025, 2, 1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for reversed range, got %v", err)
	}
}
