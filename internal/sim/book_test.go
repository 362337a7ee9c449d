package sim

import (
	"errors"
	"testing"
)

func TestBook_MinHoldingSuppressesFlip(t *testing.T) {
	book := NewBook(3)

	executed, err := book.Apply(ActionLong, 100)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !executed {
		t.Fatalf("expected opening trade to execute")
	}

	// 持有天数未达标前，换向请求应被压制为 HOLD。
	for day := 0; day < 2; day++ {
		if err := book.Advance(101); err != nil {
			t.Fatalf("Advance returned error: %v", err)
		}
		executed, err = book.Apply(ActionShort, 101)
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		if executed {
			t.Fatalf("flip executed on holding day %d, want suppressed", book.HoldingDays())
		}
		if book.Position() != Long {
			t.Fatalf("position changed to %v before min holding reached", book.Position())
		}
	}

	if err := book.Advance(102); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if book.HoldingDays() != 3 {
		t.Fatalf("expected holding days 3, got %d", book.HoldingDays())
	}
	executed, err = book.Apply(ActionShort, 102)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !executed || book.Position() != Short {
		t.Fatalf("expected flip to short after min holding, executed=%v position=%v", executed, book.Position())
	}
	if book.HoldingDays() != 0 {
		t.Fatalf("expected holding days reset on flip, got %d", book.HoldingDays())
	}
}

func TestBook_SameDirectionIsNotATrade(t *testing.T) {
	book := NewBook(1)

	if executed, _ := book.Apply(ActionLong, 100); !executed {
		t.Fatalf("expected opening trade to execute")
	}
	if err := book.Advance(101); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}

	executed, err := book.Apply(ActionLong, 101)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if executed {
		t.Fatalf("repeating held direction must not count as a trade")
	}
	if book.EntryPrice() != 100 {
		t.Fatalf("entry price changed to %f, want 100", book.EntryPrice())
	}
}

func TestBook_AdvanceTracksUnrealized(t *testing.T) {
	book := NewBook(1)

	if _, err := book.Apply(ActionLong, 100); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := book.Advance(105); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if book.Unrealized() != 5 {
		t.Errorf("long unrealized = %f, want 5", book.Unrealized())
	}

	book.Reset()
	if _, err := book.Apply(ActionShort, 100); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := book.Advance(95); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if book.Unrealized() != 5 {
		t.Errorf("short unrealized = %f, want 5", book.Unrealized())
	}
}

func TestBook_CloseResetsState(t *testing.T) {
	book := NewBook(1)

	if book.Close() {
		t.Fatalf("closing a flat book must report no trade")
	}

	if _, err := book.Apply(ActionLong, 100); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := book.Advance(110); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}

	if !book.Close() {
		t.Fatalf("expected close of open position to report a trade")
	}
	view := book.View()
	if view.Position != Flat || view.EntryPrice != 0 || view.HoldingDays != 0 || view.Unrealized != 0 {
		t.Fatalf("book not reset after close: %+v", view)
	}
}

func TestBook_ApplyRejectsInvalidPrice(t *testing.T) {
	book := NewBook(1)

	_, err := book.Apply(ActionLong, 0)
	var priceErr *InvalidPriceError
	if !errors.As(err, &priceErr) {
		t.Fatalf("expected InvalidPriceError, got %v", err)
	}

	_, err = book.Apply(ActionLong, -3.5)
	if !errors.As(err, &priceErr) {
		t.Fatalf("expected InvalidPriceError for negative price, got %v", err)
	}
}
