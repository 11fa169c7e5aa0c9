package moeda

import "testing"

func TestAdvantageAvailability(t *testing.T) {
	tests := []struct {
		name       string
		adv        Advantage
		exhausted  bool
		redeemable bool
		remaining  int
	}{
		{"fresh", Advantage{MaxRedemptions: 3, CurrentRedemptions: 0, IsActive: true}, false, true, 3},
		{"last one", Advantage{MaxRedemptions: 3, CurrentRedemptions: 2, IsActive: true}, false, true, 1},
		{"exhausted", Advantage{MaxRedemptions: 3, CurrentRedemptions: 3, IsActive: true}, true, false, 0},
		{"over cap", Advantage{MaxRedemptions: 3, CurrentRedemptions: 4, IsActive: true}, true, false, 0},
		{"inactive", Advantage{MaxRedemptions: 3, CurrentRedemptions: 0, IsActive: false}, false, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.adv.Exhausted(); got != tt.exhausted {
				t.Errorf("Exhausted() = %v, want %v", got, tt.exhausted)
			}
			if got := tt.adv.Redeemable(); got != tt.redeemable {
				t.Errorf("Redeemable() = %v, want %v", got, tt.redeemable)
			}
			if got := tt.adv.Remaining(); got != tt.remaining {
				t.Errorf("Remaining() = %d, want %d", got, tt.remaining)
			}
		})
	}
}

func TestAdvantageInputApply(t *testing.T) {
	title := "Desconto"
	cost := int64(50)
	adv := Advantage{Title: "Old", Description: "keep", CoinCost: 10}

	AdvantageInput{Title: &title, CoinCost: &cost}.Apply(&adv)

	if adv.Title != "Desconto" || adv.CoinCost != 50 {
		t.Errorf("Apply() = %+v", adv)
	}
	if adv.Description != "keep" {
		t.Errorf("Description = %q, want untouched", adv.Description)
	}
	if (AdvantageInput{Title: &title}).Complete() {
		t.Error("Complete() = true for partial input")
	}
}
