package offer

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		offer Offer
		total float64
		want  float64
	}{
		{"percent", Offer{DiscountType: DiscountPercent, Value: 20}, 100, 80},
		{"flat", Offer{DiscountType: DiscountFlat, Value: 30}, 100, 70},
		{"flat exceeds total", Offer{DiscountType: DiscountFlat, Value: 150}, 100, 0},
		{"full percent", Offer{DiscountType: DiscountPercent, Value: 100}, 100, 0},
		{"unknown type unchanged", Offer{DiscountType: "mystery", Value: 50}, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.offer.Apply(tt.total); got != tt.want {
				t.Errorf("Apply(%v) = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}

func TestAppliesTo(t *testing.T) {
	popcorn := primitive.NewObjectID()
	soda := primitive.NewObjectID()

	open := Offer{}
	if !open.AppliesTo(popcorn) {
		t.Error("unscoped offer should cover every product")
	}

	scoped := Offer{ProductIDs: []primitive.ObjectID{popcorn}}
	if !scoped.AppliesTo(popcorn) {
		t.Error("listed product not covered")
	}
	if scoped.AppliesTo(soda) {
		t.Error("unlisted product covered")
	}
}

func TestLive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	o := Offer{
		IsActive: true,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}
	if !o.Live(now) {
		t.Error("offer inside window reported dead")
	}
	if o.Live(now.Add(2 * time.Hour)) {
		t.Error("offer past window reported live")
	}
	if o.Live(now.Add(-2 * time.Hour)) {
		t.Error("offer before window reported live")
	}

	o.IsActive = false
	if o.Live(now) {
		t.Error("deactivated offer reported live")
	}
}
