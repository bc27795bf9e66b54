package rules

import (
	"math"
	"testing"
)

func TestDistanceKMIdenticalPoints(t *testing.T) {
	if got := DistanceKM(-6.2, 106.8166, -6.2, 106.8166); got != 0 {
		t.Fatalf("expected zero distance for identical points, got %f", got)
	}
}

func TestDistanceKMKnownPair(t *testing.T) {
	// Jakarta -> Bandung, roughly 115-120 km great-circle.
	got := DistanceKM(-6.2, 106.8166, -6.9175, 107.6191)
	if got < 110 || got > 125 {
		t.Fatalf("unexpected Jakarta-Bandung distance: %f", got)
	}
}

func TestDistanceKMMonotonicAlongMeridian(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 10; i++ {
		d := DistanceKM(0, 0, float64(i), 0)
		if d <= prev {
			t.Fatalf("distance not strictly increasing at step %d: %f <= %f", i, d, prev)
		}
		prev = d
	}
}

func TestDistanceKMOneDegreeLatitude(t *testing.T) {
	got := DistanceKM(0, 0, 1, 0)
	if math.Abs(got-111.19) > 0.5 {
		t.Fatalf("one degree of latitude should be ~111.19 km, got %f", got)
	}
}

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"valid", -6.2, 106.8166, true},
		{"lat too high", 91, 0, false},
		{"lon too low", 0, -181, false},
		{"nan", math.NaN(), 0, false},
		{"inf", 0, math.Inf(1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
				t.Fatalf("ValidateCoordinates(%f, %f) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}
