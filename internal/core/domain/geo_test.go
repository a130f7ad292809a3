package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
)

func TestCoordinate_Validate(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 17.436923, 78.373906, false},
		{"lat north pole", 90, 0, false},
		{"lat south pole", -90, 0, false},
		{"lon date line", 0, 180, false},
		{"lon negative date line", 0, -180, false},
		{"lat too high", 90.0001, 0, true},
		{"lat too low", -91, 0, true},
		{"lon too high", 0, 180.5, true},
		{"lon too low", 0, -181, true},
		{"lat NaN", math.NaN(), 0, true},
		{"lon NaN", 0, math.NaN(), true},
		{"lat Inf", math.Inf(1), 0, true},
		{"lon -Inf", 0, math.Inf(-1), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.Coordinate{Latitude: tc.lat, Longitude: tc.lon}.Validate()
			if tc.wantErr && !errors.Is(err, domain.ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGeofence_Contains(t *testing.T) {
	fence := domain.Geofence{RadiusMeters: 100}

	if !fence.Contains(99.9) {
		t.Error("expected inside below the radius")
	}
	if !fence.Contains(100) {
		t.Error("the boundary itself counts as inside")
	}
	if fence.Contains(100.0001) {
		t.Error("expected outside past the radius")
	}
}

func TestAccessDecision_Message(t *testing.T) {
	allowed := domain.AccessDecision{Allowed: true}
	if allowed.Message() != domain.MessageOutside {
		t.Errorf("unexpected message: %s", allowed.Message())
	}

	denied := domain.AccessDecision{Allowed: false}
	if denied.Message() != domain.MessageInside {
		t.Errorf("unexpected message: %s", denied.Message())
	}
}
