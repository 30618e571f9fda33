package models

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestEffectiveMaintenanceInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval *float64
		want     float64
	}{
		{name: "unset uses default", interval: nil, want: DefaultMaintenanceInterval},
		{name: "zero uses default", interval: floatPtr(0), want: DefaultMaintenanceInterval},
		{name: "configured value", interval: floatPtr(50000), want: 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Vehicle{MaintenanceInterval: tt.interval}
			if got := v.EffectiveMaintenanceInterval(); got != tt.want {
				t.Errorf("EffectiveMaintenanceInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaintenanceDue(t *testing.T) {
	tests := []struct {
		name        string
		odometer    float64
		interval    *float64
		lastService float64
		want        bool
	}{
		{name: "below default threshold", odometer: 199999, interval: nil, lastService: 0, want: false},
		{name: "exactly default threshold", odometer: 200000, interval: nil, lastService: 0, want: true},
		{name: "above default threshold", odometer: 250000, interval: nil, lastService: 0, want: true},
		{name: "measured from last service", odometer: 250000, interval: nil, lastService: 100000, want: false},
		{name: "custom interval reached", odometer: 160000, interval: floatPtr(50000), lastService: 110000, want: true},
		{name: "custom interval not reached", odometer: 159999, interval: floatPtr(50000), lastService: 110000, want: false},
		{name: "never serviced measures from zero", odometer: 200001, interval: nil, lastService: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Vehicle{Odometer: tt.odometer, MaintenanceInterval: tt.interval}
			if got := v.MaintenanceDue(tt.lastService); got != tt.want {
				t.Errorf("MaintenanceDue(%v) = %v, want %v", tt.lastService, got, tt.want)
			}
		})
	}
}
