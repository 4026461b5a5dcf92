package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestValidate_Modes(t *testing.T) {
	valid := []string{"alert", "digest:morning", "digest:day", "digest:weekly", "daemon"}
	for _, mode := range valid {
		cfg := &Cfg{Mode: mode, MessageLimit: 1900, QuotaBudget: 10000}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Mode %q should be valid, got error: %v", mode, err)
		}
	}

	cfg := &Cfg{Mode: "hourly", MessageLimit: 1900, QuotaBudget: 10000}
	if err := cfg.Validate(); err == nil {
		t.Error("Mode 'hourly' should be rejected")
	}
}

func TestValidate_MessageLimit(t *testing.T) {
	cfg := &Cfg{Mode: "alert", MessageLimit: 50, QuotaBudget: 10000}
	if err := cfg.Validate(); err == nil {
		t.Error("Message limit 50 should be rejected")
	}
}

func TestValidate_QuotaBudget(t *testing.T) {
	cfg := &Cfg{Mode: "alert", MessageLimit: 1900, QuotaBudget: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("Zero quota budget should be rejected")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Cfg{Timezone: "Asia/Tokyo"}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Failed to load Asia/Tokyo: %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Errorf("Expected Asia/Tokyo, got %s", loc)
	}

	cfg = &Cfg{Timezone: "Not/AZone"}
	if _, err := cfg.Location(); err == nil {
		t.Error("Invalid timezone should return an error")
	}
}
