package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	if err := NewConfigValidator("cfg").Required("target", "").Validate(); err == nil {
		t.Error("expected error for empty field")
	} else if !strings.Contains(err.Error(), "cfg.target") {
		t.Errorf("error %q should name the field", err)
	}
	if err := NewConfigValidator("cfg").Required("target", "X").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{20, false},
		{21, true},
	}
	for _, tt := range tests {
		err := NewConfigValidator("cfg").RangeInt("attempts", tt.value, 1, 20).Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("RangeInt(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestConfigValidator_Probability(t *testing.T) {
	tests := []struct {
		value   float64
		wantErr bool
	}{
		{-0.1, true},
		{0, false},
		{0.4, false},
		{1, false},
		{1.01, true},
	}
	for _, tt := range tests {
		err := NewConfigValidator("cfg").Probability("p", tt.value).Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Probability(%g) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

// joined unpacks the errors collected by Validate.
func joined(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func TestConfigValidator_Ordered(t *testing.T) {
	err := NewConfigValidator("cfg").
		OrderedFloat("step", 0.2, 0.1).
		OrderedDuration("pause", time.Second, 2*time.Second).
		OrderedDuration("hold", 2*time.Second, time.Second).
		NonNegativeDuration("tick", -time.Millisecond).
		Validate()

	errs := joined(err)
	if len(errs) != 3 {
		t.Fatalf("Validate() = %v, want 3 errors", errs)
	}
	for i, field := range []string{"cfg.step", "cfg.hold", "cfg.tick"} {
		if !strings.Contains(errs[i].Error(), field) {
			t.Errorf("error %d = %q, want %s", i, errs[i], field)
		}
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"a", "b"}
	if err := NewConfigValidator("cfg").OneOf("x", "c", allowed).Validate(); err == nil {
		t.Error("expected error for value outside the allowed set")
	}
	if err := NewConfigValidator("cfg").OneOf("x", "b", allowed).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bad")
	err := NewConfigValidator("cfg").Custom("x", func() error { return sentinel }).Validate()
	if !errors.Is(err, sentinel) {
		t.Errorf("Validate() = %v, want wrapped sentinel", err)
	}
}

func TestConfigValidator_When(t *testing.T) {
	err := NewConfigValidator("cfg").
		When(false, func(cv *ConfigValidator) { cv.Positive("a", 0) }).
		When(true, func(cv *ConfigValidator) { cv.Positive("b", 0) }).
		Validate()

	errs := joined(err)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "cfg.b") {
		t.Errorf("Validate() = %v", errs)
	}
}

func TestConfigValidator_CollectsAll(t *testing.T) {
	err := NewConfigValidator("cfg").
		Positive("nodes", -1).
		Required("target", "").
		Probability("p", 2).
		Validate()

	if err == nil {
		t.Fatal("expected errors")
	}
	for _, field := range []string{"cfg.nodes", "cfg.target", "cfg.p"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("joined error %q missing %s", err, field)
		}
	}
}
