package currency

import (
	"strings"
	"testing"
)

func TestNewFormatterRejectsUnknownCode(t *testing.T) {
	if _, err := NewFormatter("NOPE"); err == nil {
		t.Fatal("expected an error for an unknown currency code")
	}
}

func TestFormatUSDGroupsAndKeepsDecimals(t *testing.T) {
	fmtr, err := NewFormatter("USD")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	out := fmtr.Format(1234.5)
	if !strings.Contains(out, "1,234.50") {
		t.Errorf("Format(1234.5) = %q, want grouped two-decimal output", out)
	}
	if fmtr.Code() != "USD" {
		t.Errorf("Code() = %q, want USD", fmtr.Code())
	}
}

func TestFormatJPYDropsDecimals(t *testing.T) {
	fmtr, err := NewFormatter("JPY")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	out := fmtr.Format(50000)
	if !strings.Contains(out, "50,000") {
		t.Errorf("Format(50000) = %q, want grouped output", out)
	}
	if strings.Contains(out, ".") {
		t.Errorf("Format(50000) = %q, want no decimal point for JPY", out)
	}
}

func TestFormatEffort(t *testing.T) {
	fmtr, err := NewFormatter("EUR")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	out := fmtr.FormatEffort(23.1)
	if !strings.Contains(out, "23.1") || !strings.Contains(out, "person-days") {
		t.Errorf("FormatEffort(23.1) = %q", out)
	}
}
