package pipeline

import (
	"testing"
	"time"

	"github.com/matzehuels/kinreport/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		kind    string
		format  string
		wantErr errors.Code
	}{
		{"tree", "png", ""},
		{"tree", "pdf", ""},
		{"tree", "json", ""},
		{"report", "pdf", ""},
		{"certificate", "pdf", ""},
		{"nodelink", "svg", ""},
		{"nodelink", "dot", ""},
		{"report", "png", errors.ErrCodeInvalidFormat},
		{"nodelink", "pdf", errors.ErrCodeInvalidFormat},
		{"tree", "PNG", errors.ErrCodeInvalidFormat}, // case-sensitive
		{"tower", "svg", errors.ErrCodeInvalidKind},
		{"", "", errors.ErrCodeInvalidKind},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.kind, tt.format)
		if got := errors.GetCode(err); got != tt.wantErr {
			t.Errorf("ValidateFormat(%q, %q) = %v, want code %q", tt.kind, tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{DNI: " 12345678 "}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.DNI != "12345678" || opts.Kind != KindTree || opts.Format != FormatPNG || opts.Scale != DefaultScale {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Now.IsZero() || opts.Logger == nil {
		t.Error("Now and Logger should be set")
	}

	report := Options{DNI: "12345678", Kind: "REPORT"}
	if err := report.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if report.Kind != KindReport || report.Format != FormatPDF {
		t.Errorf("report defaults = %s/%s", report.Kind, report.Format)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing dni", Options{}, errors.ErrCodeInvalidInput},
		{"short dni", Options{DNI: "1234"}, errors.ErrCodeInvalidInput},
		{"bad kind", Options{DNI: "12345678", Kind: "tower"}, errors.ErrCodeInvalidKind},
		{"bad format", Options{DNI: "12345678", Kind: "certificate", Format: "png"}, errors.ErrCodeInvalidFormat},
		{"negative scale", Options{DNI: "12345678", Scale: -1}, errors.ErrCodeInvalidInput},
		{"huge scale", Options{DNI: "12345678", Scale: 20}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{DNI: "12345678", Kind: "nodelink"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Format != first.Format || opts.Now != first.Now || opts.Scale != first.Scale {
		t.Error("second call changed the options")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{DNI: "12345678", Kind: "report", Now: time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	k := opts.ArtifactKeyOpts("abc")
	if k.Kind != "report" || k.Format != "pdf" || k.Day != "2024-03-05" || k.Content != "abc" {
		t.Errorf("key opts = %+v", k)
	}
	if got := opts.Filename(); got != "report-12345678.pdf" {
		t.Errorf("Filename = %s", got)
	}
}

func TestContentType(t *testing.T) {
	for format, want := range map[string]string{
		"png":   "image/png",
		"pdf":   "application/pdf",
		"svg":   "image/svg+xml",
		"bogus": "application/octet-stream",
	} {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%s) = %s, want %s", format, got, want)
		}
	}
}
