package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "T101", "Invalid config file", CategoryConfig},
		{"cli error", "T201", "Server unreachable", CategoryCLI},
		{"server error", "T300", "Listen failed", CategoryServer},
		{"unknown error code", "T999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "message")
	if err.Message != `flag "message" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("EOF")
	err := New("T101").Wrap(cause)

	got := err.Error()
	if !strings.HasPrefix(got, "T101: Invalid config file") || !strings.HasSuffix(got, ": EOF") {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "T101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("T102")
	if FromError(orig, "T101") != orig {
		t.Error("FromError should return an existing ToastError unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "T300")
	if wrapped.Code != "T300" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestHasCode(t *testing.T) {
	err := New("T102").WithDetail("bad")
	outer := FromError(err, "T101")
	if !HasCode(outer, "T102") {
		t.Error("HasCode should find T102")
	}
	if HasCode(stderrors.New("plain"), "T102") {
		t.Error("HasCode on plain error should be false")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("T102").
		WithDetail("durations.error must be a Go duration").
		WithSuggestion(`Use "6s"`)

	out := err.Format()
	for _, want := range []string{"ERROR T102: Invalid duration", "durations.error must be a Go duration", `Hint: Use "6s"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains color codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	if got := New("T200").FormatCompact(); got != "T200: Invalid arguments" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := Newf(CategoryCLI, "oops").FormatCompact(); got != "oops" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line longer than width: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("T201"))
	if !strings.Contains(buf.String(), "T201: Server unreachable") {
		t.Errorf("Fprint(ToastError) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint(error) = %q", buf.String())
	}
}

func TestGetAllCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if _, ok := GetTemplate("T100"); !ok {
		t.Error("T100 not registered")
	}
}
