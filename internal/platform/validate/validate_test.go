package validate

import (
	"strings"
	"testing"
)

type sample struct {
	Name  string  `json:"inventoryName" validate:"required,min=3"`
	Image string  `json:"inventoryImage" validate:"required,http_url"`
	Email string  `json:"email" validate:"omitempty,email"`
	Price float64 `json:"price" validate:"gt=0"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{Name: "Meds", Image: "https://cdn.example.com/a.png", Price: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_MessagesUseJSONNames(t *testing.T) {
	err := Struct(sample{Name: "ab", Image: "ftp://x", Email: "nope", Price: 0})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	for _, want := range []string{
		"inventoryName must be at least 3 characters",
		"inventoryImage must be a valid http(s) url",
		"email must be a valid email",
		"price must be greater than 0",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing %q in %q", want, msg)
		}
	}
}

func TestEmail(t *testing.T) {
	if !Email("milo@clinic.test") {
		t.Fatalf("expected valid email")
	}
	for _, bad := range []string{"", "milo", "milo@"} {
		if Email(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}
