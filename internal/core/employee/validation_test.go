package employee

import (
	"errors"
	"strings"
	"testing"

	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != apierror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	return apiErr.Fields
}

func TestCreateInput_Validate_Success(t *testing.T) {
	t.Parallel()

	in := CreateInput{Name: "John Doe", Email: "j@x.com", Department: DepartmentIT}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestCreateInput_Validate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    CreateInput
		field string
		want  string
	}{
		{"missing name", CreateInput{Email: "a@b.com", Department: DepartmentHR}, "name", "Name is required"},
		{"digits in name", CreateInput{Name: "R2D2", Email: "a@b.com", Department: DepartmentHR}, "name", "Only alphabetic characters allowed"},
		{"long name", CreateInput{Name: strings.Repeat("a", 101), Email: "a@b.com", Department: DepartmentHR}, "name", "Name cannot exceed 100 characters"},
		{"bad email", CreateInput{Name: "Ann", Email: "not-an-email", Department: DepartmentHR}, "email", "Invalid email format"},
		{"missing department", CreateInput{Name: "Ann", Email: "a@b.com"}, "department", "Department is required"},
		{"unknown department", CreateInput{Name: "Ann", Email: "a@b.com", Department: "Legal"}, "department", "Invalid department"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := validationFields(t, tt.in.Validate())
			if got := fields[tt.field]; got != tt.want {
				t.Fatalf("field %s: want %q, got %q (all: %v)", tt.field, tt.want, got, fields)
			}
		})
	}
}

func TestUpdateInput_Validate_OnlyProvidedFields(t *testing.T) {
	t.Parallel()

	if err := (UpdateInput{}).Validate(); err != nil {
		t.Fatalf("empty update should be valid, got %v", err)
	}

	dept := Department("Legal")
	email := "ok@example.com"
	fields := validationFields(t, UpdateInput{Email: &email, Department: &dept}.Validate())
	if len(fields) != 1 || fields["department"] != "Invalid department" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestDepartment_IsValid(t *testing.T) {
	t.Parallel()

	for _, d := range Departments {
		if !d.IsValid() {
			t.Fatalf("expected %s to be valid", d)
		}
		if err := (UpdateInput{Department: &d}).Validate(); err != nil {
			t.Fatalf("expected %s to pass validation, got %v", d, err)
		}
	}

	lower := Department("hr")
	if lower.IsValid() {
		t.Fatal("department values are case sensitive")
	}
	fields := validationFields(t, UpdateInput{Department: &lower}.Validate())
	if fields["department"] != "Invalid department" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestDepartmentNames(t *testing.T) {
	t.Parallel()

	if got := DepartmentNames(", "); got != "HR, IT, Finance, Operations" {
		t.Fatalf("unexpected names: %q", got)
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]ID{
		`12`:      "12",
		`"abc-1"`: "abc-1",
		`null`:    "",
		`1.5`:     "1.5",
	}
	for raw, want := range tests {
		var id ID
		if err := id.UnmarshalJSON([]byte(raw)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) returned error: %v", raw, err)
		}
		if id != want {
			t.Fatalf("UnmarshalJSON(%s): want %q, got %q", raw, want, id)
		}
	}

	var id ID
	if err := id.UnmarshalJSON([]byte(`{}`)); err == nil {
		t.Fatal("expected error for object id")
	}
}
