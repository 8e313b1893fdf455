package excel

import (
	"testing"
	"time"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

func TestParseNormalizesCells(t *testing.T) {
	s := liquidacion(t)
	v := validTeacher(1)
	v[schema.FieldRegistryNumber] = "7"
	v[schema.FieldIdentityNumber] = "30.123.451"
	v[schema.FieldFiscalID] = "20-30123451-2"
	v[schema.FieldEducationLevel] = " ps "
	v[schema.FieldInstitutionCode] = " ps-102 "
	v[schema.FieldLastName] = "  PEREZ  "
	v[schema.FieldBaseSalary] = "not a number"
	v[schema.FieldSeniorityAmount] = "1234,5"
	v[schema.FieldBirthDate] = time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC)
	data := buildWorkbook(t, s.ExpectedSheetName(), s.ExpectedColumnNames(), [][]any{layoutRow(s, v)})

	rows, err := NewParser(s).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	r := rows[0]

	if r.Row != 2 {
		t.Fatalf("Row = %d, want 2", r.Row)
	}
	checks := []struct {
		name string
		got  *string
		want string
	}{
		{"registry", r.RegistryNumber, "007"},
		{"identity", r.IdentityNumber, "30123451"},
		{"fiscal id", r.FiscalID, "20301234512"},
		{"level", r.EducationLevel, "PS"},
		{"institution", r.InstitutionCode, "ps-102"},
		{"last name", r.LastName, "PEREZ"},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %q", c.name, c.got, c.want)
		}
	}

	if r.BaseSalary != nil {
		t.Errorf("expected unparseable amount to be nil, got %v", *r.BaseSalary)
	}
	if r.SeniorityAmount == nil || *r.SeniorityAmount != 1234.5 {
		t.Errorf("SeniorityAmount = %v, want 1234.5", r.SeniorityAmount)
	}
	if r.TotalRemunerative == nil || *r.TotalRemunerative != 100000.5 {
		t.Errorf("TotalRemunerative = %v, want 100000.5", r.TotalRemunerative)
	}
	if r.BirthDate == nil || r.BirthDate.Year() != 1990 || r.BirthDate.Month() != time.March || r.BirthDate.Day() != 15 {
		t.Errorf("BirthDate = %v, want 1990-03-15", r.BirthDate)
	}
	if r.Score != nil || r.NetPay == nil {
		t.Errorf("unexpected optional fields: score=%v net=%v", r.Score, r.NetPay)
	}
	if got := r.TeacherKey(); got != "30123451007" {
		t.Errorf("TeacherKey = %q", got)
	}
}

func TestParseDerivesIdentityAndLevel(t *testing.T) {
	s := schema.Default()
	v := validTeacher(3)
	v[schema.FieldInstitutionCode] = "ps-102"
	v[schema.FieldRegistryNumber] = "4"
	v[schema.FieldFiscalID] = "20-16789012-2"
	data := buildWorkbook(t, s.ExpectedSheetName(), s.ExpectedColumnNames(), [][]any{layoutRow(s, v)})

	rows, err := NewParser(s).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := rows[0]
	if r.IdentityNumber == nil || *r.IdentityNumber != "16789012" {
		t.Fatalf("IdentityNumber = %v, want 16789012", r.IdentityNumber)
	}
	if r.EducationLevel == nil || *r.EducationLevel != "PS" {
		t.Fatalf("EducationLevel = %v, want PS", r.EducationLevel)
	}
	if r.InstitutionCode == nil || *r.InstitutionCode != "ps-102" {
		t.Fatalf("InstitutionCode = %v, want it kept as entered", r.InstitutionCode)
	}
	if r.FullName == nil || *r.FullName != "DOCENTE NUMERO 3" {
		t.Fatalf("FullName = %v", r.FullName)
	}
	if got := r.TeacherKey(); got != "16789012004" {
		t.Fatalf("TeacherKey = %q", got)
	}
	if r.Cost() != 330000 {
		t.Fatalf("Cost = %v, want total earnings when the layout has no remunerative total", r.Cost())
	}
}

func TestParseKeepsSheetOrderAndSkipsEmptyRows(t *testing.T) {
	s := liquidacion(t)
	rows := [][]any{layoutRow(s, validTeacher(1)), nil, nil, layoutRow(s, validTeacher(2))}
	data := buildWorkbook(t, s.ExpectedSheetName(), s.ExpectedColumnNames(), rows)

	got, err := NewParser(s).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 || got[0].Row != 2 || got[1].Row != 5 {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	s := liquidacion(t)
	data := fiveTeachers(t, s, nil)
	p := NewParser(s)

	first, err := p.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := p.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertSameRows(t, first, second)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"12", ptr(12)},
		{"12.5", ptr(12.5)},
		{"12,5", ptr(12.5)},
		{"1 200", ptr(1200)},
		{"abc", nil},
		{"NaN", nil},
		{"Inf", nil},
	}
	for _, tt := range tests {
		got := parseNumber(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func ptr(f float64) *float64 {
	return &f
}
