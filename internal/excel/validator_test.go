package excel

import (
	"strings"
	"testing"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

func TestValidateDataAllValid(t *testing.T) {
	s := liquidacion(t)
	data := fiveTeachers(t, s, nil)

	got, err := NewValidator(s).ValidateData(data)
	if err != nil {
		t.Fatalf("ValidateData: %v", err)
	}
	if !got.Valid || len(got.Errors) != 0 || got.TotalRows != 5 || got.RowsWithErrors != 0 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestValidateDataBlankRegistryNumber(t *testing.T) {
	s := liquidacion(t)
	data := fiveTeachers(t, s, func(i int, v map[schema.Field]any) {
		if i == 2 {
			v[schema.FieldRegistryNumber] = nil
		}
	})

	got, err := NewValidator(s).ValidateData(data)
	if err != nil {
		t.Fatalf("ValidateData: %v", err)
	}
	if got.Valid || len(got.Errors) != 1 || got.RowsWithErrors != 1 || got.TotalRows != 5 {
		t.Fatalf("unexpected result %+v", got)
	}
	if e := got.Errors[0]; e.Row != 3 || e.Column != "Legajo" {
		t.Fatalf("error at row %d column %q, want row 3 column Legajo", e.Row, e.Column)
	}
}

func TestValidateDataErrorsAscendAndRowsCounted(t *testing.T) {
	s := liquidacion(t)
	data := fiveTeachers(t, s, func(i int, v map[schema.Field]any) {
		switch i {
		case 1:
			v[schema.FieldFiscalID] = "20-30123451-0"
		case 4:
			v[schema.FieldIdentityNumber] = "12.345"
			v[schema.FieldEducationLevel] = "X"
			v[schema.FieldInstitutionCode] = "P001"
		case 5:
			v[schema.FieldRegistryNumber] = "1000"
		}
	})

	got, err := NewValidator(s).ValidateData(data)
	if err != nil {
		t.Fatalf("ValidateData: %v", err)
	}
	if got.Valid {
		t.Fatalf("expected errors")
	}
	if len(got.Errors) != 5 || got.RowsWithErrors != 3 {
		t.Fatalf("errors = %d, rows with errors = %d; want 5 and 3", len(got.Errors), got.RowsWithErrors)
	}
	if got.RowsWithErrors > len(got.Errors) {
		t.Fatalf("rows with errors exceeds error count")
	}
	for i := 1; i < len(got.Errors); i++ {
		if got.Errors[i].Row < got.Errors[i-1].Row {
			t.Fatalf("errors not in ascending row order: %+v", got.Errors)
		}
	}

	wantColumns := []string{"CUIL", "DNI", "Colegio", "NIVEL", "Legajo"}
	for i, col := range wantColumns {
		if got.Errors[i].Column != col {
			t.Fatalf("errors[%d].Column = %q, want %q", i, got.Errors[i].Column, col)
		}
	}

	dni := got.Errors[1]
	if dni.Row != 5 || dni.Value != "12.345" || !strings.Contains(dni.Message, "12.345") {
		t.Fatalf("identity error does not carry the raw value: %+v", dni)
	}
}

func TestValidateDataOneErrorPerRow(t *testing.T) {
	s := liquidacion(t)
	data := fiveTeachers(t, s, func(i int, v map[schema.Field]any) {
		if i%2 == 1 {
			v[schema.FieldEducationLevel] = "Z"
		}
	})

	got, err := NewValidator(s).ValidateData(data)
	if err != nil {
		t.Fatalf("ValidateData: %v", err)
	}
	if got.RowsWithErrors != len(got.Errors) || got.RowsWithErrors != 3 {
		t.Fatalf("want three rows with one error each, got %+v", got)
	}
}

func TestValidateDataSkipsEmptyRows(t *testing.T) {
	s := liquidacion(t)
	bad := validTeacher(2)
	bad[schema.FieldIdentityNumber] = "abc"
	rows := [][]any{layoutRow(s, validTeacher(1)), nil, layoutRow(s, bad)}
	data := buildWorkbook(t, s.ExpectedSheetName(), s.ExpectedColumnNames(), rows)

	got, err := NewValidator(s).ValidateData(data)
	if err != nil {
		t.Fatalf("ValidateData: %v", err)
	}
	if got.TotalRows != 2 {
		t.Fatalf("TotalRows = %d, want 2", got.TotalRows)
	}
	if len(got.Errors) != 1 || got.Errors[0].Row != 4 {
		t.Fatalf("expected one error on worksheet row 4, got %+v", got.Errors)
	}
}

func TestValidateDataDefaultLayoutSkipsAbsentColumns(t *testing.T) {
	s := schema.Default()
	data := fiveTeachers(t, s, nil)

	got, err := NewValidator(s).ValidateData(data)
	if err != nil {
		t.Fatalf("ValidateData: %v", err)
	}
	if !got.Valid || got.TotalRows != 5 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestValidateDataUnreadable(t *testing.T) {
	if _, err := NewValidator(schema.Default()).ValidateData([]byte("nope")); err == nil {
		t.Fatalf("expected an error for an unreadable buffer")
	}
}
