package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

// PayrollRow is one extracted workbook row. Every field is optional; nil means the
// column was absent from the layout or the cell could not be read as its type.
type PayrollRow struct {
	Row int `json:"row" db:"fila_excel"`

	InstitutionCode *string `json:"institution_code,omitempty" db:"colegio"`
	EducationLevel  *string `json:"education_level,omitempty" db:"nivel"`
	RegistryNumber  *string `json:"registry_number,omitempty" db:"legajo"`

	FullName       *string    `json:"full_name,omitempty" db:"apellido_nombres"`
	LastName       *string    `json:"last_name,omitempty" db:"apellido"`
	FirstNames     *string    `json:"first_names,omitempty" db:"nombres"`
	IdentityNumber *string    `json:"identity_number,omitempty" db:"dni"`
	FiscalID       *string    `json:"fiscal_id,omitempty" db:"cuil"`
	BirthDate      *time.Time `json:"birth_date,omitempty" db:"fecha_nacimiento"`

	EmploymentStatus *string  `json:"employment_status,omitempty" db:"situacion_revista"`
	Role             *string  `json:"role,omitempty" db:"cargo"`
	Score            *float64 `json:"score,omitempty" db:"puntaje"`
	Hours            *float64 `json:"hours,omitempty" db:"horas"`
	AttendanceDays   *float64 `json:"attendance_days,omitempty" db:"asistencia_dias"`
	AbsenceDays      *float64 `json:"absence_days,omitempty" db:"inasistencia_dias"`
	SeniorityYears   *float64 `json:"seniority_years,omitempty" db:"antiguedad_anos"`
	SeniorityMonths  *float64 `json:"seniority_months,omitempty" db:"antiguedad_meses"`
	SeniorityPercent *float64 `json:"seniority_percent,omitempty" db:"antiguedad_porcentaje"`
	ArraigoYears     *float64 `json:"arraigo_years,omitempty" db:"arraigo_anos"`
	ArraigoPercent   *float64 `json:"arraigo_percent,omitempty" db:"arraigo_porcentaje"`
	ArraigoHours     *float64 `json:"arraigo_hours,omitempty" db:"arraigo_horas"`
	ClassAssignment  *float64 `json:"class_assignment,omitempty" db:"asignacion_clase"`
	Signatures       *string  `json:"signatures,omitempty" db:"firmas"`

	BaseSalary         *float64 `json:"base_salary,omitempty" db:"sueldo_basico"`
	SeniorityAmount    *float64 `json:"seniority_amount,omitempty" db:"antiguedad_monto"`
	ZoneBonus          *float64 `json:"zone_bonus,omitempty" db:"zona"`
	AttendanceBonus    *float64 `json:"attendance_bonus,omitempty" db:"presentismo"`
	RemunerativeBonus  *float64 `json:"remunerative_bonus,omitempty" db:"bono_remunerativo"`
	DirectorAllowance  *float64 `json:"director_allowance,omitempty" db:"adicional_directivo"`
	SalaryGuarantee    *float64 `json:"salary_guarantee,omitempty" db:"garantia_remunerativa"`
	ClassroomItem      *float64 `json:"classroom_item,omitempty" db:"item_aula"`
	OtherRemunerative  *float64 `json:"other_remunerative,omitempty" db:"otros_adicionales"`
	ArraigoItem        *float64 `json:"arraigo_item,omitempty" db:"item_arraigo"`
	SpecializationItem *float64 `json:"specialization_item,omitempty" db:"item_especializacion"`
	GrossSalary        *float64 `json:"gross_salary,omitempty" db:"sueldo_bruto"`
	WageDifferences    *float64 `json:"wage_differences,omitempty" db:"diferencias_paritarias"`
	GrossTotal         *float64 `json:"gross_total,omitempty" db:"sueldo_bruto_total"`
	TotalRemunerative  *float64 `json:"total_remunerative,omitempty" db:"total_remunerativo"`

	FamilyAllowance      *float64 `json:"family_allowance,omitempty" db:"salario_familiar"`
	SchoolAid            *float64 `json:"school_aid,omitempty" db:"ayuda_escolar"`
	SuppliesAid          *float64 `json:"supplies_aid,omitempty" db:"ayuda_utiles"`
	NationalGuarantee    *float64 `json:"national_guarantee,omitempty" db:"garantia_nacional"`
	ProvincialGuarantee  *float64 `json:"provincial_guarantee,omitempty" db:"garantia_provincial"`
	NonRemunDifferences  *float64 `json:"non_remunerative_differences,omitempty" db:"diferencias_no_remunerativas"`
	NonRemunBonus        *float64 `json:"non_remunerative_bonus,omitempty" db:"bono_no_remunerativo"`
	TeacherIncentive     *float64 `json:"teacher_incentive,omitempty" db:"incentivo_docente"`
	Connectivity         *float64 `json:"connectivity,omitempty" db:"conectividad"`
	OtherNonRemunerative *float64 `json:"other_non_remunerative,omitempty" db:"otros_no_remunerativos"`
	TotalEarnings        *float64 `json:"total_earnings,omitempty" db:"total_haberes"`

	Pension           *float64 `json:"pension,omitempty" db:"jubilacion"`
	HealthInsurance   *float64 `json:"health_insurance,omitempty" db:"obra_social"`
	UnionDues         *float64 `json:"union_dues,omitempty" db:"sindicato"`
	ComplementaryFund *float64 `json:"complementary_fund,omitempty" db:"caja_complementaria"`
	OtherDeductions   *float64 `json:"other_deductions,omitempty" db:"otros_descuentos"`
	TotalDeductions   *float64 `json:"total_deductions,omitempty" db:"total_deducciones"`
	NetPay            *float64 `json:"net_pay,omitempty" db:"sueldo_neto"`
}

// TextField returns the slot that holds a text or code field.
func (r *PayrollRow) TextField(f schema.Field) (**string, bool) {
	switch f {
	case schema.FieldInstitutionCode:
		return &r.InstitutionCode, true
	case schema.FieldEducationLevel:
		return &r.EducationLevel, true
	case schema.FieldRegistryNumber:
		return &r.RegistryNumber, true
	case schema.FieldFullName:
		return &r.FullName, true
	case schema.FieldLastName:
		return &r.LastName, true
	case schema.FieldFirstNames:
		return &r.FirstNames, true
	case schema.FieldIdentityNumber:
		return &r.IdentityNumber, true
	case schema.FieldFiscalID:
		return &r.FiscalID, true
	case schema.FieldEmploymentStatus:
		return &r.EmploymentStatus, true
	case schema.FieldRole:
		return &r.Role, true
	case schema.FieldSignatures:
		return &r.Signatures, true
	}
	return nil, false
}

// NumberField returns the slot that holds a numeric field.
func (r *PayrollRow) NumberField(f schema.Field) (**float64, bool) {
	switch f {
	case schema.FieldScore:
		return &r.Score, true
	case schema.FieldHours:
		return &r.Hours, true
	case schema.FieldAttendanceDays:
		return &r.AttendanceDays, true
	case schema.FieldAbsenceDays:
		return &r.AbsenceDays, true
	case schema.FieldSeniorityYears:
		return &r.SeniorityYears, true
	case schema.FieldSeniorityMonths:
		return &r.SeniorityMonths, true
	case schema.FieldSeniorityPercent:
		return &r.SeniorityPercent, true
	case schema.FieldArraigoYears:
		return &r.ArraigoYears, true
	case schema.FieldArraigoPercent:
		return &r.ArraigoPercent, true
	case schema.FieldArraigoHours:
		return &r.ArraigoHours, true
	case schema.FieldClassAssignment:
		return &r.ClassAssignment, true
	case schema.FieldBaseSalary:
		return &r.BaseSalary, true
	case schema.FieldSeniorityAmount:
		return &r.SeniorityAmount, true
	case schema.FieldZoneBonus:
		return &r.ZoneBonus, true
	case schema.FieldAttendanceBonus:
		return &r.AttendanceBonus, true
	case schema.FieldRemunerativeBonus:
		return &r.RemunerativeBonus, true
	case schema.FieldDirectorAllowance:
		return &r.DirectorAllowance, true
	case schema.FieldSalaryGuarantee:
		return &r.SalaryGuarantee, true
	case schema.FieldClassroomItem:
		return &r.ClassroomItem, true
	case schema.FieldOtherRemunerative:
		return &r.OtherRemunerative, true
	case schema.FieldArraigoItem:
		return &r.ArraigoItem, true
	case schema.FieldSpecializationItem:
		return &r.SpecializationItem, true
	case schema.FieldGrossSalary:
		return &r.GrossSalary, true
	case schema.FieldWageDifferences:
		return &r.WageDifferences, true
	case schema.FieldGrossTotal:
		return &r.GrossTotal, true
	case schema.FieldTotalRemunerative:
		return &r.TotalRemunerative, true
	case schema.FieldFamilyAllowance:
		return &r.FamilyAllowance, true
	case schema.FieldSchoolAid:
		return &r.SchoolAid, true
	case schema.FieldSuppliesAid:
		return &r.SuppliesAid, true
	case schema.FieldNationalGuarantee:
		return &r.NationalGuarantee, true
	case schema.FieldProvincialGuarantee:
		return &r.ProvincialGuarantee, true
	case schema.FieldNonRemunDifferences:
		return &r.NonRemunDifferences, true
	case schema.FieldNonRemunBonus:
		return &r.NonRemunBonus, true
	case schema.FieldTeacherIncentive:
		return &r.TeacherIncentive, true
	case schema.FieldConnectivity:
		return &r.Connectivity, true
	case schema.FieldOtherNonRemunerative:
		return &r.OtherNonRemunerative, true
	case schema.FieldTotalEarnings:
		return &r.TotalEarnings, true
	case schema.FieldPension:
		return &r.Pension, true
	case schema.FieldHealthInsurance:
		return &r.HealthInsurance, true
	case schema.FieldUnionDues:
		return &r.UnionDues, true
	case schema.FieldComplementaryFund:
		return &r.ComplementaryFund, true
	case schema.FieldOtherDeductions:
		return &r.OtherDeductions, true
	case schema.FieldTotalDeductions:
		return &r.TotalDeductions, true
	case schema.FieldNetPay:
		return &r.NetPay, true
	}
	return nil, false
}

// DateField returns the slot that holds a date field.
func (r *PayrollRow) DateField(f schema.Field) (**time.Time, bool) {
	if f == schema.FieldBirthDate {
		return &r.BirthDate, true
	}
	return nil, false
}

// TeacherKey identifies a teacher within a school: identity number followed by the
// registry number padded to three digits. Empty when either part is missing.
func (r *PayrollRow) TeacherKey() string {
	if r.IdentityNumber == nil || r.RegistryNumber == nil || *r.IdentityNumber == "" || *r.RegistryNumber == "" {
		return ""
	}
	reg := *r.RegistryNumber
	if len(reg) < 3 {
		reg = strings.Repeat("0", 3-len(reg)) + reg
	}
	return *r.IdentityNumber + reg
}

// Cost is the amount a row adds to the submission's presented total.
func (r *PayrollRow) Cost() float64 {
	switch {
	case r.TotalRemunerative != nil:
		return *r.TotalRemunerative
	case r.TotalEarnings != nil:
		return *r.TotalEarnings
	default:
		return 0
	}
}

// PayrollLine is a persisted PayrollRow.
type PayrollLine struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SubmissionID uuid.UUID `json:"submission_id" db:"id_presentacion"`
	SchoolID     uuid.UUID `json:"school_id" db:"id_colegio"`
	TeacherKey   *string   `json:"teacher_key,omitempty" db:"clave_docente"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	PayrollRow
}

// NewPayrollLine binds an extracted row to its submission.
func NewPayrollLine(submissionID, schoolID uuid.UUID, row PayrollRow) PayrollLine {
	line := PayrollLine{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		SchoolID:     schoolID,
		CreatedAt:    time.Now().UTC(),
		PayrollRow:   row,
	}
	if key := row.TeacherKey(); key != "" {
		line.TeacherKey = &key
	}
	return line
}
