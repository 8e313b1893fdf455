package schema

// Identification
const (
	FieldInstitutionCode Field = "colegio"
	FieldEducationLevel  Field = "nivel"
	FieldRegistryNumber  Field = "legajo"
)

// Personal data
const (
	FieldFullName       Field = "apellido_nombres"
	FieldLastName       Field = "apellido"
	FieldFirstNames     Field = "nombres"
	FieldIdentityNumber Field = "dni"
	FieldFiscalID       Field = "cuil"
	FieldBirthDate      Field = "fecha_nacimiento"
)

// Employment
const (
	FieldEmploymentStatus Field = "situacion_revista"
	FieldRole             Field = "cargo"
	FieldScore            Field = "puntaje"
	FieldHours            Field = "horas"
	FieldAttendanceDays   Field = "asistencia_dias"
	FieldAbsenceDays      Field = "inasistencia_dias"
	FieldSeniorityYears   Field = "antiguedad_anos"
	FieldSeniorityMonths  Field = "antiguedad_meses"
	FieldSeniorityPercent Field = "antiguedad_porcentaje"
	FieldArraigoYears     Field = "arraigo_anos"
	FieldArraigoPercent   Field = "arraigo_porcentaje"
	FieldArraigoHours     Field = "arraigo_horas"
	FieldClassAssignment  Field = "asignacion_clase"
	FieldSignatures       Field = "firmas"
)

// Remunerative amounts
const (
	FieldBaseSalary         Field = "sueldo_basico"
	FieldSeniorityAmount    Field = "antiguedad_monto"
	FieldZoneBonus          Field = "zona"
	FieldAttendanceBonus    Field = "presentismo"
	FieldRemunerativeBonus  Field = "bono_remunerativo"
	FieldDirectorAllowance  Field = "adicional_directivo"
	FieldSalaryGuarantee    Field = "garantia_remunerativa"
	FieldClassroomItem      Field = "item_aula"
	FieldOtherRemunerative  Field = "otros_adicionales"
	FieldArraigoItem        Field = "item_arraigo"
	FieldSpecializationItem Field = "item_especializacion"
	FieldGrossSalary        Field = "sueldo_bruto"
	FieldWageDifferences    Field = "diferencias_paritarias"
	FieldGrossTotal         Field = "sueldo_bruto_total"
	FieldTotalRemunerative  Field = "total_remunerativo"
)

// Non-remunerative amounts
const (
	FieldFamilyAllowance      Field = "salario_familiar"
	FieldSchoolAid            Field = "ayuda_escolar"
	FieldSuppliesAid          Field = "ayuda_utiles"
	FieldNationalGuarantee    Field = "garantia_nacional"
	FieldProvincialGuarantee  Field = "garantia_provincial"
	FieldNonRemunDifferences  Field = "diferencias_no_remunerativas"
	FieldNonRemunBonus        Field = "bono_no_remunerativo"
	FieldTeacherIncentive     Field = "incentivo_docente"
	FieldConnectivity         Field = "conectividad"
	FieldOtherNonRemunerative Field = "otros_no_remunerativos"
	FieldTotalEarnings        Field = "total_haberes"
)

// Deductions and totals
const (
	FieldPension           Field = "jubilacion"
	FieldHealthInsurance   Field = "obra_social"
	FieldUnionDues         Field = "sindicato"
	FieldComplementaryFund Field = "caja_complementaria"
	FieldOtherDeductions   Field = "otros_descuentos"
	FieldTotalDeductions   Field = "total_deducciones"
	FieldNetPay            Field = "sueldo_neto"
)
