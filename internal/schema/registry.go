package schema

import (
	"sort"
)

const (
	VersionLibroPrimario = "libro-primario/v2"
	VersionLiquidacion   = "liquidacion/v1"
)

// ValidLevels are the education-level codes a school can report under.
var ValidLevels = []string{"P", "PE", "PP", "PS", "PT"}

// LevelNames maps level codes to their display names.
var LevelNames = map[string]string{
	"P":  "Primario",
	"PE": "Especial",
	"PP": "Primario Especial",
	"PS": "Secundario",
	"PT": "Terciario",
}

// libroPrimario is the official 48-column template. Multi-line titles are kept
// exactly as they appear in the template header cells.
var libroPrimario = MustNew(VersionLibroPrimario, "Libro Primario", []Column{
	{Name: "Colegio", Variants: []string{"Cod. Colegio", "Codigo Colegio"}, Field: FieldInstitutionCode, Type: TypeText, Required: true},
	{Name: "Legajo", Variants: []string{"Nro. Legajo", "N° Legajo"}, Field: FieldRegistryNumber, Type: TypeText, Required: true},
	{Name: "Apellido y Nombres", Variants: []string{"Apellido y Nombre", "Apellido, Nombres"}, Field: FieldFullName, Type: TypeText},
	{Name: "C.U.I.L.", Variants: []string{"CUIL", "C.U.I.L", "Nro. CUIL"}, Field: FieldFiscalID, Type: TypeText},
	{Name: "Cargo", Field: FieldRole, Type: TypeText},
	{Name: "Puntaje", Field: FieldScore, Type: TypeNumber},
	{Name: "Horas", Variants: []string{"Hs."}, Field: FieldHours, Type: TypeNumber},
	{Name: "Asist.", Variants: []string{"Asistencia", "Asist", "Dias Asistencia"}, Field: FieldAttendanceDays, Type: TypeNumber},
	{Name: "Años", Variants: []string{"Años Antig.", "Antig. Años"}, Field: FieldSeniorityYears, Type: TypeNumber},
	{Name: "Mes", Variants: []string{"Meses", "Antig. Meses"}, Field: FieldSeniorityMonths, Type: TypeNumber},
	{Name: "% Antig,", Variants: []string{"% Antig.", "% Antig", "% Antigüedad", "Porc. Antig."}, Field: FieldSeniorityPercent, Type: TypeNumber},
	{Name: "Años Ant.\nArraig", Variants: []string{"Años Ant. Arraigo"}, Field: FieldArraigoYears, Type: TypeNumber},
	{Name: "Porc. Ant.\nArraig", Variants: []string{"Porc. Ant. Arraigo", "% Ant. Arraig"}, Field: FieldArraigoPercent, Type: TypeNumber},
	{Name: "Hs.\npara\nArraig", Variants: []string{"Hs. para Arraigo", "Horas Arraigo"}, Field: FieldArraigoHours, Type: TypeNumber},
	{Name: "Asigación Clase", Variants: []string{"Asignación Clase", "Asig. Clase"}, Field: FieldClassAssignment, Type: TypeNumber},
	{Name: "Estado Docente", Variants: []string{"Situación Revista", "Sit. Revista"}, Field: FieldEmploymentStatus, Type: TypeText},
	{Name: "Antigue-dad", Variants: []string{"Antigüedad", "Antiguedad Monto"}, Field: FieldSeniorityAmount, Type: TypeNumber},
	{Name: "Zona", Variants: []string{"Item Zona"}, Field: FieldZoneBonus, Type: TypeNumber},
	{Name: "Presen-tismo", Variants: []string{"Presentismo"}, Field: FieldAttendanceBonus, Type: TypeNumber},
	{Name: "Bono Remunerat.", Variants: []string{"Bono Remunerativo"}, Field: FieldRemunerativeBonus, Type: TypeNumber},
	{Name: "Adicion. Direct.", Variants: []string{"Adicional Directivo"}, Field: FieldDirectorAllowance, Type: TypeNumber},
	{Name: "Garantia Remunerat.", Variants: []string{"Garantía Remunerativa"}, Field: FieldSalaryGuarantee, Type: TypeNumber},
	{Name: "Item Aula", Field: FieldClassroomItem, Type: TypeNumber},
	{Name: "Otros", Variants: []string{"Otros Remunerat.", "Otros Adicionales"}, Field: FieldOtherRemunerative, Type: TypeNumber},
	{Name: "Item Arraigo", Field: FieldArraigoItem, Type: TypeNumber},
	{Name: "Item especializac", Variants: []string{"Item Especialización"}, Field: FieldSpecializationItem, Type: TypeNumber},
	{Name: "Sueldo Bruto", Field: FieldGrossSalary, Type: TypeNumber},
	{Name: "Diferencias\nParitarias Remunerat.", Variants: []string{"Diferencias Paritarias"}, Field: FieldWageDifferences, Type: TypeNumber},
	{Name: "S.Bruto \nTotal", Variants: []string{"Sueldo Bruto Total"}, Field: FieldGrossTotal, Type: TypeNumber},
	{Name: "Salario Familiar", Field: FieldFamilyAllowance, Type: TypeNumber},
	{Name: "Ayuda Escolar", Field: FieldSchoolAid, Type: TypeNumber},
	{Name: "Ayuda \nUtiles", Variants: []string{"Ayuda Útiles"}, Field: FieldSuppliesAid, Type: TypeNumber},
	{Name: "No Remun.\nGtia. Nacional", Variants: []string{"Garantía Nacional"}, Field: FieldNationalGuarantee, Type: TypeNumber},
	{Name: "No Remun.\nGtia. Provincial", Variants: []string{"Garantía Provincial"}, Field: FieldProvincialGuarantee, Type: TypeNumber},
	{Name: "No Remun.\nDiferencias", Variants: []string{"Diferencias No Remunerat."}, Field: FieldNonRemunDifferences, Type: TypeNumber},
	{Name: "Bono No Remunerat.\nOtros", Variants: []string{"Bono No Remunerativo"}, Field: FieldNonRemunBonus, Type: TypeNumber},
	{Name: "Incentivo Docente", Variants: []string{"FONID"}, Field: FieldTeacherIncentive, Type: TypeNumber},
	{Name: "Conectividad", Field: FieldConnectivity, Type: TypeNumber},
	{Name: "Otros No Remunerat.", Variants: []string{"Otros No Remun."}, Field: FieldOtherNonRemunerative, Type: TypeNumber},
	{Name: "Total de \nHaberes", Variants: []string{"Total Haberes"}, Field: FieldTotalEarnings, Type: TypeNumber},
	{Name: "Jubilación", Variants: []string{"Aporte Jubilatorio"}, Field: FieldPension, Type: TypeNumber},
	{Name: "O.Social", Variants: []string{"Obra Social"}, Field: FieldHealthInsurance, Type: TypeNumber},
	{Name: "Sindicato", Field: FieldUnionDues, Type: TypeNumber},
	{Name: "Caja \nComplem.", Variants: []string{"Caja Complementaria"}, Field: FieldComplementaryFund, Type: TypeNumber},
	{Name: "Otros Descuentos", Field: FieldOtherDeductions, Type: TypeNumber},
	{Name: "Total \nDescuentos", Variants: []string{"Total Deducciones"}, Field: FieldTotalDeductions, Type: TypeNumber},
	{Name: "Neto", Variants: []string{"Sueldo Neto"}, Field: FieldNetPay, Type: TypeNumber},
	{Name: "Firmas", Variants: []string{"Firma"}, Field: FieldSignatures, Type: TypeText},
})

// liquidacion is the earlier single-sheet layout that still carries explicit
// identity-number and level columns.
var liquidacion = MustNew(VersionLiquidacion, "Liquidacion", []Column{
	{Name: "Colegio", Field: FieldInstitutionCode, Type: TypeText, Required: true},
	{Name: "Legajo", Field: FieldRegistryNumber, Type: TypeText, Required: true},
	{Name: "Apellido", Field: FieldLastName, Type: TypeText},
	{Name: "Nombres", Field: FieldFirstNames, Type: TypeText},
	{Name: "DNI", Variants: []string{"D.N.I.", "Documento"}, Field: FieldIdentityNumber, Type: TypeText, Required: true},
	{Name: "CUIL", Variants: []string{"C.U.I.L."}, Field: FieldFiscalID, Type: TypeText},
	{Name: "Fecha Nacimiento", Field: FieldBirthDate, Type: TypeDate},
	{Name: "Situacion Revista", Field: FieldEmploymentStatus, Type: TypeText},
	{Name: "Cargo", Field: FieldRole, Type: TypeText},
	{Name: "Puntaje", Field: FieldScore, Type: TypeNumber},
	{Name: "Horas", Field: FieldHours, Type: TypeNumber},
	{Name: "Asistencia", Field: FieldAttendanceDays, Type: TypeNumber},
	{Name: "Inasistencia", Field: FieldAbsenceDays, Type: TypeNumber},
	{Name: "Antiguedad", Field: FieldSeniorityYears, Type: TypeNumber},
	{Name: "Sueldo Basico", Field: FieldBaseSalary, Type: TypeNumber},
	{Name: "Antiguedad Monto", Field: FieldSeniorityAmount, Type: TypeNumber},
	{Name: "Presentismo", Field: FieldAttendanceBonus, Type: TypeNumber},
	{Name: "Zona", Field: FieldZoneBonus, Type: TypeNumber},
	{Name: "Item Arraigo", Field: FieldArraigoItem, Type: TypeNumber},
	{Name: "Adicional Directivo", Field: FieldDirectorAllowance, Type: TypeNumber},
	{Name: "Otros Adicionales", Field: FieldOtherRemunerative, Type: TypeNumber},
	{Name: "Total Remunerativo", Field: FieldTotalRemunerative, Type: TypeNumber},
	{Name: "Jubilacion", Field: FieldPension, Type: TypeNumber},
	{Name: "Obra Social", Field: FieldHealthInsurance, Type: TypeNumber},
	{Name: "Sindicato", Field: FieldUnionDues, Type: TypeNumber},
	{Name: "Otros Descuentos", Field: FieldOtherDeductions, Type: TypeNumber},
	{Name: "Total Deducciones", Field: FieldTotalDeductions, Type: TypeNumber},
	{Name: "Sueldo Neto", Field: FieldNetPay, Type: TypeNumber},
	{Name: "NIVEL", Variants: []string{"Nivel Educativo"}, Field: FieldEducationLevel, Type: TypeText, Required: true},
})

var registry = map[string]*Schema{
	VersionLibroPrimario: libroPrimario,
	VersionLiquidacion:   liquidacion,
}

// Default returns the layout of the current official template.
func Default() *Schema {
	return libroPrimario
}

// Lookup returns a registered layout by version.
func Lookup(version string) (*Schema, bool) {
	s, ok := registry[version]
	return s, ok
}

func Versions() []string {
	versions := make([]string, 0, len(registry))
	for v := range registry {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
