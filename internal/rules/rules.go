// Package rules holds the per-cell business rules applied to payroll rows.
// Every rule is a pure function of the raw cell value.
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

type Result struct {
	Valid   bool
	Message string
}

// Rule validates one raw cell value.
type Rule func(value any) Result

var (
	digitsRegex          = regexp.MustCompile(`^\d+$`)
	registryRegex        = regexp.MustCompile(`^\d{1,3}$`)
	fiscalIDRegex        = regexp.MustCompile(`^\d{11}$`)
	institutionCodeRegex = regexp.MustCompile(`^(` + strings.Join(schema.ValidLevels, "|") + `)-\d{1,4}$`)

	fiscalIDMultipliers = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
)

var passed = Result{Valid: true}

func fail(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Text renders a raw cell value as the string a user would see in the cell.
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Text(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isBlank(value any) bool {
	return strings.TrimSpace(Text(value)) == ""
}

// NormalizeIdentity strips punctuation and spaces, e.g. thousands-separator dots.
func NormalizeIdentity(value any) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, Text(value))
}

// NormalizeFiscalID strips hyphens and whitespace.
func NormalizeFiscalID(value any) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, Text(value))
}

// CheckDigit computes the mod-11 verification digit for the first ten digits of a
// fiscal ID. It returns false when first10 is not exactly ten digits.
func CheckDigit(first10 string) (int, bool) {
	if len(first10) != 10 || !digitsRegex.MatchString(first10) {
		return 0, false
	}

	sum := 0
	for i, m := range fiscalIDMultipliers {
		sum += int(first10[i]-'0') * m
	}

	switch rem := sum % 11; rem {
	case 0:
		return 0, true
	case 1:
		return 9, true
	default:
		return 11 - rem, true
	}
}

// IdentityNumber validates a national identity number: required, 7 to 8 digits.
func IdentityNumber(value any) Result {
	if isBlank(value) {
		return fail("Invalid identity number: the field is required and cannot be empty.")
	}

	raw := Text(value)
	digits := NormalizeIdentity(raw)
	if !digitsRegex.MatchString(digits) {
		return fail("Invalid identity number: it must contain digits only. Received %q.", raw)
	}
	if len(digits) < 7 || len(digits) > 8 {
		return fail("Invalid identity number: it must have 7 or 8 digits. Received %q (%d digits).", raw, len(digits))
	}
	return passed
}

// RegistryNumber validates the school's internal teacher number: required, 1 to 3 digits.
func RegistryNumber(value any) Result {
	if isBlank(value) {
		return fail("Invalid registry number: the field is required and cannot be empty.")
	}

	raw := Text(value)
	if !registryRegex.MatchString(strings.TrimSpace(raw)) {
		return fail("Invalid registry number: it must be 1 to 3 digits. Received %q.", raw)
	}
	return passed
}

// FiscalID validates an optional 11-digit fiscal ID and its check digit.
func FiscalID(value any) Result {
	if isBlank(value) {
		return passed
	}

	raw := Text(value)
	id := NormalizeFiscalID(raw)
	if !fiscalIDRegex.MatchString(id) {
		return fail("Invalid fiscal ID: it must have exactly 11 digits. Received %q.", raw)
	}

	want, _ := CheckDigit(id[:10])
	if int(id[10]-'0') != want {
		return fail("Invalid fiscal ID: the check digit is incorrect. Received %q.", raw)
	}
	return passed
}

// InstitutionCode validates a LEVEL-NUMBER school code such as P-001 or PS-102.
func InstitutionCode(value any) Result {
	if isBlank(value) {
		return fail("Invalid institution code: the field is required.")
	}

	raw := Text(value)
	if !institutionCodeRegex.MatchString(strings.ToUpper(strings.TrimSpace(raw))) {
		return fail("Invalid institution code: use the LEVEL-NUMBER format (e.g. P-001, PS-102). Received %q.", raw)
	}
	return passed
}

// EducationLevel validates a level code against schema.ValidLevels.
func EducationLevel(value any) Result {
	if isBlank(value) {
		return fail("Invalid education level: the field is required.")
	}

	raw := Text(value)
	level := strings.ToUpper(strings.TrimSpace(raw))
	for _, valid := range schema.ValidLevels {
		if level == valid {
			return passed
		}
	}
	return fail("Invalid education level: it must be one of %s. Received %q.", strings.Join(schema.ValidLevels, ", "), raw)
}

// Checked lists, in evaluation order, the fields that carry a cell rule.
var Checked = []schema.Field{
	schema.FieldIdentityNumber,
	schema.FieldRegistryNumber,
	schema.FieldFiscalID,
	schema.FieldInstitutionCode,
	schema.FieldEducationLevel,
}

var byField = map[schema.Field]Rule{
	schema.FieldIdentityNumber:  IdentityNumber,
	schema.FieldRegistryNumber:  RegistryNumber,
	schema.FieldFiscalID:        FiscalID,
	schema.FieldInstitutionCode: InstitutionCode,
	schema.FieldEducationLevel:  EducationLevel,
}

// ForField returns the rule bound to f, if any.
func ForField(f schema.Field) (Rule, bool) {
	r, ok := byField[f]
	return r, ok
}
