package intake

import (
	stderrors "errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags
	periodTag      = "period"
	payrollTypeTag = "payroll_type"
	notBlankTag    = "notblank"

	periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Report JSON names instead of Go field names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(periodTag, periodValidation)
	_ = Validate.RegisterValidation(payrollTypeTag, payrollTypeValidation)
	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)

	registerCustomValidationsTranslations(periodTag, payrollTypeTag, notBlankTag)
}

// The default translations are already registered, so the register func is a noop.
func registerCustomValidationsTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustomValidationErrs)
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case periodTag:
		return fe.Field() + " must be a period in YYYY-MM format"
	case payrollTypeTag:
		return fe.Field() + " is not a known payroll type"
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return ""
	}
}

func periodValidation(fl validator.FieldLevel) bool {
	return periodRegex.MatchString(fl.Field().String())
}

func payrollTypeValidation(fl validator.FieldLevel) bool {
	return model.PayrollType(fl.Field().String()).Valid()
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validate checks v and converts the first failure into an errors.ValidationError.
func validate(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return errors.ValidationError{
		Field:   fe.Field(),
		Value:   fe.Value(),
		Message: fe.Translate(Translator),
	}
}
