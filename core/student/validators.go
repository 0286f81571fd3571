package student

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	// custom validation tags & texts
	gradeTag  = "grade"
	gradeText = "please select a valid grade"

	subjectTag  = "subject"
	subjectText = "unknown subject"

	isoDateTag   = "isodate"
	isoDateText  = "date must be in YYYY-MM-DD format"
	isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	basicEmailTag  = "basicemail"
	basicEmailText = "please enter a valid email address"
	// intentionally loose: anything of the local@domain.tld shape passes
	basicEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegisterValidators registers the roster domain's custom tags on the app
// validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	core.RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)

	_ = validate.RegisterValidation(basicEmailTag, basicEmailValidation)
	core.RegisterCustomTranslation(validate, translator, basicEmailTag, basicEmailText)
}

// Custom Validators

// gradeValidation checks that the value is one of Grades.
func gradeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, grade := range Grades {
		if val == grade {
			return true
		}
	}
	return false
}

// subjectValidation checks that the value is one of Subjects.
func subjectValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, subj := range Subjects {
		if val == subj {
			return true
		}
	}
	return false
}

// isoDateValidation only checks the YYYY-MM-DD shape; dates are compared as
// strings throughout, never parsed.
func isoDateValidation(fl validator.FieldLevel) bool {
	return isoDateRegex.MatchString(fl.Field().String())
}

func basicEmailValidation(fl validator.FieldLevel) bool {
	return basicEmailRegex.MatchString(fl.Field().String())
}
