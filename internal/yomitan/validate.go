package yomitan

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/youyoumu/hanayomi/internal/domain"
)

var (
	langCodePattern = regexp.MustCompile(`^[a-z]{2,3}$`)
	hrefPattern     = regexp.MustCompile(`^(https?:|\?)`)
)

type structValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var defaultValidator = sync.OnceValue(func() *structValidator {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	return v
})

func newValidator() (*structValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := []struct {
		tag     string
		pattern *regexp.Regexp
		message string
	}{
		{"langcode", langCodePattern, "{0} must be a 2 or 3 letter lowercase language code"},
		{"href", hrefPattern, "{0} must start with http:, https: or ?"},
	}
	for _, c := range custom {
		pattern := c.pattern
		if err := validate.RegisterValidation(c.tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		}); err != nil {
			return nil, fmt.Errorf("failed to register %s validation: %w", c.tag, err)
		}
		tag, message := c.tag, c.message
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		}); err != nil {
			return nil, fmt.Errorf("failed to register %s translation: %w", tag, err)
		}
	}

	return &structValidator{validate: validate, trans: trans}, nil
}

// collect validates s and appends every violation under path.
func (v *structValidator) collect(path string, s any, errs *[]domain.FieldError) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		*errs = append(*errs, domain.FieldError{Field: path, Message: err.Error()})
		return
	}
	for _, fe := range ves {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		*errs = append(*errs, domain.FieldError{Field: joinPath(path, field), Message: fe.Translate(v.trans)})
	}
}

func validateStruct(path string, s any) error {
	var errs []domain.FieldError
	defaultValidator().collect(path, s, &errs)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Validate checks the constraints of every definition of the row, walking
// structured content recursively. It returns a *domain.ValidationError
// listing every violation, or nil.
func (r TermBankRow) Validate() error {
	var errs []domain.FieldError
	for i, d := range r.Definitions {
		validateDefinition(fmt.Sprintf("definitions[%d]", i), d, &errs)
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ValidateContent checks the constraints of a structured content tree.
func ValidateContent(c Content) error {
	var errs []domain.FieldError
	validateContent("", c, 0, &errs)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateDefinition(path string, d Definition, errs *[]domain.FieldError) {
	switch d.Kind {
	case DefinitionPlain:
	case DefinitionDeinflection:
		if d.Deinflection == nil {
			*errs = append(*errs, domain.FieldError{Field: path, Message: "deinflection is empty"})
		}
	case DefinitionDetailed:
		dd := d.Detailed
		if dd == nil {
			*errs = append(*errs, domain.FieldError{Field: path, Message: "detailed definition is empty"})
			return
		}
		switch dd.Type {
		case DetailedText:
		case DetailedImage:
			if dd.Image == nil {
				*errs = append(*errs, domain.FieldError{Field: path, Message: "image definition is empty"})
				return
			}
			defaultValidator().collect(path, dd.Image, errs)
		case DetailedStructuredContent:
			if dd.Content == nil {
				*errs = append(*errs, domain.FieldError{Field: joinPath(path, "content"), Message: "content is required"})
				return
			}
			validateContent(joinPath(path, "content"), *dd.Content, 0, errs)
		default:
			*errs = append(*errs, domain.FieldError{Field: joinPath(path, "type"), Message: fmt.Sprintf("unknown type %q", dd.Type)})
		}
	default:
		*errs = append(*errs, domain.FieldError{Field: path, Message: fmt.Sprintf("unknown definition kind %d", d.Kind)})
	}
}

func validateContent(path string, c Content, depth int, errs *[]domain.FieldError) {
	if depth > MaxContentDepth {
		*errs = append(*errs, domain.FieldError{Field: path, Message: fmt.Sprintf("nested deeper than %d levels", MaxContentDepth)})
		return
	}

	switch c.Kind {
	case ContentText:
	case ContentArray:
		for i, item := range c.Items {
			validateContent(fmt.Sprintf("%s[%d]", path, i), item, depth+1, errs)
		}
	case ContentNode:
		if c.Node == nil {
			*errs = append(*errs, domain.FieldError{Field: path, Message: "node is empty"})
			return
		}
		validateNode(path, *c.Node, depth, errs)
	default:
		*errs = append(*errs, domain.FieldError{Field: path, Message: fmt.Sprintf("unknown content kind %d", c.Kind)})
	}
}

func validateNode(path string, n Node, depth int, errs *[]domain.FieldError) {
	if !n.Tag.Known() {
		*errs = append(*errs, domain.FieldError{Field: joinPath(path, "tag"), Message: fmt.Sprintf("unknown element tag %q", n.Tag)})
		return
	}
	el := n.element()
	if reflect.ValueOf(el).IsNil() {
		*errs = append(*errs, domain.FieldError{Field: joinPath(path, "tag"), Message: fmt.Sprintf("element %q has no attributes", n.Tag)})
		return
	}
	defaultValidator().collect(path, el, errs)

	if child := n.Children(); child != nil {
		validateContent(joinPath(path, "content"), *child, depth+1, errs)
	}
}
