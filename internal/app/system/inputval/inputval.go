// Package inputval validates admin and visitor input using waffle/pantry/validate.
//
// Entity checks (Project, Skill, ...) copy the fields that carry rules into a
// tagged struct and validate that, so the domain models stay free of
// validation tags.
package inputval

import (
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result is the outcome of one check. A zero Result means the input passed.
type Result struct {
	Errors []FieldError
}

// FieldError is one failed rule. Field is the JSON name; Message is ready
// to show to the person who filled in the form.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	var b strings.Builder
	for i, e := range r.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Message)
	}
	return b.String()
}

// Fields returns the first message per JSON field, the shape
// jsonutil.ValidationError sends.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

// rule is a custom string rule registered with the validator, with the
// message shown when it fails.
type rule struct {
	name  string
	check func(string) bool
	msg   func(label string) string
}

var rules = []rule{
	{"linkref", IsLinkRef, func(l string) string {
		return l + " must be a URL starting with http:// or https://, or a path starting with /."
	}},
	{"optemail", func(s string) bool { return strings.TrimSpace(s) == "" || IsValidEmail(s) }, func(string) string {
		return "A valid email address is required."
	}},
	{"hexcolor", IsHexColor, func(l string) string {
		return l + " must be a hex colour such as #6366f1."
	}},
	{"theme", func(s string) bool {
		return s == string(models.ThemeDark) || s == string(models.ThemeLight)
	}, func(l string) string { return l + " must be dark or light." }},
	{"exptype", func(s string) bool { return models.ExperienceType(s).Valid() }, func(l string) string {
		return l + " must be one of: work, internship, freelance."
	}},
}

var (
	validator     *validate.Validator
	validatorOnce sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New(validate.WithStopOnFirstError())
		for _, r := range rules {
			check := r.check
			validator.RegisterRuleFunc(r.name, func(value any) bool {
				s, ok := value.(string)
				return ok && check(s)
			}, r.name)
		}
	})
	return validator
}

// Validate runs the `validate` tags on struct s. Messages use the `label`
// tag when present and the JSON field name otherwise. Besides the built-in
// rules (required, email, oneof, min, max) s may use linkref, optemail,
// hexcolor, theme and exptype.
func Validate(s any) *Result {
	res := &Result{}
	errs, ok := getValidator().Struct(s).(validate.Errors)
	if !ok {
		return res
	}
	labels := labelsOf(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   e.Field,
			Label:   label,
			Message: message(label, e.Rule, e.Param),
		})
	}
	return res
}

// labelsOf maps JSON field names of s to their `label` tags.
func labelsOf(s any) map[string]string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	labels := make(map[string]string)
	if t.Kind() != reflect.Struct {
		return labels
	}
	for _, f := range reflect.VisibleFields(t) {
		label := f.Tag.Get("label")
		if label == "" {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			name = f.Name
		}
		labels[name] = label
	}
	return labels
}

func message(label, ruleName, param string) string {
	for _, r := range rules {
		if r.name == ruleName {
			return r.msg(label)
		}
	}
	switch ruleName {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	}
	return label + " is invalid."
}

// IsValidEmail reports whether s is a bare address. ParseAddress also
// accepts "Name <addr>", which is rejected here.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}

// IsLinkRef accepts the values allowed in image and link fields: empty, an
// absolute http(s) URL, or a site-relative path such as /images/a.png.
func IsLinkRef(s string) bool {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return true
	case strings.HasPrefix(s, "//"):
		return false
	case strings.HasPrefix(s, "/"):
		return true
	}
	return IsValidHTTPURL(s)
}

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is #rgb or #rrggbb.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}
