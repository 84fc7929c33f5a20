// Package validation checks product input arriving from the JSON API and the HTML form
// and reports failures keyed by field name.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"product-catalog/internal/model"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Has reports whether field has at least one message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Message summarises the errors as the first message followed by a count of the rest,
// e.g. "The name field is required. (and 1 more error)".
func (e Errors) Message() string {
	fields := make([]string, 0, len(e))
	total := 0
	for field, msgs := range e {
		if len(msgs) == 0 {
			continue
		}
		fields = append(fields, field)
		total += len(msgs)
	}
	if total == 0 {
		return ""
	}
	sort.Strings(fields)

	first := e[fields[0]][0]
	switch remaining := total - 1; remaining {
	case 0:
		return first
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, remaining)
	}
}

func (e Errors) Error() string {
	return e.Message()
}

// apiProduct holds raw JSON values; name must be a string and price an integer.
type apiProduct struct {
	Name  interface{} `json:"name" validate:"required,string"`
	Price interface{} `json:"price" validate:"required,integer"`
}

// formProduct holds raw form values. Form values are always text, so name has no type rule.
type formProduct struct {
	Name  interface{} `json:"name" validate:"required"`
	Price interface{} `json:"price" validate:"required,integer"`
}

// Validator validates product input.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the product rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("string", isString)
	_ = v.RegisterValidation("integer", isInteger)

	return &Validator{validate: v}
}

// ProductFromJSON validates a decoded JSON object. Keys other than name and price are ignored.
func (v *Validator) ProductFromJSON(body map[string]interface{}) (model.NewProduct, Errors) {
	req := apiProduct{
		Name:  normalise(body["name"]),
		Price: normalise(body["price"]),
	}

	if errs := v.check(req); errs != nil {
		return model.NewProduct{}, errs
	}

	price, _ := toInt64(req.Price)
	return model.NewProduct{Name: req.Name.(string), Price: price}, nil
}

// ProductFromForm validates submitted form values.
func (v *Validator) ProductFromForm(values url.Values) (model.NewProduct, Errors) {
	req := formProduct{
		Name:  formValue(values, "name"),
		Price: formValue(values, "price"),
	}

	if errs := v.check(req); errs != nil {
		return model.NewProduct{}, errs
	}

	price, _ := toInt64(req.Price)
	return model.NewProduct{Name: fmt.Sprint(req.Name), Price: price}, nil
}

func (v *Validator) check(s interface{}) Errors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"_": {err.Error()}}
	}

	errs := Errors{}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "string":
		return fmt.Sprintf("The %s field must be a string.", fe.Field())
	case "integer":
		return fmt.Sprintf("The %s field must be an integer.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

// normalise trims strings and turns blank strings into nil, so they count as missing.
func normalise(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func formValue(values url.Values, key string) interface{} {
	if _, ok := values[key]; !ok {
		return nil
	}
	return normalise(values.Get(key))
}

func isString(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String && fl.Field().Type() != reflect.TypeOf(json.Number(""))
}

func isInteger(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() || !field.CanInterface() {
		return false
	}
	_, ok := toInt64(field.Interface())
	return ok
}

// toInt64 accepts JSON integers and integer strings. Fractions, exponents, booleans and
// values outside the int64 range are rejected.
func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v < math.MinInt64 || v >= math.MaxInt64 || v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}
