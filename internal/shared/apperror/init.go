package apperror

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Rule is a custom binding tag. Err, when set, is what a failing field
// maps to instead of the generic "is invalid" error.
type Rule struct {
	Tag   string
	Check func(value string) bool
	Err   *AppError
}

var (
	rulesMu  sync.RWMutex
	ruleErrs = map[string]*AppError{}
)

// Init reports json field names in binding errors and registers rules on
// gin's validator. A rule with an empty Tag or nil Check is ignored.
func Init(rules ...Rule) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)

	rulesMu.Lock()
	defer rulesMu.Unlock()
	for _, r := range rules {
		if r.Tag == "" || r.Check == nil {
			continue
		}
		check := r.Check
		_ = v.RegisterValidation(r.Tag, func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			return check(fl.Field().String())
		})
		if r.Err != nil {
			ruleErrs[r.Tag] = r.Err
		}
	}
}

func fieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

func ruleError(tag string) (*AppError, bool) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	err, ok := ruleErrs[tag]
	return err, ok
}
