package validator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks `validate` struct tags.
type Validator interface {
	Validate(interface{}) error
}

type tagValidator struct {
	v *validator.Validate
}

func New() Validator {
	return &tagValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns nil or an error naming every offending field and rule.
func (t *tagValidator) Validate(obj interface{}) error {
	err := t.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(fields, ", "))
}
