// Package form implements the form state controller used by every console
// form: current values, touched flags and the errors derived from them.
//
// Errors are never patched field by field. Each value change re-runs the
// validator over the whole value set, so a change to one field can add or
// clear errors on any other field.
package form

import (
	"errors"
	"maps"

	"github.com/dmitrijs2005/useradmin/internal/client/validation"
)

// ErrInvalid is returned by Submit while the form has validation errors.
var ErrInvalid = errors.New("form has validation errors")

// Validator computes the full error set for a value set.
type Validator func(values map[string]string) validation.Errors

type Controller struct {
	initial  map[string]string
	values   map[string]string
	errors   validation.Errors
	touched  map[string]bool
	validate Validator
}

// New creates a controller over a private copy of initial. A nil validator
// means the form is always valid.
func New(initial map[string]string, validate Validator) *Controller {
	c := &Controller{
		initial:  maps.Clone(initial),
		validate: validate,
	}
	if c.initial == nil {
		c.initial = map[string]string{}
	}
	c.Reset()
	return c
}

// Values returns a copy of the current values.
func (c *Controller) Values() map[string]string {
	return maps.Clone(c.values)
}

func (c *Controller) Value(field string) string {
	return c.values[field]
}

// Errors returns a copy of the current errors.
func (c *Controller) Errors() validation.Errors {
	return maps.Clone(c.errors)
}

func (c *Controller) Touched() map[string]bool {
	return maps.Clone(c.touched)
}

func (c *Controller) IsTouched(field string) bool {
	return c.touched[field]
}

func (c *Controller) IsValid() bool {
	return len(c.errors) == 0
}

// OnChange records a user edit of one field and revalidates the whole form.
func (c *Controller) OnChange(field, value string) {
	c.values[field] = value
	c.revalidate()
}

// SetFieldValue has the same effect as OnChange; it exists for programmatic
// population such as hydrating an edit form from a fetched record.
func (c *Controller) SetFieldValue(field, value string) {
	c.OnChange(field, value)
}

// OnBlur marks field as touched. Other fields keep their flags.
func (c *Controller) OnBlur(field string) {
	c.touched[field] = true
}

// VisibleError returns the field's message only once the field was touched.
func (c *Controller) VisibleError(field string) string {
	if !c.touched[field] {
		return ""
	}
	return c.errors[field]
}

// Reset restores the initial snapshot, clears touched flags and revalidates,
// so an empty required field keeps the form invalid.
func (c *Controller) Reset() {
	c.values = maps.Clone(c.initial)
	c.errors = validation.Errors{}
	c.touched = map[string]bool{}
	c.revalidate()
}

// Submit calls fn with the current values when the form is valid. Otherwise
// every field with an error is marked touched and ErrInvalid is returned.
func (c *Controller) Submit(fn func(values map[string]string) error) error {
	if !c.IsValid() {
		for field := range c.errors {
			c.touched[field] = true
		}
		return ErrInvalid
	}
	return fn(c.Values())
}

func (c *Controller) revalidate() {
	if c.validate == nil {
		c.errors = validation.Errors{}
		return
	}
	errs := c.validate(c.values)
	if errs == nil {
		errs = validation.Errors{}
	}
	c.errors = errs
}
