package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/form"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/validation"
)

const maxFormAttempts = 3

var (
	createFields = []string{validation.FieldName, validation.FieldEmail, validation.FieldPassword, validation.FieldRole}
	editFields   = []string{validation.FieldName, validation.FieldEmail, validation.FieldRole, validation.FieldStatus}
)

func newCreateForm() *form.Controller {
	return form.New(map[string]string{
		validation.FieldName:     "",
		validation.FieldEmail:    "",
		validation.FieldPassword: "",
		validation.FieldRole:     models.RoleUser,
	}, validation.UserFormValidator(false))
}

// Create shows the new-user form. Values survive a failed save for the next
// attempt; a successful save resets the form.
func (a *App) Create(ctx context.Context, _ []string) error {
	if !a.requireAdmin() {
		return errAdminOnly
	}

	if a.createForm == nil {
		a.createForm = newCreateForm()
	}
	f := a.createForm
	err := a.runUserForm(f, createFields, func(values map[string]string) error {
		defer a.startLoading()()
		u, err := a.users.Create(ctx, values)
		if err != nil {
			return err
		}
		a.toastSuccess(fmt.Sprintf("User #%d created", u.ID))
		return nil
	})
	if err != nil {
		return err
	}

	f.Reset()
	a.refreshIfOpen(ctx)
	return nil
}

// Edit loads the user, fills the form with the stored values and saves the
// changes. The password is never asked for here.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.parseID(args, "edit <id>")
	if err != nil {
		return err
	}
	if !a.requireAdmin() {
		return errAdminOnly
	}

	f := form.New(map[string]string{
		validation.FieldName:   "",
		validation.FieldEmail:  "",
		validation.FieldRole:   "",
		validation.FieldStatus: "",
	}, validation.UserFormValidator(true))

	user, err := a.loadUser(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		a.toastError("User not found")
		return a.Users(ctx, nil)
	}
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	f.SetFieldValue(validation.FieldName, user.Name)
	f.SetFieldValue(validation.FieldEmail, user.Email)
	f.SetFieldValue(validation.FieldRole, user.Role)
	f.SetFieldValue(validation.FieldStatus, user.Status)

	err = a.runUserForm(f, editFields, func(values map[string]string) error {
		defer a.startLoading()()
		if _, err := a.users.Update(ctx, id, values); err != nil {
			return err
		}
		a.toastSuccess(fmt.Sprintf("User #%d updated", id))
		return nil
	})
	if err != nil {
		return err
	}

	a.refreshIfOpen(ctx)
	return nil
}

// runUserForm prompts for fields and submits. While the form is invalid only
// the fields with errors are asked again. Server errors end the form.
func (a *App) runUserForm(f *form.Controller, fields []string, save func(values map[string]string) error) error {
	pending := fields
	for attempt := 0; attempt < maxFormAttempts; attempt++ {
		for _, field := range pending {
			if err := a.promptUserField(f, field); err != nil {
				return err
			}
		}

		err := f.Submit(save)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, form.ErrInvalid):
			a.printFormErrors(f, fields)
			pending = nil
			for _, field := range fields {
				if f.Errors().Has(field) {
					pending = append(pending, field)
				}
			}
		default:
			a.toastError(errorMessage(err))
			return err
		}
	}

	a.toastError("Form still has errors; nothing was saved")
	return form.ErrInvalid
}

func (a *App) promptUserField(f *form.Controller, field string) error {
	switch field {
	case validation.FieldName:
		return a.promptText(f, field, "Full name")
	case validation.FieldEmail:
		return a.promptText(f, field, "Email")
	case validation.FieldPassword:
		return a.promptPassword(f, field, "Password")
	case validation.FieldRole:
		return a.promptChoice(f, field, "Role", models.RoleAdmin, models.RoleUser)
	case validation.FieldStatus:
		return a.promptChoice(f, field, "Status", models.StatusActive, models.StatusInactive)
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
}

// promptChoice asks for one of choices by name or 1-based number. An empty
// answer keeps the current value; anything else is asked again.
func (a *App) promptChoice(f *form.Controller, field, label string, choices ...string) error {
	prompt := label + " ("
	for i, c := range choices {
		if i > 0 {
			prompt += ", "
		}
		prompt += fmt.Sprintf("%d=%s", i+1, c)
	}
	prompt += ")"
	if cur := f.Value(field); cur != "" {
		prompt += fmt.Sprintf(" [%s]", cur)
	}

	for {
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if v == "" {
			a.blur(f, field)
			return nil
		}
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(choices) {
			v = choices[n-1]
		}
		for _, c := range choices {
			if v == c {
				f.OnChange(field, v)
				a.blur(f, field)
				return nil
			}
		}
		a.printf("  ! Choose one of the listed values\n")
	}
}
