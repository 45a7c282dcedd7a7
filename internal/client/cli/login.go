package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/useradmin/internal/client/form"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/client/validation"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

const maxLoginAttempts = 3

var loginFields = []string{validation.FieldEmail, validation.FieldPassword}

// Login shows the login page. Invalid input never reaches the server; a
// rejected attempt keeps the entered values so the user can retry.
func (a *App) Login(ctx context.Context, _ []string) error {
	if s := a.session.Session(); s != nil {
		a.toastInfo(fmt.Sprintf("Already signed in as %s", s.Email))
		return nil
	}

	f := form.New(map[string]string{
		validation.FieldEmail:    "",
		validation.FieldPassword: "",
	}, validation.ValidateLoginForm)

	var err error
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		if err = a.promptText(f, validation.FieldEmail, "Email"); err != nil {
			return err
		}
		if err = a.promptPassword(f, validation.FieldPassword, "Password"); err != nil {
			return err
		}

		err = a.submitLogin(ctx, f)

		var authErr *services.AuthenticationError
		if err == nil || !(errors.Is(err, form.ErrInvalid) || errors.As(err, &authErr)) {
			return err
		}
	}

	a.toastError("Too many failed attempts")
	return err
}

func (a *App) submitLogin(ctx context.Context, f *form.Controller) error {
	defer a.startLoading()()

	var session *models.Session
	err := f.Submit(func(values map[string]string) error {
		var err error
		session, err = a.session.Login(ctx, values[validation.FieldEmail], values[validation.FieldPassword])
		return err
	})

	var authErr *services.AuthenticationError
	switch {
	case err == nil:
		a.toastSuccess(fmt.Sprintf("Signed in as %s (%s)", session.Name, session.Role))
	case errors.Is(err, form.ErrInvalid):
		a.printFormErrors(f, loginFields)
	case errors.As(err, &authErr):
		a.printf("  ! %s\n", authErr.Message)
		a.toastError(authErr.Message)
	default:
		a.toastError(errorMessage(err))
	}
	return err
}

// Logout always ends the local session; a failed remote call is reported
// after the fact.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.stopList()
	a.createForm = nil

	if err := a.session.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed", "error", err)
		a.toastInfo("Signed out locally; the server did not confirm the logout")
		return err
	}
	a.toastSuccess("Signed out")
	return nil
}

// Forget wipes the local database after confirmation. The server session is
// not revoked, so an issued token stays valid until it expires.
func (a *App) Forget(ctx context.Context, _ []string) error {
	ok, err := Confirm(a.reader, "Remove the saved session and all local data?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	a.stopList()
	a.createForm = nil

	if err := a.session.Forget(ctx); err != nil {
		a.toastError(errorMessage(err))
		return err
	}
	a.toastSuccess("Local data removed")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	s := a.session.Session()
	a.printf("%s <%s>\nRole: %s\n", s.Name, s.Email, s.Role)
	return nil
}

// promptText asks for one form field. An empty answer keeps the current
// value, so a retried form stays populated.
func (a *App) promptText(f *form.Controller, field, label string) error {
	prompt := label
	if cur := f.Value(field); cur != "" {
		prompt = fmt.Sprintf("%s [%s]", label, cur)
	}

	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if v != "" || f.Value(field) == "" {
		f.OnChange(field, v)
	}
	a.blur(f, field)
	return nil
}

func (a *App) promptPassword(f *form.Controller, field, label string) error {
	prompt := label
	if f.Value(field) != "" {
		prompt = label + " (Enter keeps the previous one)"
	}

	v, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if v != "" || f.Value(field) == "" {
		f.OnChange(field, v)
	}
	a.blur(f, field)
	return nil
}

func (a *App) blur(f *form.Controller, field string) {
	f.OnBlur(field)
	if msg := f.VisibleError(field); msg != "" {
		a.printf("  ! %s\n", msg)
	}
}

func (a *App) printFormErrors(f *form.Controller, fields []string) {
	for _, field := range fields {
		if msg := f.VisibleError(field); msg != "" {
			a.printf("  ! %s: %s\n", field, msg)
		}
	}
}
