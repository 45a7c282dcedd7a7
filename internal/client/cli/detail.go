package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

// Show renders one user. A missing user sends the console back to the list.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.parseID(args, "show <id>")
	if err != nil {
		return err
	}

	user, err := a.loadUser(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		a.toastError("User not found")
		return a.Users(ctx, nil)
	}
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	a.printf("User #%d\n", user.ID)
	a.printf("  Name:    %s\n", user.Name)
	a.printf("  Email:   %s\n", user.Email)
	a.printf("  Role:    %s\n", user.Role)
	a.printf("  Status:  %s\n", user.Status)
	a.printf("  Created: %s\n", user.CreatedAt)

	if a.isAdmin() {
		toggle := "deactivate"
		if !user.IsActive() {
			toggle = "reactivate"
		}
		a.printf("Actions: edit %[1]d, regen %[1]d, %[2]s %[1]d\n", user.ID, toggle)
	}
	return nil
}

func (a *App) loadUser(ctx context.Context, id int64) (*models.UserRecord, error) {
	defer a.startLoading()()
	return a.users.Get(ctx, id)
}

// Regenerate replaces a user's password with a generated one and shows it
// once.
func (a *App) Regenerate(ctx context.Context, args []string) error {
	id, err := a.parseID(args, "regen <id>")
	if err != nil {
		return err
	}
	if !a.requireAdmin() {
		return errAdminOnly
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Generate a new password for user #%d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	res, err := a.regenerate(ctx, id)
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	a.toastSuccess(fmt.Sprintf("New password for %s <%s>: %s", res.FullName, res.Email, res.NewPassword))
	a.printf("It will not be shown again.\n")
	return nil
}

func (a *App) regenerate(ctx context.Context, id int64) (*client.RegeneratedPassword, error) {
	defer a.startLoading()()
	return a.users.RegeneratePassword(ctx, id)
}

// Stats prints account totals across all pages.
func (a *App) Stats(ctx context.Context, _ []string) error {
	defer a.startLoading()()

	st, err := a.users.Stats(ctx)
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	a.printf("Total: %d\nActive: %d\nInactive: %d\nAdmins: %d\n", st.Total, st.Active, st.Inactive, st.Admins)
	return nil
}
