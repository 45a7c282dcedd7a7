package cli

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/useradmin/internal/client/listquery"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
)

// fetchUsers adapts the user service to the list coordinator.
func (a *App) fetchUsers(ctx context.Context, q listquery.Query) ([]models.UserRecord, error) {
	res, err := a.users.List(ctx, services.UserQuery{
		Search: q.Search,
		Status: q.Status,
		Limit:  a.config.PageLimit,
		Page:   1,
	})
	if err != nil {
		return nil, err
	}
	return res.Users, nil
}

// listPage returns the coordinator, creating and starting it on first use.
func (a *App) listPage(ctx context.Context) (*listquery.Coordinator, error) {
	a.mu.Lock()
	if a.list != nil {
		list := a.list
		a.mu.Unlock()
		return list, nil
	}
	list := listquery.New(a.fetchUsers, a.clock, a.config.SearchDebounce, a.log)
	list.Subscribe(a.renderSnapshot)
	a.list = list
	a.mu.Unlock()

	return list, list.Start(ctx)
}

func (a *App) stopList() {
	a.mu.Lock()
	list := a.list
	a.list = nil
	a.busy = false
	a.mu.Unlock()

	if list != nil {
		list.Stop()
	}
}

// renderSnapshot prints the loading markers and, once a fetch settles, the
// table. Snapshots that only carry a new search input are not rendered.
func (a *App) renderSnapshot(s listquery.Snapshot) {
	a.mu.Lock()
	wasBusy := a.busy
	a.busy = s.Loading || s.Refreshing
	a.mu.Unlock()

	switch {
	case s.Loading:
		a.printf("Loading users...\n")
	case s.Refreshing:
		if !wasBusy {
			a.printf("(refreshing)\n")
		}
	case wasBusy:
		a.renderTable(s)
	}
}

func (a *App) renderTable(s listquery.Snapshot) {
	var buf bytes.Buffer

	filter := s.Query.Status
	if filter == "" {
		filter = services.StatusAll
	}
	fmt.Fprintf(&buf, "Users (search: %q, status: %s)\n", s.Query.Search, filter)

	if s.Err != nil {
		fmt.Fprintf(&buf, "Error: %s\n", errorMessage(s.Err))
	}

	if len(s.Users) == 0 {
		buf.WriteString("No users found.\n")
		a.printf("%s", buf.String())
		return
	}

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tCREATED\tACTIONS")
	for _, u := range s.Users {
		actions := make([]string, 0, 3)
		for _, act := range u.Actions() {
			actions = append(actions, string(act))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Email, u.Role, u.Status, u.CreatedAt, strings.Join(actions, ", "))
	}
	_ = tw.Flush()

	a.printf("%s", buf.String())
}

// Users opens the list page, or re-renders it when already open.
func (a *App) Users(ctx context.Context, _ []string) error {
	a.mu.Lock()
	list := a.list
	a.mu.Unlock()

	if list == nil {
		_, err := a.listPage(ctx)
		if err != nil {
			a.toastError(errorMessage(err))
		}
		return err
	}

	a.renderTable(list.Snapshot())
	return nil
}

// Search sets the search box text. The fetch runs once typing has paused.
func (a *App) Search(ctx context.Context, args []string) error {
	list, err := a.listPage(ctx)
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	text := strings.Join(args, " ")
	list.SetSearch(text)
	if text == "" {
		a.printf("Clearing search...\n")
	} else {
		a.printf("Searching for %q...\n", text)
	}
	return nil
}

// Filter sets the status filter and refetches immediately.
func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: filter <active|inactive|all>\n")
		return errUsage
	}

	var status string
	switch args[0] {
	case models.StatusActive, models.StatusInactive:
		status = args[0]
	case services.StatusAll:
	default:
		a.printf("Unknown status: %s\n", args[0])
		return errUsage
	}

	list, err := a.listPage(ctx)
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}
	if err := list.SetStatus(ctx, status); err != nil {
		a.toastError(errorMessage(err))
		return err
	}
	return nil
}

// Refresh refetches with the current search and filter.
func (a *App) Refresh(ctx context.Context, _ []string) error {
	a.mu.Lock()
	list := a.list
	a.mu.Unlock()

	if list == nil {
		return a.Users(ctx, nil)
	}
	if err := list.Refresh(ctx); err != nil {
		a.toastError(errorMessage(err))
		return err
	}
	return nil
}

// refreshIfOpen keeps an open list page current after a change made
// elsewhere, such as the user form.
func (a *App) refreshIfOpen(ctx context.Context) {
	a.mu.Lock()
	list := a.list
	a.mu.Unlock()

	if list == nil {
		return
	}
	if err := list.Refresh(ctx); err != nil {
		a.toastError(errorMessage(err))
	}
}

func (a *App) Deactivate(ctx context.Context, args []string) error {
	return a.rowAction(ctx, args, models.ActionDeactivate)
}

func (a *App) Reactivate(ctx context.Context, args []string) error {
	return a.rowAction(ctx, args, models.ActionReactivate)
}

// rowAction confirms and runs a status change on one row. The list is
// refetched only after the server accepted the change.
func (a *App) rowAction(ctx context.Context, args []string, action models.RowAction) error {
	verb := strings.ToLower(string(action))
	id, err := a.parseID(args, verb+" <id>")
	if err != nil {
		return err
	}
	if !a.requireAdmin() {
		return errAdminOnly
	}

	list, err := a.listPage(ctx)
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	user, err := a.lookupRow(ctx, list, id)
	if err != nil {
		return err
	}
	if !slices.Contains(user.Actions(), action) {
		a.toastInfo(fmt.Sprintf("%s is already %s", user.Name, user.Status))
		return nil
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("%s %s <%s>?", action, user.Name, user.Email), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Cancelled\n")
		return nil
	}

	err = list.Apply(ctx, func(ctx context.Context) error {
		if action == models.ActionDeactivate {
			return a.users.Deactivate(ctx, id)
		}
		_, err := a.users.Reactivate(ctx, id)
		return err
	})
	if err != nil {
		a.toastError(errorMessage(err))
		return err
	}

	if action == models.ActionDeactivate {
		a.toastSuccess(fmt.Sprintf("%s deactivated", user.Name))
	} else {
		a.toastSuccess(fmt.Sprintf("%s reactivated", user.Name))
	}
	return nil
}

// lookupRow finds id among the listed rows, falling back to the API for
// users outside the current page.
func (a *App) lookupRow(ctx context.Context, list *listquery.Coordinator, id int64) (models.UserRecord, error) {
	for _, u := range list.Snapshot().Users {
		if u.ID == id {
			return u, nil
		}
	}

	defer a.startLoading()()
	u, err := a.users.Get(ctx, id)
	if err != nil {
		a.toastError(errorMessage(err))
		return models.UserRecord{}, err
	}
	return *u, nil
}
