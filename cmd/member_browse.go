package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/grid"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/log"
)

const (
	actionNext     = "Next page"
	actionPrev     = "Previous page"
	actionPage     = "Go to page"
	actionFilter   = "Filter"
	actionPageSize = "Page size"
	actionToggle   = "Toggle status"
	actionEmail    = "Edit email"
	actionMobile   = "Edit mobile"
	actionRefresh  = "Refresh"
	actionQuit     = "Quit"
)

var browseGroup string

var memberBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through members interactively",
	Long: `Page through members, filter them and change their status, email or mobile
number in place. A failed change leaves the row as it was and is reported.`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		filters := map[string]string{}
		if browseGroup != "" {
			filters["group_id"] = browseGroup
		}
		ctrl := grid.New(s.svc, grid.Options{
			PageSize: s.conf.Grid.PageSize,
			Filters:  filters,
			OnNotice: func(n grid.Notice) { log.Error("%s", n) },
		})
		defer ctrl.Close()

		if err := browse(ctx, ctrl); err != nil {
			log.Fatal("%v", err)
		}
	},
}

// browse runs the prompt loop until the user quits or ctx is cancelled. Failures of single
// actions are reported through the controller's notices and do not end the loop.
func browse(ctx context.Context, ctrl *grid.Controller) error {
	if err := ctrl.Query(ctx); err != nil && !errors.Is(err, errors.ErrStaleResponse) {
		log.Error("Failed to load members: %v", err)
	}

	for ctx.Err() == nil {
		fmt.Println(grid.FormatPage(ctrl.Snapshot()))

		var action string
		if err := askOne(&survey.Select{Message: "Action:", Options: browseActions(ctrl), PageSize: 10}, &action); err != nil {
			return nil
		}
		if action == actionQuit {
			return nil
		}
		if err := browseStep(ctx, ctrl, action); err != nil {
			log.Debug("%s: %v", action, err)
		}
	}
	return nil
}

// browseActions lists what makes sense on the current page
func browseActions(ctrl *grid.Controller) []string {
	snap := ctrl.Snapshot()
	actions := []string{}
	if snap.Query.Page < ctrl.Pages() {
		actions = append(actions, actionNext)
	}
	if snap.Query.Page > 1 {
		actions = append(actions, actionPrev)
	}
	if ctrl.Pages() > 1 {
		actions = append(actions, actionPage)
	}
	actions = append(actions, actionFilter, actionPageSize)
	if len(snap.Rows) > 0 {
		actions = append(actions, actionToggle, actionEmail, actionMobile)
	}
	return append(actions, actionRefresh, actionQuit)
}

func browseStep(ctx context.Context, ctrl *grid.Controller, action string) error {
	page := ctrl.Snapshot().Query.Page
	switch action {
	case actionNext:
		return ctrl.SetPage(ctx, page+1)
	case actionPrev:
		return ctrl.SetPage(ctx, page-1)
	case actionPage:
		n, err := askNumber(fmt.Sprintf("Page (1-%d):", ctrl.Pages()), page)
		if err != nil {
			return err
		}
		return ctrl.SetPage(ctx, n)
	case actionPageSize:
		n, err := askNumber("Rows per page:", ctrl.Snapshot().Query.PageSize)
		if err != nil {
			return err
		}
		return ctrl.SetPageSize(ctx, n)
	case actionFilter:
		filters, err := askFilters(ctrl.Snapshot().Query.Filters)
		if err != nil {
			return err
		}
		return ctrl.SetFilters(ctx, filters)
	case actionRefresh:
		return ctrl.Refresh(ctx)
	}

	id, err := pickRow(ctrl)
	if err != nil {
		return err
	}
	switch action {
	case actionToggle:
		err = ctrl.ToggleStatus(ctx, id)
	case actionEmail:
		var email string
		if err = askOne(&survey.Input{Message: "New email:"}, &email); err != nil {
			return err
		}
		err = ctrl.EditEmail(ctx, id, email)
	case actionMobile:
		var mobile string
		if err = askOne(&survey.Input{Message: "New mobile (empty to clear):"}, &mobile); err != nil {
			return err
		}
		err = ctrl.EditMobile(ctx, id, mobile)
	default:
		return errors.Wrapf(errors.ErrInvalidOption, "unknown action %q", action)
	}
	if err == nil {
		if m, ok := ctrl.Row(id); ok {
			log.Info("Saved: %s", grid.FormatRow(m))
		}
	}
	return err
}

// pickRow asks for one of the rows on the current page
func pickRow(ctrl *grid.Controller) (member.ID, error) {
	rows := ctrl.Snapshot().Rows
	options := make([]string, len(rows))
	for i, m := range rows {
		options[i] = grid.FormatRow(m)
	}
	var index int
	if err := askOne(&survey.Select{Message: "Member:", Options: options, PageSize: 10}, &index); err != nil {
		return "", err
	}
	if index < 0 || index >= len(rows) {
		return "", errors.ErrRowNotLoaded
	}
	return rows[index].ID, nil
}

func askNumber(message string, def int) (int, error) {
	answer := strconv.Itoa(def)
	err := askOne(&survey.Input{Message: message, Default: answer}, &answer, survey.WithValidator(func(ans interface{}) error {
		if n, err := strconv.Atoi(fmt.Sprint(ans)); err != nil || n < 1 {
			return fmt.Errorf("enter a whole number of at least 1")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}

// askFilters edits the name, email and status filters, keeping any other filter as is
func askFilters(current map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(current))
	for k, v := range current {
		out[k] = v
	}
	for _, key := range []string{"name", "email"} {
		answer := current[key]
		if err := askOne(&survey.Input{Message: fmt.Sprintf("Filter by %s (empty for any):", key), Default: answer}, &answer); err != nil {
			return nil, err
		}
		out[key] = answer
	}

	const anyStatus = "(any)"
	status := current["status"]
	if status == "" {
		status = anyStatus
	}
	if err := askOne(&survey.Select{Message: "Filter by status:", Options: append([]string{anyStatus}, validStatusArgs()...), Default: status}, &status); err != nil {
		return nil, err
	}
	if status == anyStatus {
		status = ""
	}
	out["status"] = status
	return out, nil
}

func init() {
	memberCmd.AddCommand(memberBrowseCmd)
	memberBrowseCmd.Flags().StringVarP(&browseGroup, "group", "g", "", "Only members of this group")
}
