package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/edmcli/grid"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/log"
)

var memberCmd = &cobra.Command{
	Use:     "member",
	Aliases: []string{"m"},
	Short:   "Member management operations",
	Long: `Manage the members of your mailing groups including:
  - Importing members from xlsx spreadsheets
  - Listing and browsing members page by page
  - Changing a member's status, email or mobile number`,
	Example: `  # Import members into group 3
  edmcli member import members.xlsx --group 3

  # List active members whose name contains "Lin"
  edmcli member list --name Lin --status active

  # Disable a member
  edmcli member status 42 inactive`,
}

var (
	listPage     int
	listPageSize int
	listName     string
	listEmail    string
	listStatus   string
	listGroup    string
)

// memberFilters collects the non-empty filter flags
func memberFilters(name, email, status, group string) (map[string]string, error) {
	filters := make(map[string]string)
	if name != "" {
		filters["name"] = name
	}
	if email != "" {
		filters["email"] = email
	}
	if status != "" {
		s, err := parseStatusArg(status)
		if err != nil {
			return nil, err
		}
		filters["status"] = string(s)
	}
	if group != "" {
		filters["group_id"] = group
	}
	return filters, nil
}

var memberListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List one page of members",
	Example: `  # First page with the configured page size
  edmcli member list

  # Third page of 50, inactive members of group 3 only
  edmcli member list --page 3 --page-size 50 --status inactive --group 3`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		filters, err := memberFilters(listName, listEmail, listStatus, listGroup)
		if err != nil {
			log.Fatal("%v", err)
		}
		pageSize := listPageSize
		if pageSize <= 0 {
			pageSize = s.conf.Grid.PageSize
		}

		ctrl := grid.New(s.svc, grid.Options{PageSize: pageSize, Filters: filters})
		if listPage > 1 {
			err = ctrl.SetPage(ctx, listPage)
		} else {
			err = ctrl.Query(ctx)
		}
		if err != nil {
			log.Fatal("Failed to list members: %v", err)
		}
		fmt.Println(grid.FormatPage(ctrl.Snapshot()))
	},
}

var memberViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one member",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		m, err := s.svc.ViewMember(ctx, member.ID(args[0]))
		if err != nil {
			log.Fatal("Failed to fetch member: %v", err)
		}
		printMember(m)
	},
}

var memberStatusCmd = &cobra.Command{
	Use:   "status <id> <active|inactive>",
	Short: "Enable or disable a member",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		status, err := parseStatusArg(args[1])
		if err != nil {
			log.Fatal("%v", err)
		}
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		if err := s.svc.EditMemberStatus(ctx, member.ID(args[0]), status); err != nil {
			log.Fatal("Failed to change status: %v", err)
		}
		log.Info("Member %s is now %s", args[0], grid.StatusLabel(status).Render())
	},
}

var memberEmailCmd = &cobra.Command{
	Use:   "email <id> <email>",
	Short: "Change a member's email address",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		if verr := member.ValidateEmail(args[1]); verr != nil {
			log.Fatal("%v", verr)
		}
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		if err := s.svc.EditMemberEmail(ctx, member.ID(args[0]), args[1]); err != nil {
			log.Fatal("Failed to change email: %v", err)
		}
		log.Info("Member %s email set to %s", args[0], args[1])
	},
}

var memberMobileCmd = &cobra.Command{
	Use:   "mobile <id> <mobile>",
	Short: "Change a member's mobile number",
	Long:  `Change a member's mobile number. Pass "" to clear it.`,
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		if verr := member.ValidateMobile(args[1]); verr != nil {
			log.Fatal("%v", verr)
		}
		ctx, cancel := commandContext()
		defer cancel()
		s := mustSession(ctx)

		if err := s.svc.EditMemberMobile(ctx, member.ID(args[0]), args[1]); err != nil {
			log.Fatal("Failed to change mobile: %v", err)
		}
		log.Info("Member %s mobile set to %q", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(memberCmd)
	memberCmd.AddCommand(memberListCmd, memberViewCmd, memberStatusCmd, memberEmailCmd, memberMobileCmd)

	memberListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	memberListCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Rows per page (defaults to grid.page_size)")
	memberListCmd.Flags().StringVar(&listName, "name", "", "Filter by name")
	memberListCmd.Flags().StringVar(&listEmail, "email", "", "Filter by email")
	memberListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (active|inactive)")
	memberListCmd.Flags().StringVar(&listGroup, "group", "", "Filter by group id")
	_ = memberListCmd.RegisterFlagCompletionFunc("status", completeStatus)
}
