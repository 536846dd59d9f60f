package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cast"

	"github.com/dimasma0305/edmcli/internal/edmcli/config"
	"github.com/dimasma0305/edmcli/internal/edmcli/edmapi"
	"github.com/dimasma0305/edmcli/internal/edmcli/importer"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
	"github.com/dimasma0305/edmcli/internal/log"
)

// askOne is swapped in tests
var askOne = survey.AskOne

// session is a loaded config plus an authenticated client
type session struct {
	conf   *config.Config
	client *edmapi.Client
	svc    *edmapi.Service
}

// commandContext is cancelled on Ctrl-C
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newSession loads .edm/conf.yaml and signs in
func newSession(ctx context.Context) (*session, error) {
	conf, err := config.LoadFromWorkDir()
	if err != nil {
		return nil, err
	}
	client, err := edmapi.New(ctx, conf.Url, conf.Token, conf.Creds, conf.ClientOptions())
	if err != nil {
		return nil, err
	}
	return &session{conf: conf, client: client, svc: edmapi.NewService(client)}, nil
}

// mustSession is newSession that exits on failure
func mustSession(ctx context.Context) *session {
	s, err := newSession(ctx)
	if err != nil {
		log.Fatal("Failed to initialize: %v", err)
	}
	return s
}

// parseStatusArg accepts the same spellings as the import sheet
func parseStatusArg(arg string) (member.Status, error) {
	return member.ParseStatus(arg)
}

// validStatusArgs returns the canonical status values for shell completion
func validStatusArgs() []string {
	return []string{string(member.StatusActive), string(member.StatusInactive)}
}

// confirm asks a yes/no question
func confirm(message string, def bool) (bool, error) {
	answer := def
	if err := askOne(&survey.Confirm{Message: message, Default: def}, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

// printMember prints the fields of one member
func printMember(m *member.Member) {
	log.Info("Member %s", m.ID)
	log.InfoH2("Name:    %s", m.Name)
	log.InfoH2("Email:   %s", m.Email)
	if m.Mobile != "" {
		log.InfoH2("Mobile:  %s", m.Mobile)
	}
	log.InfoH2("Status:  %s", m.Status)
	if m.GroupID != "" {
		log.InfoH2("Group:   %s", m.GroupID)
	}
	if m.CreateTime != "" {
		log.InfoH2("Created: %s", m.CreateTime)
	}
}

// printBatch reports the outcome of every failed row followed by the totals. lines maps
// result indices to spreadsheet line numbers when known.
func printBatch(batch *importer.Batch, lines []int) {
	for _, r := range batch.Failed() {
		where := fmt.Sprintf("row %d", r.SourceRow+1)
		if r.SourceRow < len(lines) {
			where = fmt.Sprintf("line %d", lines[r.SourceRow])
		}
		who := ""
		if r.Record != nil {
			who = " " + r.Record.Email
		}
		switch r.Outcome {
		case importer.OutcomeInvalid:
			log.InfoH3("%s: invalid: %v", where, r.Err)
		default:
			log.InfoH2("%s%s: %s: %v", where, who, r.Outcome, r.Err)
		}
	}

	counts := batch.Counts()
	log.Info("Imported %d, invalid %d, rejected %d, not attempted %d",
		counts[importer.OutcomeSuccess], counts[importer.OutcomeInvalid],
		counts[importer.OutcomeRejected], counts[importer.OutcomeNotAttempted])
	if batch.Transport != nil {
		log.Error("The remote could not be reached: %v", batch.Transport)
	}
}

// columnOptions labels each header with a preview value taken from the first data row
func columnOptions(table *sheet.Table) []string {
	options := make([]string, len(table.Headers))
	for i, h := range table.Headers {
		options[i] = h
		if len(table.Rows) == 0 {
			continue
		}
		if preview := cast.ToString(table.Rows[0][h]); preview != "" {
			options[i] = fmt.Sprintf("%s (e.g. %s)", h, preview)
		}
	}
	return options
}

// findDefault picks the option whose header best matches one of keywords: an exact,
// case-insensitive match first, then a substring match
func findDefault(headers []string, options []string, keywords []string) interface{} {
	for _, exact := range []bool{true, false} {
		for i, h := range headers {
			lowerH := strings.ToLower(strings.TrimSpace(h))
			for _, k := range keywords {
				k = strings.ToLower(k)
				if k == "" {
					continue
				}
				if (exact && lowerH == k) || (!exact && strings.Contains(lowerH, k)) {
					if i < len(options) {
						return options[i]
					}
				}
			}
		}
	}
	return nil
}

const skipOption = "(Skip)"

// selectColumns asks which spreadsheet column holds each member field, starting from the
// headers cm already knows
func selectColumns(table *sheet.Table, cm member.ColumnMap) (member.ColumnMap, error) {
	options := columnOptions(table)
	headerOf := func(selection string) string {
		for i, opt := range options {
			if opt == selection {
				return table.Headers[i]
			}
		}
		return selection
	}

	out := make(member.ColumnMap, 0, len(cm))
	for _, col := range cm {
		choices := options
		message := fmt.Sprintf("Select column for %s:", col.Field)
		def := findDefault(table.Headers, options, append(append([]string{}, col.Headers...), string(col.Field)))
		if !col.Required {
			choices = append([]string{skipOption}, options...)
			message = fmt.Sprintf("Select column for %s (Optional):", col.Field)
			if def == nil {
				def = skipOption
			}
		}

		prompt := &survey.Select{Message: message, Options: choices}
		if def != nil {
			prompt.Default = def
		}
		var answer string
		if err := askOne(prompt, &answer); err != nil {
			return nil, fmt.Errorf("mapping canceled: %w", err)
		}

		mapped := member.Column{Field: col.Field, Required: col.Required}
		if answer != skipOption {
			mapped.Headers = []string{headerOf(answer)}
		}
		out = append(out, mapped)
	}
	return out, out.Validate()
}
