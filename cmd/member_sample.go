package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/edmcli/config"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
	"github.com/dimasma0305/edmcli/internal/log"
)

const defaultSampleFile = "範例-人員名單.xlsx"

var sampleForce bool

// sampleRows are written under the headers of the column map, in member.Fields order
var sampleRows = map[member.Field][]any{
	member.FieldName:   {"王小明", "陳美玲"},
	member.FieldEmail:  {"ming@example.com", "meiling@example.com"},
	member.FieldMobile: {"0912345678", ""},
	member.FieldStatus: {"已啟用", "已禁用"},
}

var memberSampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Write a sample member spreadsheet",
	Long: `Write an xlsx file whose headers match the configured column mapping, with
two example members. Fill it in and pass it to "member import".`,
	Example: `  edmcli member sample
  edmcli member sample members.xlsx --force`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		path := defaultSampleFile
		if len(args) == 1 {
			path = args[0]
		}

		cm := member.DefaultColumnMap()
		if conf, err := config.LoadFromWorkDir(); err == nil {
			if mapped, err := conf.ColumnMap(); err == nil {
				cm = mapped
			}
		} else {
			log.Debug("Using the default column mapping: %v", err)
		}

		if err := writeSample(path, cm, sampleForce); err != nil {
			log.Fatal("Failed to write sample: %v", err)
		}
		log.Info("Sample written to %s", path)
	},
}

// writeSample writes the sample workbook for cm to path. An existing file is kept unless force is set.
func writeSample(path string, cm member.ColumnMap, force bool) error {
	var headers []string
	rows := make([][]any, 2)
	for _, col := range cm {
		if len(col.Headers) == 0 {
			continue
		}
		headers = append(headers, col.Headers[0])
		for i := range rows {
			var v any = ""
			if vals := sampleRows[col.Field]; i < len(vals) {
				v = vals[i]
			}
			rows[i] = append(rows[i], v)
		}
	}
	if len(headers) == 0 {
		return fmt.Errorf("column mapping names no headers")
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	//nolint:gosec // G304: path comes from the operator on the command line
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		return err
	}
	if err := sheet.WriteWorkbook(f, headers, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	memberCmd.AddCommand(memberSampleCmd)
	memberSampleCmd.Flags().BoolVarP(&sampleForce, "force", "f", false, "Overwrite an existing file")
}
