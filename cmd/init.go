package cmd

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/log"
	"github.com/dimasma0305/edmcli/internal/template"
)

var (
	initUrl      string
	initToken    string
	initUsername string
	initPassword string
	initYes      bool
)

// initInfo feeds templates/init
type initInfo struct {
	Url      string
	Token    string
	Username string
	Password string
}

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Create the .edm configuration in the current directory",
	Long: `Create .edm/conf.yaml with the API address, credentials and the default
spreadsheet column mapping.

Values not given as flags are prompted for unless --yes is set.
Existing files are never overwritten.`,
	Example: `  # Initialize with prompts
  edmcli init

  # Initialize with flags
  edmcli init --url https://edm.example.com/api --username admin --password secret

  # Token instead of credentials
  edmcli init --url https://edm.example.com/api --token eyJhbGci... --yes`,
	Run: func(_ *cobra.Command, _ []string) {
		info := initInfo{Url: initUrl, Token: initToken, Username: initUsername, Password: initPassword}
		if !initYes {
			if err := promptInitInfo(&info); err != nil {
				log.Fatal("Initialization canceled: %v", err)
			}
		}
		if info.Url == "" {
			log.Fatal("An API url is required (--url)")
		}

		failed := false
		for _, err := range template.Scaffold("init", info, ".") {
			log.Error("%s", err)
			failed = true
		}
		if failed {
			log.Warn("Some files were not written, see the errors above")
			return
		}
		log.Info("Configuration written to .edm/conf.yaml")
	},
}

func promptInitInfo(info *initInfo) error {
	if info.Url == "" {
		if err := askOne(&survey.Input{Message: "EDM API url:"}, &info.Url, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if info.Token != "" || info.Username != "" {
		return nil
	}
	if err := askOne(&survey.Input{Message: "Admin username (empty to skip):"}, &info.Username); err != nil {
		return err
	}
	if info.Username != "" && info.Password == "" {
		return askOne(&survey.Password{Message: "Admin password:"}, &info.Password)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initUrl, "url", "", "Base URL of the EDM API")
	initCmd.Flags().StringVar(&initToken, "token", "", "Bearer token to use instead of credentials")
	initCmd.Flags().StringVar(&initUsername, "username", "", "Admin username")
	initCmd.Flags().StringVar(&initPassword, "password", "", "Admin password")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Do not prompt for missing values")
}
