package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	gdrive "github.com/tanq16/driveloader/internal/downloaders/google-drive"
	"github.com/tanq16/driveloader/internal/output"
)

func newCookiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Explain and check Google session cookies",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "explain",
		Short: "Describe each session cookie and where to find it",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			output.PrintHeader("Google session cookies")
			output.PrintDetail("Open drive.google.com while logged in, then DevTools > Application (Storage in Firefox) > Cookies > https://www.google.com")
			fmt.Println()
			for _, info := range gdrive.CookieCatalog() {
				status := "optional"
				if info.Required {
					status = "required"
				}
				output.PrintInfo(fmt.Sprintf("%s (%s)", info.Name, status))
				fmt.Printf("  %s %s\n", output.FDebug("WHAT:"), info.What)
				fmt.Printf("  %s %s\n", output.FDebug("WHY: "), info.Why)
				fmt.Printf("  %s %s\n", output.FDebug("HOW: "), info.How)
				fmt.Printf("  %s %s\n", output.FDebug("WHEN:"), info.When)
			}
			fmt.Println()
			output.PrintDetail(`Save them as [{"name": "SID", "value": "..."}] or {"SID": "..."} and pass --cookie-file`)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check [COOKIE_FILE]",
		Short: "Validate a cookie file and report missing required cookies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalConfig.CookieFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no cookie file given")
			}
			cookies, err := gdrive.FileCookieProvider{Path: path}.AcquireCookies(context.Background())
			if err != nil {
				return err
			}
			output.PrintInfo(fmt.Sprintf("Loaded %d cookies from %s", len(cookies), path))
			for _, info := range gdrive.CookieCatalog() {
				if cookies[info.Name] != "" {
					output.PrintSuccess(fmt.Sprintf("  ✓ %s", info.Name))
				} else if !info.Required {
					output.PrintWarning(fmt.Sprintf("  ! %s (optional) not set", info.Name))
				}
			}
			if missing := gdrive.MissingRequired(cookies); len(missing) > 0 {
				output.PrintHints([]string{"Export fresh cookies from a logged-in browser session"})
				return fmt.Errorf("missing required cookies: %s", strings.Join(missing, ", "))
			}
			output.PrintSuccess("All required cookies present")
			return nil
		},
	})
	return cmd
}
