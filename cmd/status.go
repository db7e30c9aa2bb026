package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Ashfaaq98/caseportal/internal/dashboard"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/spf13/cobra"
)

var (
	caseNumber string
	accessCode string
	jsonOutput bool
)

// statusCmd prints the dashboard without the TUI.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a case's dashboard",
	Long: `Sign in, load the case dashboard and print it. Works in any terminal and in
scripts.

Examples:
  caseportal status --case 21456 --code test123
  caseportal status --case 21456 --code test123 --json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	addCredentialFlags(statusCmd)
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the dashboard as JSON")
}

func addCredentialFlags(c *cobra.Command) {
	c.Flags().StringVar(&caseNumber, "case", "", "Case number")
	c.Flags().StringVar(&accessCode, "code", "", "Access code")
	c.MarkFlagRequired("case")
	c.MarkFlagRequired("code")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openServices(GetConfig(), "cli")
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.controller.Login(ctx, caseNumber, accessCode); err != nil {
		return fmt.Errorf("login failed: %s", portalapi.UserMessage(err))
	}
	componentLogger("status").Debug(svc.controller.Describe())
	snap, err := svc.controller.LoadDashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to load case: %s", portalapi.UserMessage(err))
	}
	view, err := svc.builder().Build(snap.Case, snap.Timeline, snap.Documents)
	if err != nil {
		return fmt.Errorf("case %s has invalid progress data: %w", snap.Case.CaseNumber, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	printView(out, view)
	return nil
}

func printView(w io.Writer, v *dashboard.View) {
	h := v.Hero
	fmt.Fprintf(w, "%s  |  %s\n", v.Contact.FirmName, v.ClientName)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%s\n%s  ·  %s\n", h.Headline, h.Address, h.CaseRef)
	fmt.Fprintf(w, "Progress: %d%% (%s)\n", h.Percent, h.StepText)
	if h.CurrentStep != "" {
		fmt.Fprintf(w, "Current Step: %s\n", h.CurrentStep)
	}
	fmt.Fprintf(w, "Next Hearing: %s\n%s\n\n", h.Hearing.Date, h.NextStep)

	printRows(w, "Case Details", v.Details)
	printRows(w, "Important Dates", v.ImportantDates)

	fmt.Fprintln(w, "Case Timeline")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range v.Timeline {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s\n", r.Step, r.Title, r.DateLabel, r.Status)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Documents")
	if len(v.Documents) == 0 {
		fmt.Fprintln(w, "  No documents yet")
	}
	for _, d := range v.Documents {
		fmt.Fprintf(w, "  %s (uploaded %s)\n", d.Name, d.Uploaded)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Payment: %s - %s\n\n", v.Payment.Title, v.Payment.Message)

	fmt.Fprintln(w, "What's Next?")
	for _, it := range v.WhatsNext {
		fmt.Fprintf(w, "  %s: %s\n", it.Title, it.Detail)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Contact: %s  %s  %s\n", v.Contact.FirmName, v.Contact.Phone, v.Contact.Email)
}

func printRows(w io.Writer, title string, rows []dashboard.Row) {
	fmt.Fprintln(w, title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\n", r.Label, r.Value)
	}
	tw.Flush()
	fmt.Fprintln(w)
}
