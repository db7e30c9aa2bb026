package cmd

import (
	"fmt"
	"io"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/Ashfaaq98/caseportal/internal/progress"
	"github.com/spf13/cobra"
)

var (
	newStatus  string
	newStep    int
	newTotal   int
	newPayment string
	newHearing string
)

// updateStatusCmd patches a case's status fields.
var updateStatusCmd = &cobra.Command{
	Use:   "update-status",
	Short: "Update a case's status, step or payment",
	Long: `Sign in and send a partial status update for the case. Only the flags you
pass are sent.

Examples:
  caseportal update-status --case 21456 --code test123 --status "Judgment Issued" --step 5
  caseportal update-status --case 21456 --code test123 --payment Paid
  caseportal update-status --case 21456 --code test123 --hearing 2024-04-02T09:30:00`,
	RunE: runUpdateStatus,
}

func init() {
	rootCmd.AddCommand(updateStatusCmd)
	addCredentialFlags(updateStatusCmd)
	updateStatusCmd.Flags().StringVar(&newStatus, "status", "", "New status headline")
	updateStatusCmd.Flags().IntVar(&newStep, "step", 0, "New current step")
	updateStatusCmd.Flags().IntVar(&newTotal, "total", 0, "New total step count")
	updateStatusCmd.Flags().StringVar(&newPayment, "payment", "", "New payment status (e.g. Paid, Pending)")
	updateStatusCmd.Flags().StringVar(&newHearing, "hearing", "", "New hearing date (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)")
}

func runUpdateStatus(cmd *cobra.Command, args []string) error {
	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to update: pass at least one of --status, --step, --total, --payment, --hearing")
	}

	ctx := cmd.Context()
	svc, err := openServices(GetConfig(), "cli")
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.controller.Login(ctx, caseNumber, accessCode); err != nil {
		return fmt.Errorf("login failed: %s", portalapi.UserMessage(err))
	}
	componentLogger("update-status").Debug(svc.controller.Describe())
	updated, err := svc.controller.UpdateStatus(ctx, patch)
	if err != nil {
		return fmt.Errorf("update failed: %s", portalapi.UserMessage(err))
	}

	printCase(cmd.OutOrStdout(), updated)
	return nil
}

// patchFromFlags includes only the flags the user set.
func patchFromFlags(cmd *cobra.Command) (casedata.StatusPatch, error) {
	var p casedata.StatusPatch
	flags := cmd.Flags()
	if flags.Changed("status") {
		p.CurrentStatus = &newStatus
	}
	if flags.Changed("step") {
		p.CurrentStep = &newStep
	}
	if flags.Changed("total") {
		p.TotalSteps = &newTotal
	}
	if flags.Changed("payment") {
		p.PaymentStatus = &newPayment
	}
	if flags.Changed("hearing") {
		d, err := casedata.ParseDate(newHearing)
		if err != nil {
			return p, fmt.Errorf("invalid --hearing value: %w", err)
		}
		if d == nil {
			return p, fmt.Errorf("invalid --hearing value: empty date")
		}
		p.HearingDate = d
	}
	return p, nil
}

func printCase(w io.Writer, c *casedata.Case) {
	fmt.Fprintf(w, "Case #%s updated\n", c.CaseNumber)
	fmt.Fprintf(w, "  Status:   %s\n", c.CurrentStatus)
	if pct, err := progress.RoundedPercentage(c.CurrentStep, c.TotalSteps); err == nil {
		fmt.Fprintf(w, "  Step:     %d of %d (%d%%)\n", c.CurrentStep, c.TotalSteps, pct)
	} else {
		fmt.Fprintf(w, "  Step:     %d of %d (invalid)\n", c.CurrentStep, c.TotalSteps)
	}
	fmt.Fprintf(w, "  Payment:  %s\n", c.PaymentStatus)
	fmt.Fprintf(w, "  Hearing:  %s\n", progress.FormatDateTime(c.HearingDate))
}
