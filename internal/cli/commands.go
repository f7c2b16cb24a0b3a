package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dan9191/recurring-service/internal/config"
	"github.com/Dan9191/recurring-service/internal/middleware"
	"github.com/Dan9191/recurring-service/internal/models"
)

func init() {
	rootCmd.AddCommand(fireCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(tokenCmd)

	auditCmd.Flags().String("owner", "", "Owner whose schedules are audited")
	auditCmd.MarkFlagRequired("owner")
	tokenCmd.Flags().String("owner", "", "Owner id placed in the token subject")
	tokenCmd.MarkFlagRequired("owner")
}

// ─── fire ───────────────────────────────────────────────────────────────────

var fireCmd = &cobra.Command{
	Use:   "fire",
	Short: "Fire every due schedule once and print the batch report",
	RunE:  runFire,
}

func runFire(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.svc.ExecuteDue(cmd.Context())
	if err != nil {
		return err
	}
	if err := printJSON(cmd, report); err != nil {
		return err
	}
	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d of %d due schedules failed", n, report.Due)
	}
	return nil
}

// ─── audit ──────────────────────────────────────────────────────────────────

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Print the portfolio summary and configuration conflicts of an owner",
	RunE:  runAudit,
}

type auditReport struct {
	Summary   models.PortfolioSummary `json:"summary"`
	Conflicts []models.ConflictReport `json:"conflicts"`
}

func runAudit(cmd *cobra.Command, args []string) error {
	ownerID, _ := cmd.Flags().GetString("owner")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.svc.Summary(cmd.Context(), ownerID)
	if err != nil {
		return err
	}
	conflicts, err := a.svc.Conflicts(cmd.Context(), ownerID)
	if err != nil {
		return err
	}
	if conflicts == nil {
		conflicts = []models.ConflictReport{}
	}
	return printJSON(cmd, auditReport{Summary: summary, Conflicts: conflicts})
}

// ─── token ──────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an owner",
	Long:  `Mint a bearer token signed with JWT_SECRET, valid for 24 hours. Intended for development.`,
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	ownerID, _ := cmd.Flags().GetString("owner")
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	token, err := middleware.IssueToken(cfg, ownerID, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
