package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"stakesure/internal/bootstrap"
	"stakesure/internal/bootstrap/logging"
	"stakesure/internal/errs"
)

var consoleClaimsCmd = &cobra.Command{
	Use:   "claims [claim-id]",
	Short: "Print the claims ledger with derived status and outcome",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if args := cmd.Flags().Args(); len(args) == 1 {
			claimID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errs.Wrapf(err, "parse claim id %q", args[0])
			}
			return showClaim(ctx, cmd, deps, claimID)
		}

		claims, err := deps.Ledger.List(ctx)
		if err != nil {
			return errs.Wrap(err, "list claims")
		}

		titleStyle := lipgloss.NewStyle().Bold(true)
		headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		acceptedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		deniedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("Claims (%d)", len(claims))))
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-8s %-20s %-14s %-10s %-10s", "CLAIM", "COVER", "CLAIMANT", "AMOUNT", "STATUS", "OUTCOME")))
		b.WriteString("\n")

		for _, claim := range claims {
			details, err := deps.Ledger.Details(ctx, claim.ClaimID)
			if err != nil {
				return errs.Wrapf(err, "details for claim %d", claim.ClaimID)
			}

			line := fmt.Sprintf("%-8d %-8d %-20s %-14d %-10s %-10s",
				claim.ClaimID, claim.CoverID, claim.Claimant, claim.Amount,
				details.Status, details.Outcome)
			switch details.Outcome.String() {
			case "accepted":
				b.WriteString(acceptedStyle.Render(line))
			case "denied":
				b.WriteString(deniedStyle.Render(line))
			default:
				b.WriteString(dimStyle.Render(line))
			}
			b.WriteString("\n")
		}

		if _, err := fmt.Fprint(cmd.OutOrStdout(), b.String()); err != nil {
			return errs.Wrap(err, "write claims output")
		}
		return nil
	}),
}

func showClaim(ctx context.Context, cmd *cobra.Command, deps appDeps, claimID uint64) error {
	claim, err := deps.Ledger.Get(ctx, claimID)
	if err != nil {
		return errs.Wrapf(err, "load claim %d", claimID)
	}
	details, err := deps.Ledger.Details(ctx, claimID)
	if err != nil {
		return errs.Wrapf(err, "details for claim %d", claimID)
	}

	titleStyle := lipgloss.NewStyle().Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Claim %d", claim.ClaimID)))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("cover", fmt.Sprintf("%d", claim.CoverID))
	row("claimant", claim.Claimant)
	row("amount", fmt.Sprintf("%d %s", claim.Amount, claim.Asset))
	row("deposit", fmt.Sprintf("%d %s", claim.Deposit, claim.Asset))
	row("proof", claim.ProofRef)
	row("submitted", claim.SubmittedAt.Format(time.RFC3339))
	row("status", details.Status.String())
	row("outcome", details.Outcome.String())
	row("payout redeemed", fmt.Sprintf("%t", claim.PayoutRedeemed))
	row("deposit retrieved", fmt.Sprintf("%t", claim.DepositRetrieved))

	if _, err := fmt.Fprint(cmd.OutOrStdout(), b.String()); err != nil {
		return errs.Wrap(err, "write claim output")
	}
	return nil
}

func init() {
	consoleCmd.AddCommand(consoleClaimsCmd)
}
