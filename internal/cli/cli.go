// internal/cli/cli.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/internal/service"
	"monetrax-ledger/internal/util"
)

// Env is what every command needs to reach the ledger.
type Env struct {
	Service  service.LedgerService
	Currency string
	Out      io.Writer
	Err      io.Writer
}

// Register the subcommands.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&transactionCmd{env: env, txType: domain.TransactionTypeIncome}, "ledger")
	c.Register(&transactionCmd{env: env, txType: domain.TransactionTypeExpense}, "ledger")
	c.Register(&showCmd{env: env}, "ledger")

	c.Register(&exportCmd{env: env}, "exchange")
	c.Register(&importCmd{env: env}, "exchange")

	c.Register(&whoamiCmd{env: env}, "session")
	c.Register(&signoutCmd{env: env}, "session")
}

// fail reports err on the error stream and maps it to an exit status.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: %s\n", util.UserMessage(err))
	if util.IsError(err, util.ErrValidation) || util.IsError(err, util.ErrInvalidFormat) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// printMarkdown renders md for the terminal, or writes it unchanged when raw.
func (e *Env) printMarkdown(md string, raw bool) {
	if raw {
		fmt.Fprint(e.Out, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(e.Out, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(e.Out, md)
		return
	}
	fmt.Fprint(e.Out, out)
}

// LedgerMarkdown renders the net total and up to limit transactions as a
// markdown document. A non-positive limit shows the whole window.
func LedgerMarkdown(userID domain.UserIdentity, ledger domain.Ledger, currency string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Net total: %s\n\n", domain.FormatMoney(ledger.NetTotal, currency))
	fmt.Fprintf(&b, "_%s_\n\n", userID)

	txs := ledger.Transactions
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	if len(txs) == 0 {
		b.WriteString("No transactions yet.\n")
		return b.String()
	}

	b.WriteString("| Date | Category | Type | Amount |\n")
	b.WriteString("|:---|:---|:---|---:|\n")
	for _, tx := range txs {
		date := "-"
		if !tx.Timestamp.IsZero() {
			date = tx.Timestamp.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			date,
			strings.ReplaceAll(tx.Category, "|", `\|`),
			tx.Type,
			domain.FormatMoney(tx.Signed(), currency))
	}
	if len(txs) < ledger.Len() {
		fmt.Fprintf(&b, "\n%d more not shown.\n", ledger.Len()-len(txs))
	}
	return b.String()
}
