// internal/cli/ledger.go
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"monetrax-ledger/internal/domain"
)

type transactionCmd struct {
	env      *Env
	txType   domain.TransactionType
	category string
	amount   string
}

func (c *transactionCmd) Name() string { return string(c.txType) }
func (c *transactionCmd) Synopsis() string {
	return fmt.Sprintf("record an %s entry", c.txType)
}
func (c *transactionCmd) Usage() string {
	return fmt.Sprintf(`monetrax %s -c <category> -a <amount>

  Records an %s entry and prints the new net total.
`, c.txType, c.txType)
}

func (c *transactionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "", "Category of the entry, e.g. Groceries")
	f.StringVar(&c.amount, "a", "", "Positive amount, e.g. 12.50")
}

func (c *transactionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := c.env.Service.AddTransaction(ctx, c.category, c.amount, c.txType)
	if err != nil {
		return c.env.fail(err)
	}
	total := c.env.Service.Snapshot().NetTotal
	fmt.Fprintf(c.env.Out, "Recorded %s %s %s. Net total: %s\n",
		tx.Type, tx.Category,
		domain.FormatMoney(tx.Amount, c.env.Currency),
		domain.FormatMoney(total, c.env.Currency))
	return subcommands.ExitSuccess
}

type showCmd struct {
	env   *Env
	limit int
	raw   bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the net total and recent transactions" }
func (*showCmd) Usage() string {
	return `monetrax show [-n <count>] [-raw]

  Displays the net total and the most recent transactions, newest first.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", domain.CompactRetentionCap, "Number of transactions to show (0 for all retained)")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown instead of rendering it")
}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	userID, _ := c.env.Service.Session()
	md := LedgerMarkdown(userID, c.env.Service.Snapshot(), c.env.Currency, c.limit)
	c.env.printMarkdown(md, c.raw)
	return subcommands.ExitSuccess
}
