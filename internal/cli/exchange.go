// internal/cli/exchange.go
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"monetrax-ledger/internal/domain"
)

type exportCmd struct {
	env    *Env
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the ledger to a portable JSON document" }
func (*exportCmd) Usage() string {
	return `monetrax export [-o <file>]

  Writes the export document. Without -o the file is named
  monetrax-<userId>-<date>.json in the current directory. Use -o - for stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, - for stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	doc, err := c.env.Service.Export(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	payload, err := doc.Encode()
	if err != nil {
		return c.env.fail(err)
	}

	if c.output == "-" {
		fmt.Fprintln(c.env.Out, string(payload))
		return subcommands.ExitSuccess
	}
	path := c.output
	if path == "" {
		path = doc.Filename()
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return c.env.fail(errors.Wrapf(err, "write %s", path))
	}
	fmt.Fprintf(c.env.Out, "Exported %d transactions to %s\n", len(doc.Transactions), path)
	return subcommands.ExitSuccess
}

type importCmd struct {
	env *Env
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the ledger with an exported document" }
func (*importCmd) Usage() string {
	return `monetrax import <file>

  Replaces the current ledger with the content of an export document.
  The current transactions are discarded, nothing is merged.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.env.Err, "Error: import takes exactly one file")
		return subcommands.ExitUsageError
	}
	raw, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ledger, err := c.env.Service.Import(ctx, raw)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "Imported %d transactions. Net total: %s\n",
		ledger.Len(), domain.FormatMoney(ledger.NetTotal, c.env.Currency))
	return subcommands.ExitSuccess
}
