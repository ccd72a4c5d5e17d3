// internal/cli/session.go
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type whoamiCmd struct {
	env *Env
}

func (*whoamiCmd) Name() string           { return "whoami" }
func (*whoamiCmd) Synopsis() string       { return "print the local user identifier" }
func (*whoamiCmd) Usage() string          { return "monetrax whoami\n" }
func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (c *whoamiCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	userID, _ := c.env.Service.Session()
	fmt.Fprintln(c.env.Out, userID)
	return subcommands.ExitSuccess
}

type signoutCmd struct {
	env *Env
}

func (*signoutCmd) Name() string           { return "signout" }
func (*signoutCmd) Synopsis() string       { return "flush the ledger and end the session" }
func (*signoutCmd) Usage() string          { return "monetrax signout\n" }
func (*signoutCmd) SetFlags(*flag.FlagSet) {}

func (c *signoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.env.Service.SignOut(ctx)
	fmt.Fprintln(c.env.Out, "Signed out. Your ledger is saved.")
	return subcommands.ExitSuccess
}
