// Command stricttuple validates schema files and checks record data against them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/stricttuple/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
