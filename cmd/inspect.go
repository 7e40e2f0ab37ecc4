package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/distsim/distsim/sim"
	"github.com/distsim/distsim/sim/trace"
)

var showClocks bool // Print the per-event logical clock table

// inspectCmd loads a persisted trace and prints its summary. It works on
// any trace document, including ones produced by algorithms this binary
// has never seen: unregistered kinds are displayed by kind name with
// their target and sender.
var inspectCmd = &cobra.Command{
	Use:   "inspect <trace.json>",
	Short: "Summarize a persisted trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		tr, err := trace.Decode(data)
		if err != nil {
			return err
		}

		fmt.Print(trace.Summarize(tr).Format())

		if showClocks {
			causality := trace.Derive(tr)
			fmt.Println()
			fmt.Println("idx  lamport  interval              event")
			for i, te := range tr.EventsList {
				kind := eventKind(te)
				fmt.Printf("%-4d %-8d [%s, %s)  %s -> %s %s\n",
					i, causality.LogicalTime(i), te.Start, te.End, te.Sender(), te.Receiver(), kind)
			}
		}
		return nil
	},
}

func eventKind(te sim.TimedEvent) string {
	if ge, ok := te.Event.(trace.GenericEvent); ok {
		return ge.Kind
	}
	return fmt.Sprintf("%T", te.Event)
}

func init() {
	inspectCmd.Flags().BoolVar(&showClocks, "clocks", false, "print the per-event logical clock table")
}
