// fifo_check single-steps a simulated transfer and prints the FIFO and
// trigger state at each bus iteration. Debugging aid for the level/dispatch
// behaviour; the verified run lives in loopback_selftest.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/fifoxfer/sim"
	"github.com/jangala-dev/fifoxfer/xfer"
)

var (
	cfgPath  string
	maxSteps int
)

var rootCmd = &cobra.Command{
	Use:          "fifo_check",
	Short:        "Trace FIFO occupancy and trigger state through a transfer",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "YAML config file (defaults match the reference board)")
	rootCmd.Flags().IntVar(&maxSteps, "max-steps", 10000, "bus iteration budget")
	rootCmd.Flags().AddGoFlagSet(goflag.CommandLine)
}

func run(_ *cobra.Command, _ []string) error {
	cfg := sim.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = sim.LoadConfig(cfgPath); err != nil {
			return err
		}
	}

	bus, err := sim.NewBus(cfg)
	if err != nil {
		return err
	}
	session, err := xfer.NewSession(cfg.Length)
	if err != nil {
		return err
	}
	eng, err := xfer.NewEngine(bus, bus, session, xfer.Config{
		InboundTrigger: cfg.InboundTrigger,
		QueueDepth:     cfg.Depth,
	})
	if err != nil {
		return err
	}
	bus.Bind(xfer.LineOutbound, eng.OnOutboundSpace)
	bus.Bind(xfer.LineInbound, eng.OnInboundLevel)

	if err := eng.Arm(); err != nil {
		return err
	}

	fmt.Printf("%4s %4s %4s %8s %5s %5s %5s %5s\n",
		"iter", "tx", "rx", "trigger", "sent", "rcvd", "pTX", "pRX")
	for i := 0; i < maxSteps; i++ {
		tx, rx := bus.Occupancy()
		fmt.Printf("%4d %4d %4d %8d %5d %5d %5v %5v\n",
			i, tx, rx, bus.InboundTrigger(), session.Sent(), session.Received(),
			bus.Pending(xfer.LineOutbound), bus.Pending(xfer.LineInbound))
		ran := bus.DispatchPending()
		moved := bus.Step()
		if !ran && !moved {
			break
		}
	}

	fmt.Printf("idle: sent=%d received=%d complete=%v moved=%d overruns=%d\n",
		session.Sent(), session.Received(), session.Complete(), bus.Moved(), bus.Overruns())
	return nil
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
