// loopback_selftest runs one fixed-length transfer session over the simulated
// loopback bus and verifies the round trip, byte by byte. Exit status is
// non-zero on a failed or stalled transfer.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/fifoxfer/sim"
	"github.com/jangala-dev/fifoxfer/xfer"
)

var (
	cfgPath  string
	length   int
	trigger  int
	depth    int
	corrupt  int
	maxSteps int
)

var rootCmd = &cobra.Command{
	Use:          "loopback_selftest",
	Short:        "Run one loopback transfer session and verify it",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "YAML config file (defaults match the reference board)")
	rootCmd.Flags().IntVar(&length, "len", 0, "transfer length in bytes")
	rootCmd.Flags().IntVar(&trigger, "trigger", 0, "initial inbound trigger level")
	rootCmd.Flags().IntVar(&depth, "depth", 0, "FIFO depth")
	rootCmd.Flags().IntVar(&corrupt, "corrupt", -1, "corrupt the byte at this wire index (-1 off)")
	rootCmd.Flags().IntVar(&maxSteps, "max-steps", 10000, "bus iteration budget")
	rootCmd.Flags().AddGoFlagSet(goflag.CommandLine) // glog flags (-v, -logtostderr, ...)
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := sim.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = sim.LoadConfig(cfgPath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("len") {
		cfg.Length = length
	}
	if cmd.Flags().Changed("trigger") {
		cfg.InboundTrigger = trigger
	}
	if cmd.Flags().Changed("depth") {
		cfg.Depth = depth
	}
	if cmd.Flags().Changed("corrupt") {
		cfg.CorruptIndex = corrupt
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
	if err := bus.RunToIdle(maxSteps); err != nil {
		return err
	}

	obs := eng.Observer(xfer.IndicatorFunc(func(ok bool) {
		glog.V(1).Infof("indicator: %v", ok)
	}))
	verdict, done := obs.Poll()
	if !done {
		return errors.Errorf("transfer stalled: sent=%d received=%d trigger=%d",
			session.Sent(), session.Received(), eng.Trigger())
	}

	src, rcv := session.Source(), session.ReceivedBytes()
	for i := range src {
		mark := "ok"
		if src[i] != rcv[i] {
			mark = "MISMATCH"
		}
		fmt.Printf("byte %2d: sent %#02x recv %#02x %s\n", i, src[i], rcv[i], mark)
	}

	st := eng.Stats()
	glog.V(1).Infof("stats: tx entries=%d rx entries=%d drained=%d max drain=%d trigger rewrites=%d",
		st.SenderEntries, st.ReceiverEntries, st.BytesDrained, st.MaxDrain, st.TriggerRewrites)

	if !verdict.Pass() {
		return errors.Errorf("FAIL: %d of %d bytes mismatched at %v",
			len(verdict.Mismatches), verdict.Total, verdict.Mismatches)
	}
	fmt.Printf("PASS: %d bytes verified\n", verdict.Total)
	return nil
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
