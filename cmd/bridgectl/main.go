// Command bridgectl is a supplemental CLI harness for exercising the
// bridge outside the simulator host (SPEC_FULL.md Supplemented Features).
// It does not change the plugin ABI surface (spec.md §6); it is an
// additional entry point for manual testing and offline descriptor
// generation.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aeroflybridge/bridge/internal/bridgeconfig"
	"github.com/aeroflybridge/bridge/internal/catalog"
	"github.com/aeroflybridge/bridge/internal/orchestrator"
	"github.com/aeroflybridge/bridge/internal/sharedrecord"
	"github.com/aeroflybridge/bridge/pkg/blog"
	"github.com/aeroflybridge/bridge/sdk"
)

func main() {
	root := &cobra.Command{
		Use:   "bridgectl",
		Short: "Manual test harness for the Aerofly bridge",
	}
	root.AddCommand(newServeCmd(), newDescriptorCmd(), newSendCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var tickHz float64
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Drive the orchestrator with a synthetic tick loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := bridgeconfig.Load()
			b := orchestrator.New(cfg)
			if err := b.Initialize(); err != nil {
				return err
			}
			defer b.Shutdown()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			fakeInbound := readFakeInboundFromStdin(b.Catalog())

			interval := time.Duration(float64(time.Second) / tickHz)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			deltaTime := interval.Seconds()
			blog.Infof("bridgectl: serving at %.1f Hz, Ctrl-C to stop", tickHz)
			for {
				select {
				case <-sigCh:
					blog.Info("bridgectl: shutting down")
					return nil
				case <-ticker.C:
					b.Tick(drainAvailable(fakeInbound), deltaTime)
				}
			}
		},
	}
	cmd.Flags().Float64Var(&tickHz, "rate", 30, "synthetic tick rate in Hz")
	return cmd
}

// readFakeInboundFromStdin lets an operator type "Variable.Name value"
// lines to synthesize inbound host messages without a real simulator.
// Unrecognized lines are logged at debug level and skipped.
func readFakeInboundFromStdin(cat *catalog.Catalog) <-chan sdk.Message {
	out := make(chan sdk.Message, 64)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) != 2 {
				blog.Debugf("bridgectl: ignoring stdin line %q", scanner.Text())
				continue
			}
			v, ok := cat.EntryByName(fields[0])
			if !ok {
				blog.Debugf("bridgectl: unknown variable %q", fields[0])
				continue
			}
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				blog.Debugf("bridgectl: non-numeric value %q for %q", fields[1], fields[0])
				continue
			}
			out <- sdk.Message{ID: v.MessageID, Type: sdk.TypeFloat64, F64: value}
		}
	}()
	return out
}

func drainAvailable(ch <-chan sdk.Message) []sdk.Message {
	var out []sdk.Message
	for {
		select {
		case m := <-ch:
			out = append(out, m)
		default:
			return out
		}
	}
}

func newDescriptorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descriptor",
		Short: "Print the offsets descriptor for the built-in catalog without starting any transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Build()
			layout := sharedrecord.BuildLayout(cat)
			doc := catalog.BuildDescriptor(cat, layout.DescriptorLayoutInfo())
			_, err := cmd.OutOrStdout().Write(doc)
			return err
		},
	}
}

func newSendCmd() *cobra.Command {
	var addr, variable string
	var value float64
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Connect to the TCP command port and send one {variable, value} command",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			payload := fmt.Sprintf(`{"variable":%q,"value":%g}`, variable, value)
			if _, err := conn.Write([]byte(payload)); err != nil {
				return err
			}
			cmd.Println("sent:", payload)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:12346", "TCP command port address")
	cmd.Flags().StringVar(&variable, "variable", "", "catalog variable name")
	cmd.Flags().Float64Var(&value, "value", 0, "numeric value to send")
	_ = cmd.MarkFlagRequired("variable")
	return cmd
}
