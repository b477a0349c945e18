package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/enumerator"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
)

type benchOptions struct {
	maxLength       int
	checkpointEvery uint64
	digests         []string
	regimes         []string
}

// benchRow is one digest and regime pairing of the comparison harness.
type benchRow struct {
	Digest string
	Regime string
	Result *search.Result
}

func newBenchCmd() *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench <plaintext>",
		Short: "Compare digest primitives and scheduling regimes on one search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)
			rows, err := runBench(cmd, opts, args[0])
			if err != nil {
				return err
			}
			return renderBench(cmd.OutOrStdout(), rows)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.maxLength, "max-length", "n", 0, "longest candidate to try (default: length of plaintext)")
	f.Uint64Var(&opts.checkpointEvery, "checkpoint-every", search.DefaultCheckpointEvery, "attempts between cancellation checks")
	f.StringSliceVar(&opts.digests, "digest", digest.Names(), "digest primitives to compare")
	f.StringSliceVar(&opts.regimes, "regime", []string{search.WorkerRegime.String(), search.CooperativeRegime.String()}, "scheduling regimes to compare")
	return cmd
}

func runBench(cmd *cobra.Command, opts *benchOptions, plaintext string) ([]benchRow, error) {
	for _, r := range plaintext {
		if !strings.ContainsRune(enumerator.Alphabet, r) {
			return nil, errors.Errorf("plaintext %q has characters outside %s", plaintext, enumerator.Alphabet)
		}
	}
	maxLength := opts.maxLength
	if maxLength == 0 {
		maxLength = len(plaintext)
	}
	if err := search.ValidateMaxLength(maxLength); err != nil {
		return nil, err
	}
	regimes := make([]search.Regime, 0, len(opts.regimes))
	for _, name := range opts.regimes {
		regime, err := search.ParseRegime(name)
		if err != nil {
			return nil, err
		}
		regimes = append(regimes, regime)
	}
	hash := digest.Md5Hex(plaintext)

	var rows []benchRow
	for _, name := range opts.digests {
		if !digest.IsKnownName(name) {
			return nil, errors.Errorf("unknown digest %q", name)
		}
		engine := search.NewEngine(search.Config{
			Digest:          digest.ParseName(name),
			CheckpointEvery: opts.checkpointEvery,
		})
		for _, regime := range regimes {
			res, err := runSearch(cmd.Context(), engine, regime, hash, maxLength, nil)
			if err != nil {
				return nil, errors.Wrapf(err, "%s/%s", name, regime)
			}
			rows = append(rows, benchRow{Digest: name, Regime: regime.String(), Result: res})
			if res.Outcome == search.OutcomeCancelled {
				return rows, nil
			}
		}
	}
	return rows, nil
}

func renderBench(w io.Writer, rows []benchRow) error {
	table := tablewriter.NewTable(w)
	table.Header("Digest", "Regime", "Outcome", "Plaintext", "Attempts", "Time ms", "Checks/s")
	for _, row := range rows {
		res := row.Result
		if err := table.Append([]string{
			row.Digest,
			row.Regime,
			res.Outcome.String(),
			res.Plaintext,
			strconv.FormatUint(res.Attempts, 10),
			strconv.FormatInt(res.ElapsedMillis(), 10),
			fmt.Sprintf("%.0f", res.Rate),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
