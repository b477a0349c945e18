package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/messages/job"
)

type crackOptions struct {
	maxLength       int
	digest          string
	regime          string
	checkpointEvery uint64
	progressEvery   uint64
	progress        bool
	json            bool
}

func newCrackCmd() *cobra.Command {
	opts := &crackOptions{}
	cmd := &cobra.Command{
		Use:   "crack <md5-hex>",
		Short: "Search for a preimage of an MD5 digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrack(cmd, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.maxLength, "max-length", "n", 4, "longest candidate to try (1-10)")
	f.StringVar(&opts.digest, "digest", digest.DefaultName(), "digest primitive: md5-reset|md5-sum|noop")
	f.StringVar(&opts.regime, "regime", search.WorkerRegime.String(), "scheduling regime: worker|cooperative")
	f.Uint64Var(&opts.checkpointEvery, "checkpoint-every", search.DefaultCheckpointEvery, "attempts between cancellation checks")
	f.Uint64Var(&opts.progressEvery, "progress-every", search.DefaultProgressEvery, "attempts between progress reports")
	f.BoolVar(&opts.progress, "progress", false, "print progress to stderr")
	f.BoolVar(&opts.json, "json", false, "emit the result as JSON")
	return cmd
}

func (o *crackOptions) engine() (*search.Engine, search.Regime, error) {
	if !digest.IsKnownName(o.digest) {
		return nil, 0, errors.Errorf("unknown digest %q", o.digest)
	}
	regime, err := search.ParseRegime(o.regime)
	if err != nil {
		return nil, 0, err
	}
	return search.NewEngine(search.Config{
		Digest:          digest.ParseName(o.digest),
		CheckpointEvery: o.checkpointEvery,
		ProgressEvery:   o.progressEvery,
	}), regime, nil
}

func runCrack(cmd *cobra.Command, opts *crackOptions, hash string) error {
	engine, regime, err := opts.engine()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress search.ProgressFunc
	if opts.progress {
		errOut := cmd.ErrOrStderr()
		progress = func(p search.Progress) {
			fmt.Fprintf(errOut, "attempts=%d current=%s checks/s=%.0f\n", p.Attempts, p.Current, p.Rate)
		}
	}
	res, err := runSearch(ctx, engine, regime, hash, opts.maxLength, progress)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res, opts.json)
}

func printResult(w io.Writer, res *search.Result, asJson bool) error {
	if asJson {
		return json.NewEncoder(w).Encode(job.ToApiResult(res))
	}
	if res.Found {
		fmt.Fprintf(w, "found: %s\n", res.Plaintext)
	} else {
		fmt.Fprintf(w, "not found (%s)\n", res.Outcome)
	}
	fmt.Fprintf(w, "attempts: %d\ntime: %dms\nchecks/s: %.0f\n", res.Attempts, res.ElapsedMillis(), res.Rate)
	return nil
}
