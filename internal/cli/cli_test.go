package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/pkg/api"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestMd5Cmd(t *testing.T) {
	out, _, err := execute(t, "md5", "ab")
	require.NoError(t, err)
	assert.Equal(t, "187ef4436122d1cc2f40dc2b92f0eba0\n", out)
}

func TestCrackCmd(t *testing.T) {
	for _, regime := range []string{"worker", "cooperative"} {
		t.Run(regime, func(t *testing.T) {
			out, _, err := execute(t, "crack", digest.Md5Hex("ab"), "--max-length", "2", "--regime", regime)
			require.NoError(t, err)
			assert.Contains(t, out, "found: ab\n")
			assert.Contains(t, out, "attempts: 694\n")
		})
	}
}

func TestCrackCmd_JsonAndProgress(t *testing.T) {
	out, errOut, err := execute(t, "crack", digest.Md5Hex("zz"), "-n", "2",
		"--digest", "md5-sum", "--progress", "--progress-every", "1000", "--json")
	require.NoError(t, err)

	var res api.BruteForceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Found)
	assert.Equal(t, "zz", res.Plaintext)
	assert.Equal(t, strings.Count(errOut, "\n"), int(res.Attempts/1000))
	assert.Contains(t, errOut, "attempts=1000 ")
}

func TestCrackCmd_NotFound(t *testing.T) {
	out, _, err := execute(t, "crack", digest.Md5Hex("zzz"), "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "not found (exhausted)")
	assert.Contains(t, out, "attempts: 62\n")
}

func TestCrackCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad hash", args: []string{"crack", "xyz"}},
		{name: "bad length", args: []string{"crack", digest.Md5Hex("a"), "-n", "11"}},
		{name: "bad digest", args: []string{"crack", digest.Md5Hex("a"), "--digest", "sha1"}},
		{name: "bad regime", args: []string{"crack", digest.Md5Hex("a"), "--regime", "fibers"}},
		{name: "missing arg", args: []string{"crack"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestBenchCmd(t *testing.T) {
	out, _, err := execute(t, "bench", "ab", "--checkpoint-every", "1000")
	require.NoError(t, err)
	for _, want := range []string{"md5-reset", "md5-sum", "noop", "worker", "cooperative", "found", "exhausted", "694", "3906"} {
		assert.Contains(t, out, want)
	}
}

func TestBenchCmd_RejectsOutsideAlphabet(t *testing.T) {
	_, _, err := execute(t, "bench", "a-b")
	assert.Error(t, err)
}

func TestRunBench_Rows(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetContext(context.Background())
	rows, err := runBench(cmd, &benchOptions{
		checkpointEvery: 1000,
		digests:         []string{"md5-sum", "noop"},
		regimes:         []string{"cooperative"},
	}, "b")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, search.OutcomeFound, rows[0].Result.Outcome)
	assert.Equal(t, uint64(12), rows[0].Result.Attempts)
	assert.Equal(t, search.OutcomeExhausted, rows[1].Result.Outcome)
	assert.Equal(t, uint64(62), rows[1].Result.Attempts)
}

func TestRunSearch_CancelledContext(t *testing.T) {
	engine := search.NewEngine(search.Config{Digest: digest.ResetDigestType, CheckpointEvery: 1000})
	for _, regime := range search.Regimes() {
		t.Run(regime.String(), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			res, err := runSearch(ctx, engine, regime, digest.Md5Hex("ZZZZZZ"), 6, nil)
			require.NoError(t, err)
			assert.Equal(t, search.OutcomeCancelled, res.Outcome)
			assert.False(t, res.Found)
		})
	}
}

func TestNewMeter_DisabledWithoutMetricsBlock(t *testing.T) {
	meter, shutdown, err := newMeter(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, meter)
	require.NotNil(t, shutdown)
	shutdown()
}
