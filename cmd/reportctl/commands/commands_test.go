package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportd/pkg/contracts/domain"
)

const sampleFixtures = "../../../internal/store/fixtures/testdata/sample.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REPORTD_STORE_DRIVER", "memory")

	// flag variables are package level, reset them between runs
	configPath, storeDSN, fixturesPath, verbose = "", "", "", false

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExportCommand_Stdout(t *testing.T) {
	out, err := run(t, "export", "--fixtures", sampleFixtures,
		"--kind", "transaction", "--format", "tabular", "--from", "2024-01-01", "--to", "2024-01-31")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,amount,counterpartyName,counterpartyEmail,status,date,method", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"tx-2",25.5,`))
	assert.True(t, strings.HasPrefix(lines[2], `"tx-1",50,`))
}

func TestExportCommand_Dir(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "export", "--fixtures", sampleFixtures,
		"--kind", "person", "--format", "workbook", "--dir", "-o", dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "person-report-"))
	assert.Equal(t, ".xlsx", filepath.Ext(entries[0].Name()))
}

func TestExportCommand_InvalidRequest(t *testing.T) {
	_, err := run(t, "export", "--kind", "planet")
	assert.Error(t, err)
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "summary", "--fixtures", sampleFixtures, "--kind", "transaction")
	require.NoError(t, err)

	var summary domain.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, domain.EntityKindTransaction, summary.Kind)
	assert.Equal(t, 175.5, summary.Sums["totalAmount"])
}

func TestSeedCommand(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "reports.db")

	out, err := run(t, "--db", dsn, "--fixtures", sampleFixtures, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 8 records from sample.yaml\n", out)

	out, err = run(t, "--db", dsn, "seed", sampleFixtures)
	require.NoError(t, err)
	assert.Equal(t, "seeded 8 records from sample.yaml\n", out)

	out, err = run(t, "--db", dsn, "summary", "--kind", "sponsor")
	require.NoError(t, err)
	assert.Contains(t, out, `"ACTIVE"`)
}

func TestSeedCommand_Errors(t *testing.T) {
	_, err := run(t, "seed", sampleFixtures)
	assert.Error(t, err, "memory driver")

	_, err = run(t, "--db", "file:"+filepath.Join(t.TempDir(), "r.db"), "seed")
	assert.Error(t, err, "no fixtures")
}

func TestExportCommand_CompletesFlagValues(t *testing.T) {
	out, err := run(t, "__complete", "export", "--format", "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"tabular", "document", "workbook", ":4"}, lines)
}
