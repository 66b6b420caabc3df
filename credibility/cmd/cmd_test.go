package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/credibility/cmd"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := cmd.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "credibility version dev\n", out)
}

func TestAnalyze_PrintsResult(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "logging:\n  level: error\nscoring:\n  source:\n    policy: list\n")
	out, err := run(t, "",
		"--config", cfgPath, "analyze",
		"--title", "BREAKING SHOCKING NEWS TODAY",
		"--url", "https://someone.blogspot.com/post",
		"--content", "short text",
	)
	require.NoError(t, err)

	var result struct {
		Score     int      `json:"score"`
		Breakdown []string `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	// 50 - 35 (untrusted) + 15 (neutral) - 20 (caps) - 20 (short) = -10 -> 0
	assert.Equal(t, 0, result.Score)
	assert.Len(t, result.Breakdown, 4)
}

func TestAnalyze_ReadsStdin(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "logging:\n  level: error\n")
	out, err := run(t, "Prices rose 12% this year.",
		"--config", cfgPath, "analyze", "--title", "Prices", "--url", "https://kompas.com/a",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `"score"`)
	assert.Contains(t, out, "numbers or dates")
}

func TestAnalyze_MissingFields(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "logging:\n  level: error\n")
	_, err := run(t, "", "--config", cfgPath, "analyze", "--title", "t", "--content", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestSeed_FromWorkbook(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"domain", "trust_score", "category"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"kompas.com", 90, "national"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"detik.com", 80, "national"}))
	workbook := filepath.Join(dir, "seed.xlsx")
	require.NoError(t, f.SaveAs(workbook))

	cfgPath := writeConfig(t, "logging:\n  level: error\nreputation:\n  backend: sqlite\ndatabase:\n  path: "+
		filepath.Join(dir, "cred.db")+"\n")

	out, err := run(t, "", "--config", cfgPath, "seed", "--file", workbook)
	require.NoError(t, err)
	assert.Equal(t, "inserted 2, skipped 0\n", out)

	out, err = run(t, "", "--config", cfgPath, "seed", "--file", workbook)
	require.NoError(t, err)
	assert.Equal(t, "inserted 0, skipped 2\n", out)
}

func TestSources_ListsSeededRecords(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, `logging:
  level: error
reputation:
  seed:
    - domain: reuters.com
      trust_score: 85
    - domain: blogspot.com
      trust_score: 20
      category: blog
`)

	out, err := run(t, "", "--config", cfgPath, "sources", "--sort-by", "trust_score", "--order", "desc")
	require.NoError(t, err)
	assert.Contains(t, out, "reuters.com")
	assert.Contains(t, out, "blog")
	assert.Less(t, strings.Index(out, "reuters.com"), strings.Index(out, "blogspot.com"))

	out, err = run(t, "", "--config", cfgPath, "sources", "--category", "national")
	require.NoError(t, err)
	assert.Equal(t, "No sources tracked\n", out)
}
