package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baserah/letters/pkg/config"
	"github.com/baserah/letters/pkg/letters"
)

const baseDoc = `{
  "letters": {
    "ب": {"letter": "ب", "name": "الباء", "developer_meanings": [{"meaning": "بيت"}]}
  },
  "metadata": {"letters_count": 1, "version": "1.0"}
}`

const suppDoc = `{
  "letters": {
    "ب": {"name": "باء", "meanings": [{"meaning": "بيت", "type": "primary"}, {"meaning": "بناء", "type": "secondary"}]},
    "ة": {"name": "تاء مربوطة", "meanings": [{"meaning": "تأنيث", "type": "primary"}]}
  }
}`

// workspace runs each test in its own directory, holding the historical
// default file names, with no config file in reach.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvConfigFile, "")
	require.NoError(t, os.WriteFile("unified_letters_database_original.json", []byte(baseDoc), 0o644))
	require.NoError(t, os.WriteFile("letter-meanings-extracted.json", []byte(suppDoc), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMerge_DefaultFileNames(t *testing.T) {
	workspace(t)

	out, err := run(t, "merge")
	require.NoError(t, err, out)
	assert.Contains(t, out, "New meanings added:       1")
	assert.Contains(t, out, "Letters not in base:      1 (ة)")

	merged, err := letters.LoadStore("unified_letters_database_updated.json")
	require.NoError(t, err)
	rec := merged.Letters["ب"]
	require.NotNil(t, rec)
	require.Len(t, rec.Meanings, 2)
	assert.Equal(t, "بناء", rec.Meanings[1].Text)
	assert.Equal(t, "hurof_md_integration", rec.UpdatedBy)
	assert.Equal(t, 1, merged.Metadata.LettersCount)
	assert.Equal(t, "1.1", merged.Metadata.Version)
	assert.NotContains(t, merged.Letters, "ة")
}

func TestMerge_FlagsAndArchive(t *testing.T) {
	dir := workspace(t)
	outPath := filepath.Join(dir, "merged.json")
	dbPath := filepath.Join(dir, "history.db")

	out, err := run(t, "merge", "--on-missing", "create", "--out", outPath, "--archive-db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Archived snapshot 1")

	merged, err := letters.LoadStore(outPath)
	require.NoError(t, err)
	assert.Contains(t, merged.Letters, "ة")
	assert.Equal(t, 2, merged.Metadata.LettersCount)

	out, err = run(t, "archive", "show", "--db", dbPath, "--letter", "ب")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 meanings")
	assert.Contains(t, out, "بناء")

	out, err = run(t, "archive", "list", "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "merge letter-meanings-extracted.json")

	out, err = run(t, "archive", "show", "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Snapshot 1: 2 letters")
	assert.Contains(t, out, "تاء مربوطة")
	assert.Contains(t, out, "hurof_md_integration")
}

func TestMerge_ArchiveFailureSaysStoreWasWritten(t *testing.T) {
	dir := workspace(t)
	badDB := filepath.Join(dir, "no-such-dir", "history.db")

	_, err := run(t, "merge", "--archive-db", badDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unified_letters_database_updated.json was written but not archived")
	_, statErr := os.Stat("unified_letters_database_updated.json")
	assert.NoError(t, statErr)
}

func TestCodegen_FailedWriteLeavesNoFile(t *testing.T) {
	dir := workspace(t)
	_, err := run(t, "merge")
	require.NoError(t, err)
	_, err = run(t, "add-missing")
	require.NoError(t, err)

	out := filepath.Join(dir, "gen", "engine.ts")
	_, err = run(t, "codegen", "--out", out)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Dir(out))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMerge_KeepsBaseKeyOrder(t *testing.T) {
	workspace(t)
	base := `{
  "metadata": {
    "version": "1.0",
    "letters_count": 2
  },
  "letters": {
    "ي": {
      "name": "الياء",
      "letter": "ي"
    },
    "ب": {
      "name": "الباء",
      "letter": "ب",
      "developer_meanings": [
        {
          "meaning": "بيت",
          "strength": 1.0
        }
      ]
    }
  }
}
`
	require.NoError(t, os.WriteFile("unified_letters_database_original.json", []byte(base), 0o644))

	_, err := run(t, "merge")
	require.NoError(t, err)
	raw, err := os.ReadFile("unified_letters_database_updated.json")
	require.NoError(t, err)
	got := string(raw)

	assert.Less(t, strings.Index(got, `"metadata"`), strings.Index(got, `"letters"`))
	assert.Less(t, strings.Index(got, `"ي": {`), strings.Index(got, `"ب": {`))
	assert.Contains(t, got, `"ي": {
      "name": "الياء",
      "letter": "ي"
    },`, "untouched records are written as read")
	assert.Contains(t, got, `{
          "meaning": "بيت",
          "strength": 1.0
        },`, "existing meanings keep their key order")
}

func TestMerge_DryRunWritesNothing(t *testing.T) {
	workspace(t)

	out, err := run(t, "merge", "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Dry run")
	_, err = os.Stat("unified_letters_database_updated.json")
	assert.True(t, os.IsNotExist(err))
}

func TestMerge_FatalInputLeavesNoOutput(t *testing.T) {
	workspace(t)
	require.NoError(t, os.WriteFile("unified_letters_database_original.json", []byte(`{"metadata": {}}`), 0o644))

	_, err := run(t, "merge")
	require.Error(t, err)
	assert.ErrorIs(t, err, letters.ErrSchema)
	_, statErr := os.Stat("unified_letters_database_updated.json")
	assert.True(t, os.IsNotExist(statErr))

	_, err = run(t, "merge", "--supplement", "missing.json")
	assert.ErrorIs(t, err, letters.ErrInput)
}

func TestMerge_BadPolicyFromEnv(t *testing.T) {
	workspace(t)
	t.Setenv("LETTERS_MERGE_DEDUP", "fuzzy")

	_, err := run(t, "merge")
	assert.Error(t, err)
}

func TestPipeline_AddMissingThenCodegen(t *testing.T) {
	workspace(t)

	_, err := run(t, "merge")
	require.NoError(t, err)

	out, err := run(t, "add-missing")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added ء آ")
	assert.Contains(t, out, "Total letters: 3")

	complete, err := letters.LoadStore("unified_letters_database_complete.json")
	require.NoError(t, err)
	assert.Equal(t, "1.2", complete.Metadata.Version)

	out, err = run(t, "codegen")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote letter_engine_initialization.ts")

	code, err := os.ReadFile("letter_engine_initialization.ts")
	require.NoError(t, err)
	text := string(code)
	assert.True(t, strings.HasPrefix(text, "  /**"))
	assert.True(t, strings.HasSuffix(text, "  }"))
	assert.Contains(t, text, "this.addLetterMeaning('ء', 'عنصر المفاجأة', MeaningType.PRIMARY, 1.0, ['فجأة', 'بدأ', 'نشأ']);")
	assert.Contains(t, text, "this.addLetterMeaning('ب', 'بناء', MeaningType.SECONDARY, 1.0, []);")
	assert.Less(t, strings.Index(text, "// ء"), strings.Index(text, "// ب"))
}

func TestValidate(t *testing.T) {
	workspace(t)

	out, err := run(t, "validate", "--in", "unified_letters_database_original.json")
	require.NoError(t, err, out)
	assert.Contains(t, out, "valid store, 1 letters, 0 warnings")

	out, err = run(t, "validate", "--supplement", "--in", "letter-meanings-extracted.json")
	require.NoError(t, err, out)
	assert.Contains(t, out, "valid supplement, 2 letters")

	require.NoError(t, os.WriteFile("odd.json", []byte(`{"letters": {"ال": {}}, "metadata": {"letters_count": 3}}`), 0o644))
	out, err = run(t, "validate", "--in", "odd.json")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 warnings")

	_, err = run(t, "validate", "--in", "odd.json", "--strict")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "letters dev")
}
