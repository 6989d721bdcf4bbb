package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-tagger/internal/redact"
	"github.com/ironsheep/image-tagger/internal/store"
)

// execute runs the CLI with args and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	t.Setenv("IMAGE_TAGGER_CONFIG", "")

	var out, errOut bytes.Buffer
	root := New(&out, &errOut).RootCommand()
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			c := color.NRGBA{20, 20, 20, 255}
			if (x/4+y/4)%2 == 0 {
				c = color.NRGBA{230, 230, 230, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

const regionsJSON = `[{"region":[{"x":10,"y":10},{"x":60,"y":10},{"x":60,"y":60},{"x":10,"y":60}],"label":"NAME"}]`

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("dev", "unknown", "unknown") })

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "image-tagger 1.2.3")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built: 2026-01-01")
}

func TestParseRegions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"array", regionsJSON, 1, false},
		{"object", `{"regions":` + regionsJSON + `}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"object without regions", `{}`, 0, false},
		{"empty", "  ", 0, true},
		{"garbage", `[{"region":`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRegions([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRedactAndRestore(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.png")
	original, err := os.ReadFile(img)
	require.NoError(t, err)

	regions := filepath.Join(t.TempDir(), "regions.json")
	require.NoError(t, os.WriteFile(regions, []byte(regionsJSON), 0o644))

	out, err := execute(t, "redact", img, "--regions", regions)
	require.NoError(t, err)

	var res redact.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Applied)
	assert.True(t, res.BackupCreated)
	assert.True(t, res.Written)

	backup, err := os.ReadFile(img + redact.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	redacted, err := os.ReadFile(img)
	require.NoError(t, err)
	assert.NotEqual(t, original, redacted)

	out, err = execute(t, "restore", img)
	require.NoError(t, err)
	assert.Contains(t, out, `"restored": true`)

	restored, err := os.ReadFile(img)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestRedact_RegionsFromStdin(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.png")

	out, err := executeWithInput(t, `{"regions":`+regionsJSON+`}`, "redact", img, "--regions", "-")
	require.NoError(t, err)

	var res redact.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Applied)
}

func TestRedact_UsesStoredRegions(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.png")

	var reqs []redact.Request
	require.NoError(t, json.Unmarshal([]byte(regionsJSON), &reqs))
	s, err := store.OpenJSONFile(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	require.NoError(t, store.SetRegions(context.Background(), s, "a.png", reqs))
	require.NoError(t, s.Close())

	out, err := execute(t, "redact", img)
	require.NoError(t, err)

	var res redact.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Applied)
	assert.FileExists(t, img+redact.BackupSuffix)
}

func TestRedact_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "redact", filepath.Join(dir, "missing.png"), "--regions", "-")
	assert.Error(t, err, "empty stdin is not a regions document")

	_, err = executeWithInput(t, regionsJSON, "redact", filepath.Join(dir, "missing.png"), "--regions", "-")
	assert.ErrorIs(t, err, redact.ErrImageNotFound)

	_, err = execute(t, "restore", writeImage(t, dir, "b.png"))
	assert.ErrorIs(t, err, redact.ErrNoBackup)

	_, err = execute(t, "redact")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.png")

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`[store]
backend = "redis"`), 0o644))
	_, err := execute(t, "--config", bad, "restore", img)
	assert.ErrorIs(t, err, store.ErrUnknownBackend)

	_, err = execute(t, "--log-level", "loud", "restore", img)
	assert.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "restore", img)
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"a.png":[{"tag":"family"},{"region":[{"x":1,"y":1},{"x":9,"y":1},{"x":9,"y":9},{"x":1,"y":9}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(legacy), 0o644))

	out, err := execute(t, "migrate", dir)
	require.NoError(t, err)

	var res migrateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Updated)

	out, err = execute(t, "migrate", dir, "--to", "badger")
	require.NoError(t, err)
	res = migrateResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Updated, "second run has nothing to backfill")
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, filepath.Join(dir, ".image-tagger.db"), res.Target)

	db, err := store.OpenBadger(res.Target)
	require.NoError(t, err)
	defer db.Close()

	tags, err := store.Tags(context.Background(), db, "a.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"family"}, tags)

	regions, err := store.Regions(context.Background(), db, "a.png")
	require.NoError(t, err)
	assert.Len(t, regions, 1)

	_, err = execute(t, "migrate", dir, "--to", "mongo")
	assert.ErrorIs(t, err, store.ErrUnknownBackend)
}

func TestSuggest_SaveWithEdgeEngine(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 300, 120))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for x := 40; x < 241; x += 10 {
		for y := 40; y < 70; y++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
		}
	}
	path := filepath.Join(dir, "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	t.Setenv("IMAGE_TAGGER_OCR_ENGINE", "edges")
	out, err := execute(t, "suggest", path, "--save")
	require.NoError(t, err)

	var res struct {
		Name    string           `json:"name"`
		Regions []redact.Request `json:"regions"`
		Saved   bool             `json:"saved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "scan.png", res.Name)
	assert.True(t, res.Saved)
	require.NotEmpty(t, res.Regions)

	s, err := store.OpenJSONFile(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	stored, err := store.Regions(context.Background(), s, "scan.png")
	require.NoError(t, err)
	assert.Equal(t, res.Regions, stored)
}
