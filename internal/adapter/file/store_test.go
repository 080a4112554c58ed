package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleStations() []domain.Station {
	return []domain.Station{
		{
			ID:       "500101001",
			Name:     "捷運市府站(3號出口)",
			District: "信義區",
			Address:  "忠孝東路/松仁路(東南側)",
			Lat:      25.0408578889,
			Lng:      121.567904444,
			City:     domain.CityTaipei,
			Bikes:    5,
			Docks:    10,
		},
		{
			ID:       "500201001",
			Name:     "板橋車站 & 公車站",
			District: "板橋區",
			Address:  "新北市板橋區文化路一段",
			Lat:      25.0136,
			Lng:      121.4624,
			City:     domain.CityNewTaipei,
			Bikes:    0,
			Docks:    18,
		},
	}
}

func TestStore_Load_WritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "src", "stations.json")
	s := NewStore(path, discardLogger())

	require.NoError(t, s.Load(context.Background(), sampleStations()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "[\n    {\n        \"sno\": \"500101001\""), text)
	assert.True(t, strings.HasSuffix(text, "]\n"))
	assert.Contains(t, text, `"sna": "捷運市府站(3號出口)"`)
	assert.Contains(t, text, `"sna": "板橋車站 & 公車站"`)
	assert.Contains(t, text, `"city": "New Taipei"`)
	assert.NotContains(t, text, `\u`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	got, err := s.Read()
	require.NoError(t, err)
	if diff := cmp.Diff(sampleStations(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Load_FieldOrder(t *testing.T) {
	data, err := Encode(sampleStations()[:1])
	require.NoError(t, err)

	keys := []string{`"sno"`, `"sna"`, `"sarea"`, `"ar"`, `"lat"`, `"lng"`, `"city"`, `"sbi"`, `"bemp"`}
	last := -1
	for _, k := range keys {
		i := strings.Index(string(data), k)
		require.Greater(t, i, last, "key %s out of order", k)
		last = i
	}
}

func TestStore_Load_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	s := NewStore(path, discardLogger())

	require.NoError(t, s.Load(context.Background(), sampleStations()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background(), sampleStations()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStore_Load_EmptyKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	s := NewStore(path, discardLogger())
	err := s.Load(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptySnapshot)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_Load_EmptyDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stations.json")
	s := NewStore(path, discardLogger())

	require.ErrorIs(t, s.Load(context.Background(), []domain.Station{}), ErrEmptySnapshot)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Load_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewStore(filepath.Join(blocker, "stations.json"), discardLogger())
	err := s.Load(context.Background(), sampleStations())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptySnapshot)
}

func TestStore_CheckReadiness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	s := NewStore(path, discardLogger())
	assert.Equal(t, path, s.Path())

	require.Error(t, s.CheckReadiness(context.Background()))

	require.NoError(t, s.Load(context.Background(), sampleStations()))
	assert.NoError(t, s.CheckReadiness(context.Background()))
}

func TestReadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sno":1}`), 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
