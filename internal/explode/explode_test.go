package explode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/syncfan/internal/config"
	"github.com/specialistvlad/syncfan/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree creates the given relative directories and files under a fresh root.
func tree(t *testing.T, dirs []string, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte("data"), 0o644))
	}
	return root
}

func TestExplode_ZeroStepsIsUnchanged(t *testing.T) {
	spec := config.JobSpec{
		Source:      "/src",
		Destination: "/dst",
		Exclusions:  []string{"x"},
		Options:     []string{"-a"},
	}

	got, err := Explode(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Exploded)
	assert.Equal(t, spec, got[0].JobSpec)
	assert.Empty(t, got[0].ParentSource)
	assert.Empty(t, got[0].ParentDestination)
}

func TestExplode_OneStepIgnoresFiles(t *testing.T) {
	src := tree(t, []string{"y", "x"}, []string{"f"})
	dst := t.TempDir()

	got, err := Explode(context.Background(), config.JobSpec{Source: src, Destination: dst, Steps: 1, Options: []string{"-a"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, name := range []string{"x", "y"} {
		assert.True(t, got[i].Exploded)
		assert.Equal(t, filepath.Join(src, name), got[i].Source)
		assert.Equal(t, filepath.Join(dst, name), got[i].Destination)
		assert.Equal(t, src, got[i].ParentSource)
		assert.Equal(t, dst, got[i].ParentDestination)
		assert.Equal(t, 1, got[i].Steps)
		assert.Equal(t, []string{"-a"}, got[i].Options)
	}
}

func TestExplode_ExactDepth(t *testing.T) {
	src := tree(t,
		[]string{"a/1", "a/2", "b/3", "c"},
		[]string{"a/file", "b/3/deep.txt"},
	)
	dst := "/backup"

	got, err := Explode(context.Background(), config.JobSpec{Source: src, Destination: dst, Steps: 2})
	require.NoError(t, err)

	var rels []string
	for _, s := range got {
		rel, err := filepath.Rel(src, s.Source)
		require.NoError(t, err)
		rels = append(rels, rel)
		assert.Equal(t, filepath.Join(dst, rel), s.Destination)
	}
	assert.Equal(t, []string{"a/1", "a/2", "b/3"}, rels)
}

func TestExplode_NoDirectoriesAtDepthYieldsNothing(t *testing.T) {
	src := tree(t, []string{"a"}, []string{"a/file"})

	got, err := Explode(context.Background(), config.JobSpec{Source: src, Destination: "/dst", Steps: 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExplode_VariantsDoNotShareSlices(t *testing.T) {
	src := tree(t, []string{"x", "y"}, nil)

	got, err := Explode(context.Background(), config.JobSpec{Source: src, Destination: "/dst", Steps: 1, Options: []string{"-a"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got[0].Options[0] = "-z"
	assert.Equal(t, []string{"-a"}, got[1].Options)
}

func TestExplode_UnlistableSource(t *testing.T) {
	_, err := Explode(context.Background(), config.JobSpec{Source: filepath.Join(t.TempDir(), "missing"), Destination: "/dst", Steps: 1})
	require.ErrorContains(t, err, "failed to explode job")
}

func TestAll_FlattensInOrder(t *testing.T) {
	src := tree(t, []string{"x", "y"}, nil)
	specs := []*config.JobSpec{
		{Name: "first", Source: src, Destination: "/d1"},
		{Name: "second", Source: src, Destination: "/d2", Steps: 1},
		{Name: "third", Source: src, Destination: "/d3", Steps: 3},
	}

	got, err := All(context.Background(), specs)
	require.NoError(t, err)

	var names []string
	var exploded []bool
	for _, s := range got {
		names = append(names, s.Name)
		exploded = append(exploded, s.Exploded)
	}
	assert.Equal(t, []string{"first", "second", "second"}, names)
	assert.Equal(t, []bool{false, true, true}, exploded)
	assert.IsType(t, []job.Spec{}, got)
}
