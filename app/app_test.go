package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/kindimports/apiobject"
	"github.com/grafana/kindimports/chart"
	"github.com/grafana/kindimports/construct"
	"github.com/grafana/kindimports/resource"
)

func testManifest(kind string) resource.Manifest {
	return resource.Manifest{
		"apiVersion": "stable.example.com/v1",
		"kind":       kind,
		"spec":       map[string]any{"image": "repo/image:tag"},
	}
}

func newTestApp(t *testing.T, cfg Config) *App {
	if cfg.Outdir == "" {
		cfg.Outdir = t.TempDir()
	}
	a := New(cfg)
	first, err := chart.New(a, "first", chart.Props{Namespace: "jobs", DisableResourceNameHashes: true})
	require.NoError(t, err)
	second, err := chart.New(a, "second", chart.Props{DisableResourceNameHashes: true})
	require.NoError(t, err)
	_, err = apiobject.New(first, "a", testManifest("CronTab"))
	require.NoError(t, err)
	_, err = apiobject.New(first, "b", testManifest("CronTab"))
	require.NoError(t, err)
	_, err = apiobject.New(second, "c", testManifest("Other"))
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	a := New(Config{})
	assert.Equal(t, DefaultOutdir, a.Outdir())
	assert.Equal(t, resource.KindEncodingYAML, a.cfg.Encoding)
	assert.Equal(t, "", a.Node().ID())
	assert.Len(t, a.PrometheusCollectors(), 3)
}

func TestApp_Render(t *testing.T) {
	a := newTestApp(t, Config{})
	rendered, err := a.Render(context.Background())
	require.NoError(t, err)
	require.Len(t, rendered, 2)

	assert.Equal(t, "first", rendered[0].Chart.Node().ID())
	require.Len(t, rendered[0].Manifests, 2)
	assert.Equal(t, map[string]any{"name": "first-a", "namespace": "jobs"}, rendered[0].Manifests[0]["metadata"])
	assert.Equal(t, map[string]any{"name": "first-b", "namespace": "jobs"}, rendered[0].Manifests[1]["metadata"])
	require.Len(t, rendered[1].Manifests, 1)
	assert.Equal(t, "Other", rendered[1].Manifests[0]["kind"])

	assert.Equal(t, 2.0, testutil.ToFloat64(a.objectsTotal.WithLabelValues("stable.example.com/v1", "CronTab")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.objectsTotal.WithLabelValues("stable.example.com/v1", "Other")))
}

func TestApp_Render_Errors(t *testing.T) {
	t.Run("validation errors are aggregated", func(t *testing.T) {
		a := New(Config{})
		c, err := chart.New(a, "chart", chart.Props{})
		require.NoError(t, err)
		_, err = apiobject.New(c, "x", testManifest("CronTab"), apiobject.WithName("Bad_One"))
		require.NoError(t, err)
		_, err = apiobject.New(c, "y", testManifest("CronTab"), apiobject.WithName("Bad_Two"))
		require.NoError(t, err)
		_, err = apiobject.New(a, "loose", testManifest("CronTab"))
		require.NoError(t, err)

		_, err = a.Render(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3 errors occurred")
		assert.Contains(t, err.Error(), "chart/x: invalid name 'Bad_One'")
		assert.Contains(t, err.Error(), "chart/y: invalid name 'Bad_Two'")
		assert.Contains(t, err.Error(), "loose: api object is not in a chart")
	})

	t.Run("canceled context", func(t *testing.T) {
		a := newTestApp(t, Config{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.Render(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestApp_Render_Registry(t *testing.T) {
	stable := resource.NewKindGroup("stable.example.com", "v1")
	stable.MustAddKind(resource.NewKind("stable.example.com", "v1", "CronTab"))
	cluster := resource.NewKind("stable.example.com", "v1", "Other")
	cluster.KindScope = resource.ClusterScope
	stable.MustAddKind(cluster)
	registry, err := resource.NewRegistry(stable)
	require.NoError(t, err)

	t.Run("cluster-scoped kinds have no namespace", func(t *testing.T) {
		a := newTestApp(t, Config{Registry: registry})
		rendered, err := a.Render(context.Background())
		require.NoError(t, err)
		require.Len(t, rendered, 2)
		assert.Equal(t, "jobs", rendered[0].Manifests[0]["metadata"].(map[string]any)["namespace"])

		c, err := chart.New(a, "third", chart.Props{Namespace: "jobs", DisableResourceNameHashes: true})
		require.NoError(t, err)
		_, err = apiobject.New(c, "d", testManifest("Other"))
		require.NoError(t, err)
		rendered, err = a.Render(context.Background())
		require.NoError(t, err)
		require.Len(t, rendered, 3)
		assert.Equal(t, map[string]any{"name": "third-d"}, rendered[2].Manifests[0]["metadata"])
	})

	t.Run("unregistered kind", func(t *testing.T) {
		a := newTestApp(t, Config{Registry: registry})
		c, err := chart.New(a, "third", chart.Props{})
		require.NoError(t, err)
		_, err = apiobject.New(c, "unknown", testManifest("Unknown"))
		require.NoError(t, err)
		_, err = a.Render(context.Background())
		assert.ErrorContains(t, err, "third/unknown: kind stable.example.com/v1/Unknown is not registered")
	})
}

func TestApp_Synth(t *testing.T) {
	t.Run("file per chart", func(t *testing.T) {
		a := newTestApp(t, Config{})
		files, err := a.Synth(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(a.Outdir(), "0000-first.k8s.yaml"),
			filepath.Join(a.Outdir(), "0001-second.k8s.yaml"),
		}, files)

		f, err := os.Open(files[0])
		require.NoError(t, err)
		defer f.Close()
		manifests, err := resource.ReadManifests(f, resource.KindEncodingYAML)
		require.NoError(t, err)
		require.Len(t, manifests, 2)
		assert.Equal(t, "CronTab", manifests[0]["kind"])
		assert.Equal(t, map[string]any{"image": "repo/image:tag"}, manifests[0]["spec"])
		assert.Equal(t, 0.0, testutil.ToFloat64(a.errorsTotal))
	})

	t.Run("charts with colliding names get distinct files", func(t *testing.T) {
		a := New(Config{Outdir: t.TempDir()})
		for _, id := range []string{"web", "Web", "_"} {
			c, err := chart.New(a, id, chart.Props{})
			require.NoError(t, err)
			_, err = apiobject.New(c, "obj", testManifest(id))
			require.NoError(t, err)
		}

		files, err := a.Synth(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(a.Outdir(), "0000-web.k8s.yaml"),
			filepath.Join(a.Outdir(), "0001-web.k8s.yaml"),
			filepath.Join(a.Outdir(), "0002.k8s.yaml"),
		}, files)
		for i, kind := range []string{"web", "Web", "_"} {
			f, err := os.Open(files[i])
			require.NoError(t, err)
			manifests, err := resource.ReadManifests(f, resource.KindEncodingYAML)
			f.Close()
			require.NoError(t, err)
			require.Len(t, manifests, 1)
			assert.Equal(t, kind, manifests[0]["kind"])
		}
	})

	t.Run("single json file", func(t *testing.T) {
		a := newTestApp(t, Config{SingleFile: true, Encoding: resource.KindEncodingJSON})
		files, err := a.Synth(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(a.Outdir(), "app.k8s.json")}, files)

		f, err := os.Open(files[0])
		require.NoError(t, err)
		defer f.Close()
		manifests, err := resource.ReadManifests(f, resource.KindEncodingJSON)
		require.NoError(t, err)
		assert.Len(t, manifests, 3)
	})

	t.Run("nested output directory is created", func(t *testing.T) {
		a := newTestApp(t, Config{Outdir: filepath.Join(t.TempDir(), "nested", "dist")})
		files, err := a.Synth(context.Background())
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("failure is counted", func(t *testing.T) {
		a := New(Config{Outdir: t.TempDir()})
		_, err := apiobject.New(a, "loose", testManifest("CronTab"))
		require.NoError(t, err)
		_, err = a.Synth(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(a.errorsTotal))
	})
}

func TestApp_SynthYAML(t *testing.T) {
	a := newTestApp(t, Config{})
	out, err := a.SynthYAML(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "kind: "))
	assert.Equal(t, 2, strings.Count(out, "---\n"))

	manifests, err := resource.ReadManifests(strings.NewReader(out), resource.KindEncodingYAML)
	require.NoError(t, err)
	assert.Len(t, manifests, 3)
}

func TestApp_Charts(t *testing.T) {
	a := New(Config{})
	outer, err := chart.New(a, "outer", chart.Props{})
	require.NoError(t, err)
	g, err := construct.New(outer, "group")
	require.NoError(t, err)
	inner, err := chart.New(g, "inner", chart.Props{})
	require.NoError(t, err)
	assert.Equal(t, []*chart.Chart{outer, inner}, a.Charts())
	assert.Equal(t, "0001-outer-group-inner", chartFileName(1, inner))
}
