package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/grafana/kindimports/apiobject"
	"github.com/grafana/kindimports/chart"
	"github.com/grafana/kindimports/construct"
	"github.com/grafana/kindimports/logging"
	"github.com/grafana/kindimports/metrics"
	"github.com/grafana/kindimports/names"
	"github.com/grafana/kindimports/resource"
)

const (
	// DefaultOutdir is the directory Synth writes to if Config.Outdir is empty
	DefaultOutdir = "dist"

	singleFileName = "app"
	fileSuffix     = ".k8s."
)

// Config is the configuration for an App
type Config struct {
	// Outdir is the directory manifests are written to by Synth. Defaults to DefaultOutdir.
	Outdir string
	// Encoding is the encoding of synthesized manifests. Defaults to resource.KindEncodingYAML.
	Encoding resource.KindEncoding
	// SingleFile writes all charts to a single file instead of one file per chart
	SingleFile bool
	// MetricsConfig is used to namespace the App's prometheus collectors
	MetricsConfig metrics.Config
	// Registry, if set, restricts API objects to registered kinds.
	// Objects of cluster-scoped kinds are rendered without a namespace.
	Registry *resource.Registry
}

// ChartManifests are the rendered manifests of a single chart
type ChartManifests struct {
	Chart     *chart.Chart
	Manifests []map[string]any
}

// App is the root of a construct tree. It validates the tree and synthesizes the API objects of each chart into
// manifest files.
type App struct {
	node *construct.Node
	cfg  Config

	objectsTotal  *prometheus.CounterVec
	errorsTotal   prometheus.Counter
	synthDuration prometheus.Histogram
}

var (
	_ construct.Construct = &App{}
	_ metrics.Provider    = &App{}
)

// New returns a new App using the provided Config, with defaults applied for empty values
func New(cfg Config) *App {
	if cfg.Outdir == "" {
		cfg.Outdir = DefaultOutdir
	}
	if cfg.Encoding == resource.KindEncodingUnknown {
		cfg.Encoding = resource.KindEncodingYAML
	}
	a := &App{
		cfg: cfg,
		objectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.MetricsConfig.Namespace,
			Subsystem: "synth",
			Name:      "objects_total",
			Help:      "Total number of API objects rendered by synthesis, by apiVersion and kind",
		}, []string{"api_version", "kind"}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.MetricsConfig.Namespace,
			Subsystem: "synth",
			Name:      "errors_total",
			Help:      "Total number of failed syntheses",
		}),
		synthDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.MetricsConfig.Namespace,
			Subsystem: "synth",
			Name:      "duration_seconds",
			Help:      "Time spent rendering and writing manifests",
			Buckets:   metrics.LatencyBuckets,
		}),
	}
	a.node = construct.NewRoot(a)
	return a
}

// Node returns the App's root construct Node
func (a *App) Node() *construct.Node {
	return a.node
}

// Outdir returns the directory Synth writes to
func (a *App) Outdir() string {
	return a.cfg.Outdir
}

// PrometheusCollectors returns the collectors the App records synthesis metrics with
func (a *App) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{a.objectsTotal, a.errorsTotal, a.synthDuration}
}

// Charts returns all charts in the App, in pre-order
func (a *App) Charts() []*chart.Chart {
	charts := make([]*chart.Chart, 0)
	for _, n := range a.node.FindAll() {
		if c, ok := n.Host().(*chart.Chart); ok {
			charts = append(charts, c)
		}
	}
	return charts
}

// Render validates the construct tree and renders every API object, grouped by the chart which directly contains it.
// Validation errors from all constructs are returned together.
func (a *App) Render(ctx context.Context) ([]ChartManifests, error) {
	log := logging.FromContext(ctx)
	errs := multierror.Append(nil, a.node.Validate())
	byChart := make(map[*chart.Chart][]*apiobject.APIObject)
	for _, n := range a.node.FindAll() {
		obj, ok := apiobject.Of(n.Host())
		if !ok {
			continue
		}
		if obj.Chart() == nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: api object is not in a chart", n.Path()))
			continue
		}
		if a.cfg.Registry != nil {
			if _, ok := a.cfg.Registry.KindFor(obj.APIVersionKind()); !ok {
				errs = multierror.Append(errs, fmt.Errorf("%s: kind %s is not registered", n.Path(), obj.APIVersionKind()))
				continue
			}
		}
		byChart[obj.Chart()] = append(byChart[obj.Chart()], obj)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	rendered := make([]ChartManifests, 0)
	for _, c := range a.Charts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cm := ChartManifests{
			Chart:     c,
			Manifests: make([]map[string]any, 0, len(byChart[c])),
		}
		for _, obj := range byChart[c] {
			m, err := obj.ToJSON()
			if err != nil {
				return nil, fmt.Errorf("unable to render '%s': %w", obj.Node().Path(), err)
			}
			if a.isClusterScoped(obj) {
				if meta, ok := m["metadata"].(map[string]any); ok {
					delete(meta, "namespace")
				}
			}
			cm.Manifests = append(cm.Manifests, m)
			a.objectsTotal.WithLabelValues(obj.APIVersion(), obj.Kind()).Inc()
		}
		log.DebugContext(ctx, "rendered chart", "chart", c.Node().Path(), "objects", len(cm.Manifests))
		rendered = append(rendered, cm)
	}
	return rendered, nil
}

// Synth renders all charts and writes them to the Outdir, returning the paths of the written files.
// Each chart is written to its own file unless Config.SingleFile is set.
func (a *App) Synth(ctx context.Context) (files []string, err error) {
	ctx, span := otel.Tracer("github.com/grafana/kindimports/app").Start(ctx, "App.Synth")
	defer span.End()
	start := time.Now()
	log := logging.FromContext(ctx).With("outdir", a.cfg.Outdir)
	defer func() {
		a.synthDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			a.errorsTotal.Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.ErrorContext(ctx, "synthesis failed", "error", err)
		}
	}()

	rendered, err := a.Render(ctx)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(a.cfg.Outdir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}

	ext := resource.EncodingExtension(a.cfg.Encoding)
	files = make([]string, 0)
	if a.cfg.SingleFile {
		all := make([]map[string]any, 0)
		for _, cm := range rendered {
			all = append(all, cm.Manifests...)
		}
		path := filepath.Join(a.cfg.Outdir, singleFileName+fileSuffix+ext)
		if err = a.writeFile(path, all); err != nil {
			return nil, err
		}
		files = append(files, path)
	} else {
		for i, cm := range rendered {
			path := filepath.Join(a.cfg.Outdir, chartFileName(i, cm.Chart)+fileSuffix+ext)
			if err = a.writeFile(path, cm.Manifests); err != nil {
				return nil, err
			}
			files = append(files, path)
		}
	}
	span.SetAttributes(attribute.Int("synth.files", len(files)))
	log.InfoContext(ctx, "synthesized manifests", "files", len(files))
	return files, nil
}

// SynthYAML renders all charts into a single multi-document YAML string, without writing to disk
func (a *App) SynthYAML(ctx context.Context) (string, error) {
	rendered, err := a.Render(ctx)
	if err != nil {
		return "", err
	}
	all := make([]map[string]any, 0)
	for _, cm := range rendered {
		all = append(all, cm.Manifests...)
	}
	buf := bytes.Buffer{}
	if err := resource.WriteManifests(&buf, resource.KindEncodingYAML, all...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (a *App) isClusterScoped(obj *apiobject.APIObject) bool {
	if a.cfg.Registry == nil {
		return false
	}
	k, ok := a.cfg.Registry.KindFor(obj.APIVersionKind())
	return ok && k.Scope() == resource.ClusterScope
}

func (a *App) writeFile(path string, manifests []map[string]any) error {
	buf := bytes.Buffer{}
	if err := resource.WriteManifests(&buf, a.cfg.Encoding, manifests...); err != nil {
		return fmt.Errorf("unable to encode '%s': %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	return nil
}

// chartFileName returns the file name (without extension) for the chart at index in pre-order.
// The index prefix keeps names unique when chart paths normalize to the same label, and orders the files as the
// charts were defined.
func chartFileName(index int, c *chart.Chart) string {
	label := names.ToDNSLabel(c.Node().PathComponents(), names.Options{DisableHash: true})
	if label == "" {
		return fmt.Sprintf("%04d", index)
	}
	return fmt.Sprintf("%04d-%s", index, label)
}
