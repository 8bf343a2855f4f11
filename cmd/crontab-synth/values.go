package main

import (
	"fmt"
	"math"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/grafana/kindimports/apiobject"
	"github.com/grafana/kindimports/app"
	"github.com/grafana/kindimports/chart"
	"github.com/grafana/kindimports/imports/stableexamplecom"
	"github.com/grafana/kindimports/resource"
)

// coreKinds are the built-in kinds the synth command can emit alongside CronTabs
var coreKinds = resource.NewKindGroup("", "v1")

func init() {
	namespace := resource.NewKind("", "v1", "Namespace")
	namespace.KindScope = resource.ClusterScope
	coreKinds.MustAddKind(namespace)
}

// newRegistry returns a Registry of every kind the synth command can emit
func newRegistry() (*resource.Registry, error) {
	return resource.NewRegistry(stableexamplecom.Kinds, coreKinds)
}

// Values is the contents of a values file
type Values struct {
	Chart    ChartValues     `json:"chart,omitempty"`
	CronTabs []CronTabValues `json:"crontabs"`
}

// ChartValues configures the chart all CronTabs are defined in
type ChartValues struct {
	Name                      string            `json:"name,omitempty"`
	Namespace                 string            `json:"namespace,omitempty"`
	Labels                    map[string]string `json:"labels,omitempty"`
	DisableResourceNameHashes bool              `json:"disableResourceNameHashes,omitempty"`

	// CreateNamespace adds a Namespace object for Namespace to the chart
	CreateNamespace bool `json:"createNamespace,omitempty"`
}

// CronTabValues defines a single CronTab. ID is its name within the chart,
// and Name optionally overrides the generated metadata.name.
type CronTabValues struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	stableexamplecom.CronTabProps
}

// LoadValues reads a values file. Unknown fields are an error.
func LoadValues(path string) (*Values, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read values file: %w", err)
	}
	values := &Values{}
	if err := yaml.UnmarshalStrict(raw, values); err != nil {
		return nil, fmt.Errorf("unable to parse values file '%s': %w", path, err)
	}
	return values, nil
}

// Build defines a chart with all CronTabs in values in a.
// Every CronTab is attempted, and all construction errors are returned together.
func (v *Values) Build(a *app.App) (*chart.Chart, error) {
	name := v.Chart.Name
	if name == "" {
		name = "crontabs"
	}
	c, err := chart.New(a, name, chart.Props{
		Namespace:                 v.Chart.Namespace,
		Labels:                    v.Chart.Labels,
		DisableResourceNameHashes: v.Chart.DisableResourceNameHashes,
	})
	if err != nil {
		return nil, err
	}

	if v.Chart.CreateNamespace {
		if v.Chart.Namespace == "" {
			return nil, fmt.Errorf("chart.createNamespace requires a namespace")
		}
		_, err := apiobject.FromObject(c, "namespace", &corev1.Namespace{
			TypeMeta: metav1.TypeMeta{
				APIVersion: "v1",
				Kind:       "Namespace",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name: v.Chart.Namespace,
			},
		})
		if err != nil {
			return nil, err
		}
	}

	var errs *multierror.Error
	for i, ct := range v.CronTabs {
		opts := make([]apiobject.MetadataOption, 0)
		if ct.Name != "" {
			opts = append(opts, apiobject.WithName(ct.Name))
		}
		for k, val := range ct.Labels {
			opts = append(opts, apiobject.WithLabel(k, val))
		}
		for k, val := range ct.Annotations {
			opts = append(opts, apiobject.WithAnnotation(k, val))
		}
		props := ct.CronTabProps
		if _, err := stableexamplecom.NewCronTab(c, ct.ID, &props, opts...); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("crontabs[%d]: %w", i, err))
		}
	}
	return c, errs.ErrorOrNil()
}

// Validate checks the contents of every CronTab spec: the cronSpec must be a standard five-field cron expression,
// replicas must be a non-negative whole number, and image must not be empty if set.
// The CronTab binding itself accepts any values; this check is opt-in.
func (v *Values) Validate() error {
	var errs *multierror.Error
	for i, ct := range v.CronTabs {
		if ct.Spec == nil {
			continue
		}
		if ct.Spec.CronSpec != nil {
			if _, err := cron.ParseStandard(*ct.Spec.CronSpec); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("crontabs[%d] (%s): invalid cronSpec '%s': %w", i, ct.ID, *ct.Spec.CronSpec, err))
			}
		}
		if ct.Spec.Image != nil && *ct.Spec.Image == "" {
			errs = multierror.Append(errs, fmt.Errorf("crontabs[%d] (%s): image cannot be empty", i, ct.ID))
		}
		if ct.Spec.Replicas != nil {
			r := *ct.Spec.Replicas
			if r < 0 || math.IsInf(r, 0) || r != math.Trunc(r) {
				errs = multierror.Append(errs, fmt.Errorf("crontabs[%d] (%s): replicas must be a non-negative integer, got %v", i, ct.ID, r))
			}
		}
	}
	return errs.ErrorOrNil()
}
