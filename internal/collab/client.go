// Package collab holds the clients for the independent external modules the
// recompute consults: the metric/stress-energy solver, the dynamic-Casimir
// module, and the warp module. Each is optional: an unconfigured client is
// nil, a failed call is logged and degraded to a missing value. A
// collaborator can slow a recompute down but never break it.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/needle-hull/internal/physics"
	"github.com/talgya/needle-hull/internal/snapshot"
)

// Client calls one collaborator endpoint. Implements physics.Collaborator.
type Client struct {
	name string
	url  string
	http *http.Client
}

// newClient returns nil when no URL is configured (collaborator disabled).
func newClient(name, url string) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		name: name,
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewMetric builds the metric/stress-energy collaborator client.
func NewMetric(url string) *Client { return newClient(snapshot.CollabMetric, url) }

// NewDynamicCasimir builds the dynamic-Casimir collaborator client.
func NewDynamicCasimir(url string) *Client { return newClient(snapshot.CollabDynamicCasimir, url) }

// NewWarpModule builds the warp-module collaborator client.
func NewWarpModule(url string) *Client { return newClient(snapshot.CollabWarpModule, url) }

// Name identifies the collaborator in the state's output map.
func (c *Client) Name() string { return c.name }

// Enabled reports whether the client is configured.
func (c *Client) Enabled() bool { return c != nil && c.url != "" }

// request is the subset of state a collaborator needs.
type request struct {
	Mode          string     `json:"mode"`
	HullAxesM     [3]float64 `json:"hullAxesM"`
	DutyEffective float64    `json:"dutyEffective"`
	GapNm         float64    `json:"gapNm"`
	ModFreqHz     float64    `json:"modFreqHz"`
	PowerAvgMW    float64    `json:"powerAvgMW"`
	ExoticMassKg  float64    `json:"exoticMassKg"`
	GammaGeo      float64    `json:"gammaGeo"`
}

// response carries the single diagnostic value back.
type response struct {
	Value float64 `json:"value"`
	Error string  `json:"error,omitempty"`
}

// Evaluate posts the finished state to the collaborator and returns its
// diagnostic value.
func (c *Client) Evaluate(ctx context.Context, s physics.PipelineState) (float64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("collaborator %s not configured", c.name)
	}

	body, err := json.Marshal(request{
		Mode:          string(s.Mode),
		HullAxesM:     s.HullAxesM,
		DutyEffective: s.DutyEffective,
		GapNm:         s.GapNm,
		ModFreqHz:     s.ModFreqHz,
		PowerAvgMW:    s.PowerAvgMW,
		ExoticMassKg:  s.ExoticMassKg,
		GammaGeo:      s.GammaGeo,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s returned %d", c.name, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read %s response: %w", c.name, err)
	}

	var out response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("parse %s response: %w", c.name, err)
	}
	if out.Error != "" {
		return 0, fmt.Errorf("%s: %s", c.name, out.Error)
	}
	return out.Value, nil
}

// Set assembles the configured collaborators, skipping nil clients.
func Set(metricURL, dynCasimirURL, warpURL string) []physics.Collaborator {
	var out []physics.Collaborator
	for _, c := range []*Client{
		NewMetric(metricURL),
		NewDynamicCasimir(dynCasimirURL),
		NewWarpModule(warpURL),
	} {
		if c.Enabled() {
			out = append(out, c)
		}
	}
	return out
}
