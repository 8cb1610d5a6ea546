// Package client talks to the remote image-building service: it submits
// build requests and polls for completion.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// BuildRequest is the JSON body sent to the build service. Packages is the
// flat argument list from the reconciler: bare names are additions,
// "-"-prefixed names are removals, and the device default list is implied
// by the server.
type BuildRequest struct {
	Profile        string            `json:"profile"`
	Target         string            `json:"target"`
	Version        string            `json:"version"`
	Packages       []string          `json:"packages,omitempty"`
	Defaults       string            `json:"defaults,omitempty"` // first-boot uci-defaults script
	RootfsSizeMB   int               `json:"rootfs_size_mb,omitempty"`
	Repositories   map[string]string `json:"repositories,omitempty"`
	RepositoryKeys []string          `json:"repository_keys,omitempty"`
}

// NewBuildRequest constructs a build request from a saved profile document.
func NewBuildRequest(p *models.BuildProfile) BuildRequest {
	pc := p.CustomBuild.PackageConfiguration
	packages := make([]string, 0, len(pc.AddedPackages)+len(pc.RemovedPackages))
	packages = append(packages, pc.AddedPackages...)
	for _, name := range pc.RemovedPackages {
		packages = append(packages, "-"+name)
	}

	var repos map[string]string
	if len(p.CustomBuild.Repositories) > 0 {
		repos = make(map[string]string, len(p.CustomBuild.Repositories))
		for _, r := range p.CustomBuild.Repositories {
			repos[r.Name] = r.URL
		}
	}

	return BuildRequest{
		Profile:        p.Device.Profile,
		Target:         p.Device.Target,
		Version:        p.Device.Version,
		Packages:       packages,
		Defaults:       p.CustomBuild.UCIDefaults,
		RootfsSizeMB:   p.CustomBuild.RootfsSizeMB,
		Repositories:   repos,
		RepositoryKeys: p.CustomBuild.RepositoryKeys,
	}
}

// BuildImage is one firmware image produced by a finished build.
type BuildImage struct {
	Name   string `json:"name"`
	Type   string `json:"type"` // sysupgrade, factory, ...
	SHA256 string `json:"sha256,omitempty"`
}

// BuildStatus is the service's view of a build request.
type BuildStatus struct {
	RequestHash   string       `json:"request_hash"`
	Detail        string       `json:"detail,omitempty"` // queued, started, done, failure
	QueuePosition int          `json:"queue_position,omitempty"`
	ImagePrefix   string       `json:"image_prefix,omitempty"`
	Images        []BuildImage `json:"images,omitempty"`
	Stdout        string       `json:"stdout,omitempty"`
	Stderr        string       `json:"stderr,omitempty"`
}

// Done reports whether the build finished successfully.
func (s *BuildStatus) Done() bool { return s.Detail == "done" }

// Failed reports whether the build ended in failure.
func (s *BuildStatus) Failed() bool { return s.Detail == "failure" }

// Client is the build service client.
type Client struct {
	baseURL      string
	http         *http.Client
	log          logrus.FieldLogger
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithPollInterval sets the fixed status polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithLogger injects the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a build service client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          logrus.StandardLogger(),
		pollInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestBuild submits a build request. A 200 means the image was already
// cached and the status is final; a 202 means the build was enqueued and
// the caller should poll with the returned request hash.
func (c *Client) RequestBuild(ctx context.Context, req BuildRequest) (*BuildStatus, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/build", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{
		"profile": req.Profile,
		"target":  req.Target,
		"version": req.Version,
	}).Info("submitting build request")

	return c.do(httpReq, http.StatusOK, http.StatusAccepted)
}

// Status fetches the current status of a build request.
func (c *Client) Status(ctx context.Context, requestHash string) (*BuildStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/build/"+requestHash, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(httpReq, http.StatusOK, http.StatusAccepted)
}

// Wait polls the build status at the fixed interval until the build
// finishes, fails, or the context is cancelled. A failed build returns the
// final status together with an error.
func (c *Client) Wait(ctx context.Context, requestHash string) (*BuildStatus, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, requestHash)
		if err != nil {
			return nil, err
		}
		switch {
		case status.Done():
			return status, nil
		case status.Failed():
			return status, fmt.Errorf("build %s failed: %s", requestHash, strings.TrimSpace(status.Stderr))
		}
		c.log.WithFields(logrus.Fields{
			"hash":   requestHash,
			"detail": status.Detail,
			"queue":  status.QueuePosition,
		}).Debug("build pending")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(req *http.Request, okStatuses ...int) (*BuildStatus, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach build service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read build service response: %w", err)
	}

	accepted := false
	for _, code := range okStatuses {
		if resp.StatusCode == code {
			accepted = true
			break
		}
	}

	var status BuildStatus
	if err := json.Unmarshal(body, &status); err != nil {
		if !accepted {
			return nil, fmt.Errorf("build service returned HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to parse build service response: %w", err)
	}
	if !accepted && !status.Failed() {
		return &status, fmt.Errorf("build service returned HTTP %d: %s", resp.StatusCode, status.Detail)
	}
	return &status, nil
}
