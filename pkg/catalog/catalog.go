package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fwselect/fwselect-cli/pkg/index"
	"github.com/fwselect/fwselect-cli/pkg/models"
)

// Catalog aggregates parsed packages from multiple feeds into one
// addressable collection keyed by package name. Name collisions across
// feeds resolve last-writer-wins, with feeds applied in the fixed
// architecture, target, custom order the caller passes them in.
type Catalog struct {
	packages map[string]models.Package
	parser   *index.Parser
	fetcher  *Fetcher
	log      logrus.FieldLogger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFetcher overrides the default HTTP fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(c *Catalog) { c.fetcher = f }
}

// WithLogger injects the logger handed to the catalog and its parser.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Catalog) { c.log = log }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		packages: make(map[string]models.Package),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = NewFetcher(nil, c.log)
	}
	c.parser = index.NewParser(c.log)
	return c
}

// FeedResult reports the outcome of loading one feed.
type FeedResult struct {
	Feed     models.Feed
	Packages int
	Err      error
}

// LoadFeed fetches, parses, and merges a single feed. Fetch and binary
// decode errors are returned to the caller; they never affect records
// already merged from other feeds.
func (c *Catalog) LoadFeed(ctx context.Context, feed models.Feed) (int, error) {
	payload, err := c.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return 0, err
	}
	pkgs, err := c.parser.Parse(feed, payload)
	if err != nil {
		return 0, err
	}
	c.Merge(pkgs)
	return len(pkgs), nil
}

// LoadFeeds fetches all feeds concurrently but applies the merges strictly
// in request order, so the catalog outcome does not depend on which fetch
// happens to finish first. A failed feed is reported in its result and does
// not abort the sibling feeds.
func (c *Catalog) LoadFeeds(ctx context.Context, feeds []models.Feed) []FeedResult {
	type fetched struct {
		payload []byte
		err     error
	}
	payloads := make([]fetched, len(feeds))

	var wg sync.WaitGroup
	for i, feed := range feeds {
		wg.Add(1)
		go func(i int, feed models.Feed) {
			defer wg.Done()
			payload, err := c.fetcher.Fetch(ctx, feed.URL)
			payloads[i] = fetched{payload: payload, err: err}
		}(i, feed)
	}
	wg.Wait()

	results := make([]FeedResult, len(feeds))
	for i, feed := range feeds {
		results[i] = FeedResult{Feed: feed}
		if payloads[i].err != nil {
			results[i].Err = payloads[i].err
			c.log.WithField("source", feed.Source).Warnf("feed failed: %v", payloads[i].err)
			continue
		}
		pkgs, err := c.parser.Parse(feed, payloads[i].payload)
		if err != nil {
			results[i].Err = err
			c.log.WithField("source", feed.Source).Warnf("feed failed: %v", err)
			continue
		}
		c.Merge(pkgs)
		results[i].Packages = len(pkgs)
	}
	return results
}

// Merge folds parsed records into the catalog, later records overwriting
// earlier ones with the same name.
func (c *Catalog) Merge(pkgs []models.Package) {
	for _, pkg := range pkgs {
		c.packages[pkg.Name] = pkg
	}
}

// Get looks up a package by name.
func (c *Catalog) Get(name string) (models.Package, bool) {
	pkg, ok := c.packages[name]
	return pkg, ok
}

// Len returns the number of distinct package names in the catalog.
func (c *Catalog) Len() int {
	return len(c.packages)
}

// Filter is a conjunctive search filter: every non-empty field must match.
type Filter struct {
	Query        string // case-insensitive substring of name or description
	Section      string // exact
	Architecture string // exact
	Source       string // exact
}

// Search returns the packages matching the filter, sorted by name.
func (c *Catalog) Search(f Filter) []models.Package {
	query := strings.ToLower(f.Query)

	var out []models.Package
	for _, pkg := range c.packages {
		if query != "" &&
			!strings.Contains(strings.ToLower(pkg.Name), query) &&
			!strings.Contains(strings.ToLower(pkg.Description), query) {
			continue
		}
		if f.Section != "" && pkg.Section != f.Section {
			continue
		}
		if f.Architecture != "" && pkg.Architecture != f.Architecture {
			continue
		}
		if f.Source != "" && pkg.Source != f.Source {
			continue
		}
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Sections lists the known sections, deduplicated and sorted.
func (c *Catalog) Sections() []string {
	seen := make(map[string]struct{})
	for _, pkg := range c.packages {
		if pkg.Section != "" {
			seen[pkg.Section] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Sources lists the known source tags, deduplicated and sorted.
func (c *Catalog) Sources() []string {
	seen := make(map[string]struct{})
	for _, pkg := range c.packages {
		if pkg.Source != "" {
			seen[pkg.Source] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// DependencyClosure returns the transitive forward closure over Depends
// starting at name, in depth-first, first-dependency-first discovery order.
// Each name is visited at most once, which also makes dependency cycles
// safe. Names absent from the catalog still appear in the closure; they
// just cannot be expanded further.
func (c *Catalog) DependencyClosure(name string) []string {
	visited := make(map[string]struct{})
	var order []string

	var walk func(n string)
	walk = func(n string) {
		if _, ok := visited[n]; ok {
			return
		}
		visited[n] = struct{}{}
		order = append(order, n)
		if pkg, ok := c.packages[n]; ok {
			for _, dep := range pkg.Depends {
				walk(dep)
			}
		}
	}
	walk(name)
	return order
}

// Dependents returns every package whose Depends list contains name,
// sorted. Computed by full scan; the catalog is small enough that a
// reverse index is not worth maintaining eagerly.
func (c *Catalog) Dependents(name string) []string {
	var out []string
	for _, pkg := range c.packages {
		for _, dep := range pkg.Depends {
			if dep == name {
				out = append(out, pkg.Name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// All returns every record in the catalog, sorted by name.
func (c *Catalog) All() []models.Package {
	out := make([]models.Package, 0, len(c.packages))
	for _, pkg := range c.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
