// Package selection tracks user package intent relative to a device's
// default package list and computes the package argument list for a build
// request.
package selection

// Status classifies a package name relative to the current selection.
type Status string

const (
	// StatusSelected: explicitly added, or a default that was excluded and
	// then restored.
	StatusSelected Status = "selected"
	// StatusRemoved: a device default explicitly excluded by the user.
	StatusRemoved Status = "removed"
	// StatusDefault: installed by the device profile, untouched by the user.
	StatusDefault Status = "default"
	// StatusAvailable: known or unknown to the catalog, not selected.
	StatusAvailable Status = "available"
)

// Reconciler holds the two disjoint intent sets over a device's default
// package list. Every mutator preserves the invariant that a name is never
// in both sets at once. Insertion order is kept so the build argument list
// is stable.
type Reconciler struct {
	defaults map[string]struct{}

	added        map[string]struct{}
	addedOrder   []string
	removed      map[string]struct{}
	removedOrder []string

	onAdded   func(name string)
	onRemoved func(name string)
}

// New creates a reconciler over the given device default packages.
func New(defaults []string) *Reconciler {
	r := &Reconciler{}
	r.Reset(defaults)
	return r
}

// OnAdded registers a callback fired whenever a name enters addedPackages.
// Explicit mutation events replace snapshot diffing for cache invalidation.
func (r *Reconciler) OnAdded(fn func(name string)) { r.onAdded = fn }

// OnRemoved registers a callback fired whenever a name enters
// removedPackages.
func (r *Reconciler) OnRemoved(fn func(name string)) { r.onRemoved = fn }

// Reset clears both intent sets and replaces the default list. Called when
// the device or firmware version changes.
func (r *Reconciler) Reset(defaults []string) {
	r.defaults = make(map[string]struct{}, len(defaults))
	for _, name := range defaults {
		r.defaults[name] = struct{}{}
	}
	r.added = make(map[string]struct{})
	r.addedOrder = nil
	r.removed = make(map[string]struct{})
	r.removedOrder = nil
}

// IsDefault reports whether name is in the device default list.
func (r *Reconciler) IsDefault(name string) bool {
	_, ok := r.defaults[name]
	return ok
}

// Add requests a package. Adding an excluded default un-excludes it rather
// than duplicating it in the additions.
func (r *Reconciler) Add(name string) {
	r.clearRemoved(name)
	if r.IsDefault(name) {
		return
	}
	if _, ok := r.added[name]; ok {
		return
	}
	r.added[name] = struct{}{}
	r.addedOrder = append(r.addedOrder, name)
	if r.onAdded != nil {
		r.onAdded(name)
	}
}

// Remove excludes a package. For a device default this records a removal
// marker; for anything else it just drops the addition, since removal
// markers only make sense relative to defaults.
func (r *Reconciler) Remove(name string) {
	if r.IsDefault(name) {
		r.clearAdded(name)
		if _, ok := r.removed[name]; ok {
			return
		}
		r.removed[name] = struct{}{}
		r.removedOrder = append(r.removedOrder, name)
		if r.onRemoved != nil {
			r.onRemoved(name)
		}
		return
	}
	r.clearAdded(name)
}

// Restore drops name from both intent sets, returning it to its default
// standing.
func (r *Reconciler) Restore(name string) {
	r.clearAdded(name)
	r.clearRemoved(name)
}

// Toggle flips a package based on its current status.
func (r *Reconciler) Toggle(name string) {
	switch r.Status(name) {
	case StatusSelected, StatusDefault:
		r.Remove(name)
	default:
		r.Add(name)
	}
}

// Status classifies name against the defaults and the intent sets.
func (r *Reconciler) Status(name string) Status {
	if _, ok := r.removed[name]; ok {
		return StatusRemoved
	}
	if _, ok := r.added[name]; ok {
		return StatusSelected
	}
	if r.IsDefault(name) {
		return StatusDefault
	}
	return StatusAvailable
}

// Added returns the explicitly added packages in insertion order.
func (r *Reconciler) Added() []string {
	return append([]string(nil), r.addedOrder...)
}

// Removed returns the explicitly excluded defaults in insertion order.
func (r *Reconciler) Removed() []string {
	return append([]string(nil), r.removedOrder...)
}

// BuildPackages returns the literal package argument list for a build
// request: added names bare, removals prefixed with "-". The device's own
// default list is implied by the server and never duplicated here.
func (r *Reconciler) BuildPackages() []string {
	out := make([]string, 0, len(r.addedOrder)+len(r.removedOrder))
	out = append(out, r.addedOrder...)
	for _, name := range r.removedOrder {
		out = append(out, "-"+name)
	}
	return out
}

func (r *Reconciler) clearAdded(name string) {
	if _, ok := r.added[name]; !ok {
		return
	}
	delete(r.added, name)
	r.addedOrder = deleteName(r.addedOrder, name)
}

func (r *Reconciler) clearRemoved(name string) {
	if _, ok := r.removed[name]; !ok {
		return
	}
	delete(r.removed, name)
	r.removedOrder = deleteName(r.removedOrder, name)
}

func deleteName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
