package models

import "time"

// BuildProfile is the persisted/shareable build configuration document.
type BuildProfile struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string      `json:"version" yaml:"version"` // document schema version
	CreatedAt   time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" yaml:"updatedAt"`
	Device      Device      `json:"device" yaml:"device"`
	CustomBuild CustomBuild `json:"customBuild" yaml:"customBuild"`
	Modules     *Modules    `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// Device identifies the device a profile builds for. Profile is re-derivable
// from target+model, so importers treat it as optional.
type Device struct {
	Model   string `json:"model" yaml:"model"`
	Target  string `json:"target" yaml:"target"`
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`
	Version string `json:"version" yaml:"version"` // firmware version
}

// CustomBuild holds the advanced build options of a profile.
type CustomBuild struct {
	PackageConfiguration PackageConfiguration `json:"packageConfiguration" yaml:"packageConfiguration"`
	UCIDefaults          string               `json:"uciDefaults,omitempty" yaml:"uciDefaults,omitempty"`
	RootfsSizeMB         int                  `json:"rootfsSizeMb,omitempty" yaml:"rootfsSizeMb,omitempty"`
	Repositories         []Repository         `json:"repositories" yaml:"repositories"`
	RepositoryKeys       []string             `json:"repositoryKeys" yaml:"repositoryKeys"`
}

// PackageConfiguration is the selection snapshot stored in a profile. The
// added/removed arrays are kept as user intent, never as the resolved diff,
// because the device default list may differ by the time the profile is
// loaded again.
type PackageConfiguration struct {
	AddedPackages   []string `json:"addedPackages" yaml:"addedPackages"`
	RemovedPackages []string `json:"removedPackages" yaml:"removedPackages"`
}

// Repository is one custom package feed configured by the user.
type Repository struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Modules carries the optional pluggable-module subsystem state. The CLI
// treats it as an opaque schema passenger: it is validated for shape and
// round-tripped, never executed.
type Modules struct {
	Sources    []ModuleSource    `json:"sources" yaml:"sources"`
	Selections []ModuleSelection `json:"selections" yaml:"selections"`
}

// ModuleSource points at a repository hosting module definitions.
type ModuleSource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Ref  string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// ModuleSelection records one enabled module with its parameter values and
// selected user downloads.
type ModuleSelection struct {
	Module     string            `json:"module" yaml:"module"`
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Downloads  []string          `json:"downloads,omitempty" yaml:"downloads,omitempty"`
}
