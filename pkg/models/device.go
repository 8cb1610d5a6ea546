package models

// DeviceTitle is one human-readable name of a device as listed in profiles.json.
type DeviceTitle struct {
	Title   string `json:"title,omitempty"`
	Vendor  string `json:"vendor,omitempty"`
	Model   string `json:"model,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// DeviceProfile describes one buildable device within a target.
type DeviceProfile struct {
	ID             string        `json:"id"`
	Target         string        `json:"target"`
	Titles         []DeviceTitle `json:"titles,omitempty"`
	DevicePackages []string      `json:"device_packages,omitempty"`
}

// KernelInfo is the kernel version/release/vermagic triple a target's
// kernel-module feed is keyed by.
type KernelInfo struct {
	Version  string `json:"version"`
	Release  string `json:"release"`
	Vermagic string `json:"vermagic"`
}

// ProfilesIndex mirrors the profiles.json document published per target.
type ProfilesIndex struct {
	Target          string                   `json:"target"`
	VersionCode     string                   `json:"version_code,omitempty"`
	ArchPackages    string                   `json:"arch_packages"`
	DefaultPackages []string                 `json:"default_packages"`
	LinuxKernel     *KernelInfo              `json:"linux_kernel,omitempty"`
	Profiles        map[string]DeviceProfile `json:"profiles"`
}

// DefaultsFor returns the union of the target default packages and the
// device-specific packages for the given profile id.
func (p *ProfilesIndex) DefaultsFor(profileID string) []string {
	out := append([]string(nil), p.DefaultPackages...)
	if dp, ok := p.Profiles[profileID]; ok {
		out = append(out, dp.DevicePackages...)
	}
	return out
}
