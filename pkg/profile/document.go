// Package profile implements the build profile document model: a complete
// build configuration that can be exported for sharing and imported back
// with structural validation.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// CurrentVersion is the document schema version stamped on every save and
// export. Imported documents keep their original version only long enough
// to raise a compatibility warning.
const CurrentVersion = "1.1.0"

// ExportOptions selects the serialization format and lets callers strip
// bulky or sensitive sections while keeping the rest of the document
// intact.
type ExportOptions struct {
	Format           string // "json" (default) or "yaml"
	StripModules     bool
	StripPackages    bool
	StripUCIDefaults bool
}

// Export serializes a profile document. The schema version is always
// rewritten to the current one.
func Export(p *models.BuildProfile, opts ExportOptions) ([]byte, error) {
	doc := *p
	doc.Version = CurrentVersion

	if opts.StripModules {
		doc.Modules = nil
	}
	if opts.StripPackages {
		doc.CustomBuild.PackageConfiguration = models.PackageConfiguration{
			AddedPackages:   []string{},
			RemovedPackages: []string{},
		}
	}
	if opts.StripUCIDefaults {
		doc.CustomBuild.UCIDefaults = ""
	}

	switch opts.Format {
	case "", "json":
		data, err := json.MarshalIndent(&doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}
		return data, nil
	case "yaml", "yml":
		data, err := yaml.Marshal(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
}

// ImportResult carries the imported document plus non-fatal warnings such
// as a schema version mismatch.
type ImportResult struct {
	Profile  *models.BuildProfile
	Warnings []string
}

// ValidationErrors aggregates every violated structural rule of an import,
// so the caller can present the complete list instead of one error at a
// time.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return "invalid profile document: " + strings.Join(v, "; ")
}

// Import parses and validates a profile document. Format is chosen by the
// explicit hint, by a leading YAML document marker, and otherwise by trying
// JSON first. Validation collects all violations before returning. On
// success the id is preserved or generated, timestamps are coerced, the
// schema version is stamped to current, and a warning is emitted if the
// original version differed.
func Import(content []byte, formatHint string) (*ImportResult, error) {
	raw, format, err := parseAny(content, formatHint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile document: %w", err)
	}

	if errs := validate(raw); len(errs) > 0 {
		return nil, errs
	}

	var doc models.BuildProfile
	switch format {
	case "yaml":
		err = yaml.Unmarshal(content, &doc)
	default:
		err = json.Unmarshal(content, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode profile document: %w", err)
	}

	result := &ImportResult{Profile: &doc}

	originalVersion := doc.Version
	if originalVersion != "" && originalVersion != CurrentVersion {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"document was written with schema version %s, current is %s",
			originalVersion, CurrentVersion))
	}
	doc.Version = CurrentVersion

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	return result, nil
}

// parseAny decodes content into a generic map for validation and reports
// which format matched.
func parseAny(content []byte, formatHint string) (map[string]interface{}, string, error) {
	trimmed := bytes.TrimSpace(content)
	hint := strings.ToLower(formatHint)

	isYAML := hint == "yaml" || hint == "yml" || (hint == "" && bytes.HasPrefix(trimmed, []byte("---")))

	var raw map[string]interface{}
	if isYAML {
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, "", err
		}
		return raw, "yaml", nil
	}

	jsonErr := json.Unmarshal(content, &raw)
	if jsonErr == nil {
		return raw, "json", nil
	}
	if hint == "json" {
		return nil, "", jsonErr
	}
	if yamlErr := yaml.Unmarshal(content, &raw); yamlErr == nil {
		return raw, "yaml", nil
	}
	return nil, "", jsonErr
}

// validate checks the document structure, accumulating every violation.
func validate(raw map[string]interface{}) ValidationErrors {
	var errs ValidationErrors

	if s, ok := raw["name"].(string); !ok || s == "" {
		errs = append(errs, "name must be a non-empty string")
	}

	if device, ok := raw["device"].(map[string]interface{}); ok {
		// profile is deliberately not required: it is re-derivable from
		// target+model at load time.
		for _, field := range []string{"model", "target", "version"} {
			if s, ok := device[field].(string); !ok || s == "" {
				errs = append(errs, fmt.Sprintf("device.%s must be a non-empty string", field))
			}
		}
	} else {
		errs = append(errs, "device must be an object")
	}

	if cb, ok := raw["customBuild"].(map[string]interface{}); ok {
		var added, removed []string
		if pc, ok := cb["packageConfiguration"].(map[string]interface{}); ok {
			var ok1, ok2 bool
			added, ok1 = stringArray(pc["addedPackages"])
			removed, ok2 = stringArray(pc["removedPackages"])
			if !ok1 {
				errs = append(errs, "customBuild.packageConfiguration.addedPackages must be an array")
			}
			if !ok2 {
				errs = append(errs, "customBuild.packageConfiguration.removedPackages must be an array")
			}
		} else {
			errs = append(errs, "customBuild.packageConfiguration must be an object")
		}
		if _, ok := cb["repositories"].([]interface{}); !ok {
			errs = append(errs, "customBuild.repositories must be an array")
		}
		if _, ok := cb["repositoryKeys"].([]interface{}); !ok {
			errs = append(errs, "customBuild.repositoryKeys must be an array")
		}
		if overlap := intersect(added, removed); len(overlap) > 0 {
			errs = append(errs, fmt.Sprintf(
				"packages cannot be both added and removed: %s", strings.Join(overlap, ", ")))
		}
	} else {
		errs = append(errs, "customBuild must be an object")
	}

	if modules, present := raw["modules"]; present && modules != nil {
		if m, ok := modules.(map[string]interface{}); ok {
			if _, ok := m["sources"].([]interface{}); !ok {
				errs = append(errs, "modules.sources must be an array")
			}
			if _, ok := m["selections"].([]interface{}); !ok {
				errs = append(errs, "modules.selections must be an array")
			}
		} else {
			errs = append(errs, "modules must be an object")
		}
	}

	return errs
}

func stringArray(v interface{}) ([]string, bool) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range b {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
