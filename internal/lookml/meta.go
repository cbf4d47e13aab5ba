package lookml

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Recognized measure types, per LookML.
var measureTypes = map[string]bool{
	"count":          true,
	"sum":            true,
	"average":        true,
	"min":            true,
	"max":            true,
	"count_distinct": true,
}

// MeasureMeta is one measure declaration from a dbt meta block.
type MeasureMeta struct {
	Name            string         `mapstructure:"name"`
	Type            string         `mapstructure:"type"`
	SQL             string         `mapstructure:"sql"`
	Label           string         `mapstructure:"label"`
	GroupLabel      string         `mapstructure:"group_label"`
	ValueFormatName string         `mapstructure:"value_format_name"`
	Description     string         `mapstructure:"description"`
	Hidden          any            `mapstructure:"hidden"`
	Unknown         map[string]any `mapstructure:",remain"`
}

// ColumnMeta is the recognized column-level looker meta block. Unrecognized
// keys land in Unknown and surface as diagnostics, never errors.
type ColumnMeta struct {
	Hidden          any            `mapstructure:"hidden"`
	Label           string         `mapstructure:"label"`
	GroupLabel      string         `mapstructure:"group_label"`
	ValueFormatName string         `mapstructure:"value_format_name"`
	Measures        []MeasureMeta  `mapstructure:"measures"`
	Unknown         map[string]any `mapstructure:",remain"`
}

// ModelMeta is the recognized model-level looker meta block.
type ModelMeta struct {
	Label       string         `mapstructure:"label"`
	GroupLabel  string         `mapstructure:"group_label"`
	Description string         `mapstructure:"description"`
	Hidden      any            `mapstructure:"hidden"`
	Measures    []MeasureMeta  `mapstructure:"measures"`
	Unknown     map[string]any `mapstructure:",remain"`
}

// decodeMeta unmarshals a free-form meta map into out (a *ColumnMeta or
// *ModelMeta), tolerating loose typing the way dbt authors write YAML.
func decodeMeta(raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid meta block: %w", err)
	}
	return nil
}

// yesNo normalizes author-supplied boolean-ish values to LookML yes/no.
// Returns ok=false when the value is absent or unintelligible.
func yesNo(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case bool:
		if t {
			return "yes", true
		}
		return "no", true
	case string:
		switch strings.ToLower(t) {
		case "yes", "true":
			return "yes", true
		case "no", "false":
			return "no", true
		}
	}
	return "", false
}

// unknownKeys returns the unrecognized keys of a meta block, sorted for
// stable diagnostics.
func unknownKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
