package appspec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"helm.sh/helm/v3/pkg/strvals"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/michaelvl/helm2yaml/pkg/envsubst"
)

// BuildValues assembles the final values map for the app: values files in
// order (later files win), then inline values, then `set` overrides on top
// with Helm `--set` semantics. Values file contents and string values are
// passed through [envsubst.Expand] with the given mapping first.
func (a *App) BuildValues(mapping envsubst.Mapping) (map[string]any, error) {
	vals := map[string]any{}

	for _, vf := range a.ValuesFiles {
		p := vf
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.Dir, vf)
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read values file: %w", err)
		}

		expanded := envsubst.Expand(string(data), mapping)

		fileVals := map[string]any{}

		err = sigsyaml.Unmarshal([]byte(expanded), &fileVals)
		if err != nil {
			return nil, fmt.Errorf("parse values file %q: %w", p, err)
		}

		vals = mergeMaps(vals, fileVals)
	}

	vals = mergeMaps(vals, expandStrings(a.Values, mapping))

	// Apply overrides in key order so conflicting keys resolve
	// deterministically.
	keys := make([]string, 0, len(a.Set))
	for k := range a.Set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		v := a.Set[k]
		if s, ok := v.(string); ok {
			v = envsubst.Expand(s, mapping)
		}

		err := strvals.ParseInto(fmt.Sprintf("%s=%v", k, v), vals)
		if err != nil {
			return nil, fmt.Errorf("apply set value %q: %w", k, err)
		}
	}

	return vals, nil
}

// expandStrings env-substitutes every string leaf of a values tree.
func expandStrings(v map[string]any, mapping envsubst.Mapping) map[string]any {
	if v == nil {
		return nil
	}

	out, _ := expandValue(v, mapping).(map[string]any)

	return out
}

func expandValue(v any, mapping envsubst.Mapping) any {
	switch val := v.(type) {
	case string:
		return envsubst.Expand(val, mapping)

	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = expandValue(item, mapping)
		}

		return out

	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = expandValue(item, mapping)
		}

		return out

	default:
		return v
	}
}

// mergeMaps merges src over dst, descending into maps present on both
// sides. Scalars and lists in src replace dst wholesale.
func mergeMaps(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst))
	for k, v := range dst {
		out[k] = v
	}

	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := out[k].(map[string]any); ok {
				out[k] = mergeMaps(dv, sv)

				continue
			}
		}

		out[k] = v
	}

	return out
}
