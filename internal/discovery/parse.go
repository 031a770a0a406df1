package discovery

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
)

// parseCLIOutput extracts candidates from `obsidian vaults verbose`. JSON is
// tried first; otherwise each line is read as "name<TAB>path" or
// "name ... path".
func parseCLIOutput(stdout string) []Candidate {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		var payload any
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
			if found := extractVaults(payload, true); len(found) > 0 {
				return found
			}
		}
	}
	return parseVaultLines(trimmed)
}

func parseVaultLines(text string) []Candidate {
	var out []Candidate
	seen := make(map[[2]string]bool)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "name") && strings.Contains(lower, "path") {
			continue
		}

		var name, path string
		if left, right, ok := strings.Cut(line, "\t"); ok {
			name, path = strings.TrimSpace(left), strings.TrimSpace(right)
		} else {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			name, path = fields[0], fields[len(fields)-1]
		}
		if name == "" || !looksLikePath(path) {
			continue
		}

		key := [2]string{name, path}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Candidate{Name: name, Path: path})
	}
	return out
}

func looksLikePath(p string) bool {
	return strings.ContainsAny(p, `/\`) || strings.HasPrefix(p, ".") || strings.HasPrefix(p, "~")
}

// extractVaults walks the shapes both the CLI and Obsidian's own config
// files use: a list of vault objects, an object with a "vaults" list or map,
// or a map of id -> vault object. allowSingle also accepts one bare
// {name, path} object, which only the CLI emits.
func extractVaults(payload any, allowSingle bool) []Candidate {
	switch v := payload.(type) {
	case []any:
		return candidatesFromItems(v)
	case map[string]any:
		if nested, ok := v["vaults"]; ok {
			switch n := nested.(type) {
			case []any:
				return candidatesFromItems(n)
			case map[string]any:
				return candidatesFromItems(sortedValues(n))
			}
			return nil
		}
		if allowSingle {
			if _, hasPath := v["path"].(string); hasPath {
				return candidatesFromItems([]any{v})
			}
		}
		values := sortedValues(v)
		if len(values) == 0 {
			return nil
		}
		for _, item := range values {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil
			}
			if _, ok := obj["path"]; !ok {
				return nil
			}
		}
		return candidatesFromItems(values)
	}
	return nil
}

func candidatesFromItems(items []any) []Candidate {
	var out []Candidate
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		path, _ := obj["path"].(string)
		if strings.TrimSpace(path) == "" {
			continue
		}
		name, _ := obj["name"].(string)
		if strings.TrimSpace(name) == "" {
			name, _ = obj["label"].(string)
		}
		if strings.TrimSpace(name) == "" {
			name = filepath.Base(filepath.Clean(path))
		}
		out = append(out, Candidate{Name: strings.TrimSpace(name), Path: path})
	}
	return out
}

// sortedValues returns map values ordered by key so discovery is
// deterministic; Obsidian keys vaults by random ids.
func sortedValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]any, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return values
}
