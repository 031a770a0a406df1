package gateway

import "strings"

// vaultFree lists subcommands that act on the Obsidian app rather than on a
// vault, so no vault is resolved or passed for them.
var vaultFree = map[string]bool{
	"help":       true,
	"version":    true,
	"reload":     true,
	"restart":    true,
	"vault":      true,
	"vaults":     true,
	"vault:open": true,
}

// keyRule is satisfied when any one of its keys is present.
type keyRule []string

func (r keyRule) String() string { return strings.Join(r, "|") }

// requiredKeys is checked before dispatch. Subcommands not listed take any
// arguments; the external CLI validates the rest.
var requiredKeys = map[string][]keyRule{
	"read":             {{"file", "path"}},
	"open":             {{"file", "path"}},
	"create":           {{"name", "path"}},
	"append":           {{"content"}},
	"prepend":          {{"content"}},
	"move":             {{"file", "path"}, {"to"}},
	"rename":           {{"file", "path"}, {"name"}},
	"delete":           {{"file", "path"}},
	"search":           {{"query"}},
	"daily:append":     {{"content"}},
	"daily:prepend":    {{"content"}},
	"property:set":     {{"name"}, {"value"}},
	"property:remove":  {{"name"}},
	"plugin:enable":    {{"id"}},
	"plugin:disable":   {{"id"}},
	"plugin:uninstall": {{"id"}},
	"workspace:load":   {{"name"}},
	"workspace:save":   {{"name"}},
	"workspace:delete": {{"name"}},
}

// NeedsVault reports whether subcommand targets a vault.
func NeedsVault(subcommand string) bool {
	return !vaultFree[subcommand]
}

// MissingKeys returns the unsatisfied rules for subcommand, rendered as
// "a|b" when any of several keys would do.
func MissingKeys(subcommand string, args map[string]string) []string {
	var missing []string
	for _, rule := range requiredKeys[subcommand] {
		satisfied := false
		for _, key := range rule {
			if strings.TrimSpace(args[key]) != "" {
				satisfied = true
				break
			}
		}
		if !satisfied {
			missing = append(missing, rule.String())
		}
	}
	return missing
}

// Classify reports whether subcommand is destructive and, if so, a short
// reason naming the operation.
func Classify(subcommand string, flags []string) (reason string, destructive bool) {
	switch subcommand {
	case "delete":
		for _, f := range flags {
			if f == "permanent" {
				return "delete-permanent", true
			}
		}
		return "delete", true
	case "plugin:uninstall":
		return "plugin-uninstall", true
	case "publish:remove":
		return "publish-remove", true
	case "workspace:delete":
		return "workspace-delete", true
	case "task:delete":
		return "", false
	}
	if strings.HasSuffix(subcommand, ":delete") {
		return "command-" + subcommand, true
	}
	return "", false
}
