// Package acl parses access-rule files and answers access-check queries
// for resolved rule sets. A rule file is line oriented: four whitespace
// separated fields per line, "scope object_pattern method_pattern perms",
// with a leading "!" on the scope field marking a revoke rule. Patterns use
// shell-glob style "*" wildcards.
package acl

import (
	"strings"

	"go.uber.org/zap"
)

// Rule grants or, when Revoke is set, subtracts a permission set for a
// scope on an object/method pattern pair.
type Rule struct {
	Scope         string
	ObjectPattern string
	MethodPattern string
	Perms         string
	Revoke        bool
}

// HasPerm reports whether the rule's permission set contains the letter.
func (r Rule) HasPerm(perm byte) bool {
	return strings.IndexByte(r.Perms, perm) >= 0
}

// Matches reports whether the rule applies to the given scope, object and
// method. All three fields are pattern matched, so a rule scoped "*"
// covers every scope.
func (r Rule) Matches(scope, object, method string) bool {
	return Match(r.Scope, scope) &&
		Match(r.ObjectPattern, object) &&
		Match(r.MethodPattern, method)
}

// Parse turns a rule file's content into its ordered rule sequence. A line
// that does not split into exactly four fields is logged with the file
// name and line number, then skipped; parsing continues with the next
// line. Blank lines are ignored.
func Parse(name, content string, logger *zap.Logger) []Rule {
	var rules []Rule
	for i, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			logger.Warn("acl parse error",
				zap.String("file", name),
				zap.Int("line", i+1),
				zap.Int("fields", len(fields)))
			continue
		}

		rule := Rule{
			Scope:         fields[0],
			ObjectPattern: fields[1],
			MethodPattern: fields[2],
			Perms:         fields[3],
		}
		if strings.HasPrefix(rule.Scope, "!") {
			rule.Revoke = true
			rule.Scope = rule.Scope[1:]
		}
		rules = append(rules, rule)
	}
	return rules
}
