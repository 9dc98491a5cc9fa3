package acl

import (
	"go.uber.org/zap"
)

// Permission letters carried in a rule's fourth field.
const (
	PermRead    byte = 'r'
	PermWrite   byte = 'w'
	PermExecute byte = 'x'
)

// Engine resolves rule sets for group memberships and answers access
// checks against them.
type Engine struct {
	source Source
	logger *zap.Logger
}

// NewEngine creates an engine over the given rule-file source.
func NewEngine(source Source, logger *zap.Logger) *Engine {
	return &Engine{source: source, logger: logger}
}

// Resolve loads and parses the rule files for every group in order and
// concatenates their rules. The result is materialized once at login and
// stored on the session, immutable thereafter. A source failure for one
// group is logged and that group contributes no rules; resolution
// continues with the remaining groups.
func (e *Engine) Resolve(groups []string) []Rule {
	var rules []Rule
	for _, group := range groups {
		files, err := e.source.Files(group)
		if err != nil {
			e.logger.Warn("could not load acl files for group",
				zap.String("group", group), zap.Error(err))
			continue
		}
		for _, file := range files {
			parsed := Parse(file.Name, file.Content, e.logger)
			e.logger.Debug("loaded acl file",
				zap.String("file", file.Name),
				zap.String("group", group),
				zap.Int("rules", len(parsed)))
			rules = append(rules, parsed...)
		}
	}
	return rules
}

// Check reports whether the resolved rule set permits perm on
// (scope, object, method). Access requires at least one matching grant
// rule carrying perm and no matching revoke rule carrying perm: a single
// revoke wins over any number of grants, regardless of rule order.
func Check(rules []Rule, scope, object, method string, perm byte) bool {
	granted := false
	for _, rule := range rules {
		if !rule.HasPerm(perm) || !rule.Matches(scope, object, method) {
			continue
		}
		if rule.Revoke {
			return false
		}
		granted = true
	}
	return granted
}
