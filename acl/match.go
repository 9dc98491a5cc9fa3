package acl

// Match reports whether value matches pattern. "*" matches any run of
// characters, including the empty one, so a pattern of "*" matches every
// value and a literal pattern matches only itself. There is no escaping;
// object and method names never contain "*".
func Match(pattern, value string) bool {
	for len(pattern) > 0 {
		if pattern[0] == '*' {
			// Collapse consecutive stars, then try every suffix.
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(value); i++ {
				if Match(pattern, value[i:]) {
					return true
				}
			}
			return false
		}
		if len(value) == 0 || pattern[0] != value[0] {
			return false
		}
		pattern = pattern[1:]
		value = value[1:]
	}
	return len(value) == 0
}
