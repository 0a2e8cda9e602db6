// Package pattern expands file patterns into sorted absolute paths.
//
// Patterns use doublestar syntax (`*`, `?`, `[...]`, `{a,b}` and `**` for any
// number of directories). Relative patterns are rooted at the given directory.
//
// Example:
//
//	paths, err := pattern.Expander{}.Expand("tenants/**/*.env", cwd)
package pattern
