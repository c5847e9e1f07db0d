// Package environment names the deployment environments recognized across
// the application and offers small helpers for branching on them.
package environment

import "strings"

// Environment represents the application deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse normalizes common spellings to a canonical Environment. Unknown
// values default to Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool { return e == Production }

// IsDevelopment reports whether e is the development environment.
func (e Environment) IsDevelopment() bool { return e == Development }
