package tenant

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/showrunnerhq/showrunner/pkg/jwt"
)

const (
	// MaxIdentifierLength keeps candidates DNS-compatible and bounds the
	// work done on untrusted input.
	MaxIdentifierLength = 63

	// DefaultTenantHeader carries an explicit tenant identifier, intended
	// for tooling and tests rather than production traffic.
	DefaultTenantHeader = "X-Tenant-ID"

	// DefaultQueryParam names the low-trust query-string identifier.
	DefaultQueryParam = "tenant"

	// DefaultClaimKey is the JWT claim holding the tenant slug.
	DefaultClaimKey = "tenant_slug"
)

// DefaultReservedSubdomains are infrastructure labels that must never be
// treated as tenant candidates.
var DefaultReservedSubdomains = []string{"www", "api", "app"}

// identifierPattern restricts candidates to DNS-safe labels: alphanumeric
// start, hyphens allowed inside.
var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Resolver extracts a candidate tenant identifier from an HTTP request.
// Resolvers are pure string extraction: no directory lookups, no side
// effects. An empty string means the strategy found no signal.
type Resolver func(r *http.Request) (string, error)

func validIdentifier(id string) bool {
	return id != "" && len(id) <= MaxIdentifierLength && identifierPattern.MatchString(id)
}

// hostWithoutPort lower-cases the request host and strips a trailing port,
// tolerating bracketed IPv6 literals.
func hostWithoutPort(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if strings.HasPrefix(host, "[") {
		if idx := strings.LastIndex(host, "]"); idx != -1 {
			return host[1:idx]
		}
	}
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// NewSubdomainResolver extracts a tenant slug from hosts of the form
// {label}.{baseDomain}. Reserved labels and the bare base domain yield no
// candidate, so infrastructure hosts fall through to the next strategy.
// When baseDomain is empty the resolver falls back to positional parsing
// and uses the first label of any host with at least three parts.
func NewSubdomainResolver(baseDomain string, reserved ...string) Resolver {
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))
	if len(reserved) == 0 {
		reserved = DefaultReservedSubdomains
	}

	return func(req *http.Request) (string, error) {
		host := hostWithoutPort(req.Host)
		if host == "" {
			return "", nil
		}

		var label string
		if baseDomain != "" {
			if host == baseDomain {
				return "", nil
			}
			prefix, ok := strings.CutSuffix(host, "."+baseDomain)
			if !ok {
				// Not under the base domain; the custom-domain
				// strategy owns this host.
				return "", nil
			}
			// Nested subdomains are infrastructure concerns, not
			// tenant signals.
			if strings.Contains(prefix, ".") {
				return "", nil
			}
			label = prefix
		} else {
			parts := strings.Split(host, ".")
			if len(parts) < 3 {
				return "", nil
			}
			label = parts[0]
		}

		if slices.Contains(reserved, label) {
			return "", nil
		}
		if !validIdentifier(label) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, label)
		}
		return label, nil
	}
}

// NewDomainResolver returns the full host as a candidate for custom-domain
// lookup. Hosts on the platform's own base domain are excluded: the bare
// base domain carries no signal and its subdomains belong to the subdomain
// strategy.
func NewDomainResolver(baseDomain string) Resolver {
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))

	return func(req *http.Request) (string, error) {
		host := hostWithoutPort(req.Host)
		if host == "" || host == "localhost" {
			return "", nil
		}
		if baseDomain != "" && (host == baseDomain || strings.HasSuffix(host, "."+baseDomain)) {
			return "", nil
		}
		return host, nil
	}
}

// NewHeaderResolver extracts a tenant slug from an explicit request header.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = DefaultTenantHeader
	}

	return func(req *http.Request) (string, error) {
		value := strings.ToLower(strings.TrimSpace(req.Header.Get(headerName)))
		if value == "" {
			return "", nil
		}
		if !validIdentifier(value) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewClaimResolver extracts a tenant slug from the bearer token's claims.
// The token is decoded without signature verification: it is a resolution
// signal only, authentication happens elsewhere. Any decode failure, a
// missing claim, or a malformed value means "no signal" rather than an
// error, so an expired or unparseable credential never blocks resolution.
func NewClaimResolver(claimKey string) Resolver {
	if claimKey == "" {
		claimKey = DefaultClaimKey
	}

	return func(req *http.Request) (string, error) {
		token, err := jwt.BearerToken(req)
		if err != nil {
			return "", nil
		}

		claims := make(map[string]any)
		if err := jwt.DecodeUnverified(token, &claims); err != nil {
			return "", nil
		}

		value, _ := claims[claimKey].(string)
		value = strings.ToLower(strings.TrimSpace(value))
		if !validIdentifier(value) {
			return "", nil
		}
		return value, nil
	}
}

// NewQueryResolver extracts a tenant slug from a query parameter. Intended
// for development convenience only; disable it in production.
func NewQueryResolver(param string) Resolver {
	if param == "" {
		param = DefaultQueryParam
	}

	return func(req *http.Request) (string, error) {
		value := strings.ToLower(strings.TrimSpace(req.URL.Query().Get(param)))
		if value == "" {
			return "", nil
		}
		if !validIdentifier(value) {
			return "", fmt.Errorf("%w: query value %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}
