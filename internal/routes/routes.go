// Package routes classifies request paths as public or protected.
package routes

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

// DefaultPublic is the built-in public-route set. Entries ending in "/*"
// match the prefix before the wildcard; everything else is an exact match.
// Paths matching no rule are protected.
var DefaultPublic = []string{
	"/",
	"/login",
	"/register",
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/logout",
	"/api/auth/callback",
	"/about",
	"/contact",
	"/posts",
	"/posts/*",
	"/404",
	"/500",
	"/healthz",
}

// redirectIfAuthenticated is the set of paths an authenticated user is
// bounced away from.
var redirectIfAuthenticated = map[string]bool{
	"/login":    true,
	"/register": true,
}

// Policy is a static partition of paths into public and protected.
type Policy struct {
	exact    map[string]bool
	prefixes []string
}

// NewPolicy builds a policy from rules. A rule "/posts/*" matches "/posts"
// and anything under it; exact rules win over prefixes.
func NewPolicy(rules []string) *Policy {
	p := &Policy{exact: make(map[string]bool, len(rules))}
	for _, rule := range rules {
		if strings.HasSuffix(rule, "/*") {
			p.prefixes = append(p.prefixes, strings.TrimSuffix(rule, "/*"))
			continue
		}
		p.exact[rule] = true
	}
	return p
}

// Default returns the policy over DefaultPublic.
func Default() *Policy {
	return NewPolicy(DefaultPublic)
}

// IsPublic reports whether path needs no session.
func (p *Policy) IsPublic(path string) bool {
	if p.exact[path] {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RedirectIfAuthenticated reports whether an authenticated user should be
// sent away from path (the login and registration pages).
func (p *Policy) RedirectIfAuthenticated(path string) bool {
	return redirectIfAuthenticated[path]
}

// routesFile is the YAML shape of a public-routes override file.
type routesFile struct {
	Public []string `yaml:"public"`
}

// LoadFile reads a policy from a YAML file of the form:
//
//	public:
//	  - /
//	  - /posts/*
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read routes file")
	}

	var rf routesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse routes file")
	}
	if len(rf.Public) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "routes file lists no public routes")
	}

	return NewPolicy(rf.Public), nil
}
