// Package profile maps documentation platforms to the structural selectors
// used to extract their pages.
package profile

import (
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/pkg/errors"
)

// Generic is the fallback platform key used for unknown sites.
const Generic = "generic"

// ErrInvalidProfile is returned when a profile definition cannot be compiled.
var ErrInvalidProfile = errors.New("invalid extraction profile")

// Definition is the raw, uncompiled form of a profile as written in code or
// in the configuration file.
type Definition struct {
	Content string `yaml:"content_selector" json:"content_selector"`
	Title   string `yaml:"title_selector" json:"title_selector"`
	Code    string `yaml:"code_selector" json:"code_selector"`
	Nav     string `yaml:"navigation_selector" json:"navigation_selector"`
	API     string `yaml:"api_selector,omitempty" json:"api_selector,omitempty"`
}

// builtins mirrors the markup produced by the supported doc generators.
var builtins = map[string]Definition{
	"gitbook": {
		Content: ".page-inner",
		Title:   "h1",
		Code:    "pre code",
		Nav:     ".summary a",
	},
	"readthedocs": {
		Content: `[role="main"]`,
		Title:   "h1",
		Code:    ".highlight pre",
		Nav:     ".toctree-l1 a",
	},
	"swagger": {
		Content: ".swagger-ui",
		Title:   "h1",
		Code:    ".example pre",
		Nav:     ".operations-tag a",
		API:     ".opblock",
	},
	"sphinx": {
		Content: ".body",
		Title:   "h1",
		Code:    ".highlight pre",
		Nav:     ".toctree-l1 a",
	},
	Generic: {
		Content: "main, .content, .documentation",
		Title:   "h1",
		Code:    "pre, code",
		Nav:     "nav a, .toc a",
	},
}

// Profile is a compiled, read-only extraction profile.
type Profile struct {
	name string
	def  Definition

	content cascadia.Selector
	title   cascadia.Selector
	code    cascadia.Selector
	nav     cascadia.Selector
	api     cascadia.Selector
}

// Name returns the platform key the profile is registered under.
func (p Profile) Name() string { return p.name }

// Definition returns the selector strings the profile was compiled from.
func (p Profile) Definition() Definition { return p.def }

func (p Profile) Content() cascadia.Selector { return p.content }
func (p Profile) Title() cascadia.Selector   { return p.title }
func (p Profile) Code() cascadia.Selector    { return p.code }
func (p Profile) Nav() cascadia.Selector     { return p.nav }

// API returns the API block selector. ok is false for platforms without API blocks.
func (p Profile) API() (sel cascadia.Selector, ok bool) {
	return p.api, p.api != nil
}

// Valid reports whether all mandatory selectors are compiled.
func (p Profile) Valid() bool {
	return p.content != nil && p.title != nil && p.code != nil && p.nav != nil
}

// Compile validates a definition and compiles its selectors.
func Compile(name string, def Definition) (Profile, error) {
	p := Profile{name: strings.ToLower(strings.TrimSpace(name)), def: def}
	if p.name == "" {
		return Profile{}, errors.Wrap(ErrInvalidProfile, "empty platform name")
	}

	required := []struct {
		field string
		src   string
		dst   *cascadia.Selector
	}{
		{"content_selector", def.Content, &p.content},
		{"title_selector", def.Title, &p.title},
		{"code_selector", def.Code, &p.code},
		{"navigation_selector", def.Nav, &p.nav},
	}
	for _, r := range required {
		if strings.TrimSpace(r.src) == "" {
			return Profile{}, errors.Wrapf(ErrInvalidProfile, "%s: missing %s", p.name, r.field)
		}
		sel, err := cascadia.Compile(r.src)
		if err != nil {
			return Profile{}, errors.Wrapf(ErrInvalidProfile, "%s: %s %q: %v", p.name, r.field, r.src, err)
		}
		*r.dst = sel
	}

	if strings.TrimSpace(def.API) != "" {
		sel, err := cascadia.Compile(def.API)
		if err != nil {
			return Profile{}, errors.Wrapf(ErrInvalidProfile, "%s: api_selector %q: %v", p.name, def.API, err)
		}
		p.api = sel
	}

	return p, nil
}

// Registry holds all known extraction profiles. It is built once and never
// mutated, so lookups need no locking.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates a registry with the built-in profiles plus any custom
// definitions. A custom definition replaces a built-in one with the same key.
func NewRegistry(custom map[string]Definition) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(builtins)+len(custom))}

	for name, def := range builtins {
		p, err := Compile(name, def)
		if err != nil {
			// built-in selectors are constants
			panic(err)
		}
		r.profiles[p.name] = p
	}

	for name, def := range custom {
		p, err := Compile(name, def)
		if err != nil {
			return nil, err
		}
		r.profiles[p.name] = p
	}

	return r, nil
}

// Lookup returns the profile for a platform key, falling back to the generic
// profile when the key is unknown.
func (r *Registry) Lookup(key string) Profile {
	if p, ok := r.profiles[strings.ToLower(strings.TrimSpace(key))]; ok {
		return p
	}
	return r.profiles[Generic]
}

// Has reports whether key has its own profile (as opposed to the fallback).
func (r *Registry) Has(key string) bool {
	_, ok := r.profiles[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Keys returns the registered platform keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.profiles))
	for k := range r.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
