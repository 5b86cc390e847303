package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ramkansal/docfang/internal/profile"
	"github.com/ramkansal/docfang/pkg/plugin"
)

// Swagger UI markup inside an endpoint block.
const (
	methodSelector      = ".opblock-summary-method"
	pathSelector        = ".opblock-summary-path"
	descriptionSelector = ".opblock-description"
	parameterSelector   = ".parameters .parameter"
	paramNameSelector   = ".parameter-name"
	paramTypeSelector   = ".parameter-type"
	paramDescSelector   = ".parameter-description"
	exampleSelector     = ".example pre"

	defaultParamType   = "string"
	exampleLanguage    = "json"
	exampleDescription = "API response example"
)

// extractEndpoints parses every API block on the page. Platforms without an
// API selector yield no endpoints.
func extractEndpoints(doc *goquery.Document, p profile.Profile) []plugin.APIEndpoint {
	endpoints := []plugin.APIEndpoint{}

	sel, ok := p.API()
	if !ok {
		return endpoints
	}

	doc.FindMatcher(sel).Each(func(_ int, block *goquery.Selection) {
		if ep, ok := parseEndpoint(block); ok {
			endpoints = append(endpoints, ep)
		}
	})

	return endpoints
}

// parseEndpoint extracts one endpoint. Method and path are mandatory; the
// block is dropped without them.
func parseEndpoint(block *goquery.Selection) (plugin.APIEndpoint, bool) {
	method, ok := firstText(block, methodSelector)
	if !ok {
		return plugin.APIEndpoint{}, false
	}
	path, ok := firstText(block, pathSelector)
	if !ok {
		return plugin.APIEndpoint{}, false
	}
	description, _ := firstText(block, descriptionSelector)

	params := []plugin.APIParameter{}
	block.Find(parameterSelector).Each(func(_ int, s *goquery.Selection) {
		if param, ok := parseParameter(s); ok {
			params = append(params, param)
		}
	})

	examples := []plugin.CodeExample{}
	block.Find(exampleSelector).Each(func(_ int, s *goquery.Selection) {
		code := strings.TrimSpace(s.Text())
		if code == "" {
			return
		}
		examples = append(examples, plugin.CodeExample{
			Language:    exampleLanguage,
			Code:        code,
			Description: strPtr(exampleDescription),
		})
	})

	return plugin.APIEndpoint{
		Method:       strings.ToUpper(method),
		Path:         path,
		Description:  description,
		Parameters:   params,
		CodeExamples: examples,
	}, true
}

func parseParameter(s *goquery.Selection) (plugin.APIParameter, bool) {
	name, ok := firstText(s, paramNameSelector)
	if !ok {
		return plugin.APIParameter{}, false
	}

	typ, ok := firstText(s, paramTypeSelector)
	if !ok {
		typ = defaultParamType
	}
	desc, _ := firstText(s, paramDescSelector)

	return plugin.APIParameter{
		Name:        name,
		Type:        typ,
		Description: desc,
		Required:    false,
	}, true
}

// firstText returns the trimmed text of the first match of selector under s.
// ok is false when nothing matches or the text is blank.
func firstText(s *goquery.Selection, selector string) (string, bool) {
	m := s.Find(selector).First()
	if m.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(m.Text())
	return text, text != ""
}
