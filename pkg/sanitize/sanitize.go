// Package sanitize strips markup from content fields. Each string field of a
// content struct declares its policy in a struct tag:
//
//	Title   string `sanitize:"plain"` // no tags survive
//	Mission string `sanitize:"rich"`  // fixed allow-list survives
//
// Untagged fields (URLs, ids) are left alone.
package sanitize

import (
	"fmt"
	"html"
	"reflect"

	"github.com/microcosm-cc/bluemonday"
)

// Policy names a sanitization allow-list.
type Policy string

const (
	Plain Policy = "plain"
	Rich  Policy = "rich"
)

const tagName = "sanitize"

// RichTags is the allow-list kept in rich-text fields.
var RichTags = []string{"p", "b", "i", "ul", "ol", "li", "img"}

// Sanitizer applies the plain and rich policies. Safe for concurrent use.
type Sanitizer struct {
	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

// New builds the two policies.
func New() *Sanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(RichTags...)
	rich.AllowAttrs("src", "alt").OnElements("img")
	rich.AllowURLSchemes("https")
	rich.RequireParseableURLs(true)

	return &Sanitizer{
		plain: bluemonday.StrictPolicy(),
		rich:  rich,
	}
}

// String sanitizes s with the given policy.
func (s *Sanitizer) String(p Policy, in string) string {
	switch p {
	case Rich:
		return s.rich.Sanitize(in)
	default:
		return s.PlainText(in)
	}
}

// PlainText strips every tag from in and returns unescaped text, so
// "Youth's & Friends" survives as typed. Entity-encoded markup decodes into
// tags on the first pass, so it repeats until the text is stable.
func (s *Sanitizer) PlainText(in string) string {
	out := html.UnescapeString(s.plain.Sanitize(in))
	for out != in {
		in = out
		out = html.UnescapeString(s.plain.Sanitize(in))
	}
	return out
}

// Struct rewrites, in place, every tagged string field of the struct v points to.
func (s *Sanitizer) Struct(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("sanitize: expected non-nil pointer to struct, got %T", v)
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, ok := f.Tag.Lookup(tagName)
		if !ok || !f.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() != reflect.String {
			return fmt.Errorf("sanitize: field %s is tagged but is %s", f.Name, fv.Kind())
		}
		policy := Policy(tag)
		if policy != Plain && policy != Rich {
			return fmt.Errorf("sanitize: field %s has unknown policy %q", f.Name, tag)
		}
		fv.SetString(s.String(policy, fv.String()))
	}
	return nil
}

// Each sanitizes every element of items in place.
func Each[T any](s *Sanitizer, items []T) error {
	for i := range items {
		if err := s.Struct(&items[i]); err != nil {
			return err
		}
	}
	return nil
}
