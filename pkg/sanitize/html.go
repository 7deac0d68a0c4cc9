package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all HTML tags and attributes.
	StrictPolicy = bluemonday.StrictPolicy()

	// UGCPolicy keeps basic formatting (<p>, <b>, <a>, lists) and drops
	// scripts, iframes, event handlers and style attributes.
	UGCPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML. Used for titles and locations.
func Text(input string) string {
	return StrictPolicy.Sanitize(input)
}

// HTML keeps safe formatting. Used for event descriptions.
func HTML(input string) string {
	return UGCPolicy.Sanitize(input)
}

// TextPtr applies Text to an optional field.
func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	s := Text(*input)
	return &s
}

// HTMLPtr applies HTML to an optional field.
func HTMLPtr(input *string) *string {
	if input == nil {
		return nil
	}
	s := HTML(*input)
	return &s
}
