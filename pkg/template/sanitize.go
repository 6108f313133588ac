package template

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	formatPolicyOnce sync.Once
	formatPolicy     *bluemonday.Policy
)

// SanitizeHTML strips markup from formatted output except basic inline text
// formatting. Pass it to WithSanitizer when display_format output is embedded
// in HTML.
func SanitizeHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	return formatSanitizer().Sanitize(raw)
}

func formatSanitizer() *bluemonday.Policy {
	formatPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br", "span", "small")
		policy.AllowAttrs("class").OnElements("span", "code")
		formatPolicy = policy
	})
	return formatPolicy
}
