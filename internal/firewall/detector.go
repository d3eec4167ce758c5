package firewall

import "regexp"

// Attack classifies a detected payload signature.
type Attack int

const (
	AttackNone Attack = iota
	AttackXSS
	AttackSQLInjection
)

// String returns the violation kind recorded for this attack class.
func (a Attack) String() string {
	switch a {
	case AttackXSS:
		return "xss"
	case AttackSQLInjection:
		return "sql_injection"
	default:
		return "none"
	}
}

// Signature patterns, compiled once at process start. These are heuristics,
// not parsers: obfuscated payloads can slip through and legitimate text
// containing keyword co-occurrences can match. That tradeoff is accepted.
var (
	// script tags, script-capable URL schemes, inline event handlers,
	// dangerous embedded elements, cookie access, eval and CSS expression
	xssPattern = regexp.MustCompile(
		`(?i)(<\s*script[\s\S]*?>|<\s*/\s*script\s*>|javascript\s*:|vbscript\s*:` +
			`|on\w+\s*=\s*["']|<\s*iframe|<\s*object|<\s*embed|<\s*link` +
			`|<\s*img[^>]+onerror|document\s*\.\s*cookie|eval\s*\(|expression\s*\()`)

	// DML/DDL keywords co-occurring with clause keywords, comment-terminated
	// quotes, stacked statements, boolean tautologies, block comments
	sqliPattern = regexp.MustCompile(
		`(?i)(\b(select|insert|update|delete|drop|truncate|alter|create|replace` +
			`|union|exec|execute|xp_\w*|sp_\w*)\b.*\b(from|into|table|where|set)\b` +
			`|'[\s\S]*?--` +
			`|;\s*(drop|delete|update|insert|select)` +
			`|\bor\b\s+[\w'"]+\s*=\s*[\w'"]+` +
			`|\band\b\s+[\w'"]+\s*=\s*[\w'"]+` +
			`|/\*[\s\S]*?\*/)`)

	// generic bot tokens, HTTP client libraries, headless browsers
	crawlerPattern = regexp.MustCompile(
		`(?i)(bot|crawler|spider|scraper|curl|wget|python-requests|go-http-client` +
			`|java/|httpclient|axios|node-fetch|libwww|mechanize|scrapy|okhttp` +
			`|headlesschrome|phantomjs|selenium|puppeteer|playwright)`)
)

// DetectAttack classifies text as carrying an XSS or SQL-injection
// signature. XSS is tested first and wins when both match. Empty input is
// clean.
func DetectAttack(text string) Attack {
	if text == "" {
		return AttackNone
	}
	if xssPattern.MatchString(text) {
		return AttackXSS
	}
	if sqliPattern.MatchString(text) {
		return AttackSQLInjection
	}
	return AttackNone
}

// IsCrawlerUserAgent reports whether ua matches a known automation
// signature.
func IsCrawlerUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	return crawlerPattern.MatchString(ua)
}
