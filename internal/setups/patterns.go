package setups

import (
	"regexp"
	"strings"
)

// Normalized glyph tokens. The normalizer rewrites pictographs to these so every
// downstream pattern matches on a stable ASCII vocabulary.
const (
	TokenBreakout  = "[BREAKOUT]"
	TokenBreakdown = "[BREAKDOWN]"
	TokenRejection = "[REJECTION]"
	TokenBounce    = "[BOUNCE]"
	TokenWarning   = "[WARNING]"
)

// glyphReplacer maps the known alert pictographs to bracketed tokens.
// The variation-selector form of the warning sign is listed before the bare
// form so it is consumed in one replacement.
var glyphReplacer = strings.NewReplacer(
	"\U0001F53C", TokenBreakout, // 🔼 upwards button
	"\U0001F53A", TokenBreakout, // 🔺 red triangle pointed up
	"\U0001F53D", TokenBreakdown, // 🔽 downwards button
	"\U0001F53B", TokenBreakdown, // 🔻 red triangle pointed down
	"\U0001F6AB", TokenRejection, // 🚫 prohibited
	"⛔", TokenRejection, // ⛔ no entry
	"\U0001F504", TokenBounce, // 🔄 counterclockwise arrows
	"⚠️", TokenWarning, // ⚠️ warning with variation selector
	"⚠", TokenWarning, // ⚠ bare warning
)

// price is an optionally dollar-prefixed positive decimal.
const price = `\$?(\d+(?:\.\d+)?)`

// Section header strategies, tried in priority order. A ticker is 1-5
// uppercase letters; the left boundary on the inline form keeps the pattern
// from firing inside longer words ("SPYDER:").
var (
	numberedParenHeaderRe  = regexp.MustCompile(`(?m)^[ \t]*\d{1,3}\)[ \t]*([A-Z]{1,5}):`)
	numberedPeriodHeaderRe = regexp.MustCompile(`(?m)^[ \t]*\d{1,3}\.[ \t]*([A-Z]{1,5}):`)
	standaloneTickerRe     = regexp.MustCompile(`(?m)^[ \t]*([A-Z]{1,5})[ \t]*\r?$`)
	inlineTickerRe         = regexp.MustCompile(`(?m)(^|[^A-Za-z0-9])([A-Z]{1,5}):`)
	dividerRe              = regexp.MustCompile(`(?m)^[ \t]*(?:[-=_]{3,}|\x{2014}{3,})[ \t]*\r?$`)
	segmentTickerRe        = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-Z]{1,5})(?:$|[^A-Za-z0-9])`)
)

// Header-form signal: the section's first line spells the whole signal out
// after the ticker colon, optionally preceded by a list number. The regexp
// matches any relation word; headerSignal rejects relations outside the
// category's vocabulary.
var headerSignalRe = regexp.MustCompile(
	`^[ \t]*(?:\d{1,3}[).][ \t]*)?[A-Z]{1,5}:[ \t]*(?i:(breakout|breakdown|rejection|bounce))[ \t]+(?i:(above|over|below|under|near|at|around|from))[ \t]+` + price)

// Inline signal forms. Each category accepts its own relation vocabulary and
// the normalized glyph token as an alternative to the keyword.
var (
	breakoutSignalRe  = regexp.MustCompile(`(?i)(?:\[breakout\][ \t]*)?\bbreakout\b[ \t]+(above|over)[ \t]+` + price)
	breakdownSignalRe = regexp.MustCompile(`(?i)(?:\[breakdown\][ \t]*)?\bbreakdown\b[ \t]+(below|under)[ \t]+` + price)
	rejectionSignalRe = regexp.MustCompile(`(?i)(?:\[rejection\][ \t]*)?\brejection\b[ \t]+(near|at|around)[ \t]+` + price)
	bounceSignalRe    = regexp.MustCompile(`(?i)(?:\[bounce\][ \t]*)?\bbounce\b[ \t]+(from|near|at)[ \t]+` + price)

	// Token-only forms for lines where the glyph stood in for the keyword,
	// e.g. "🔼 Above 505.10" normalizes to "[BREAKOUT] Above 505.10".
	breakoutTokenRe  = regexp.MustCompile(`(?i)\[breakout\][ \t]+(above|over)[ \t]+` + price)
	breakdownTokenRe = regexp.MustCompile(`(?i)\[breakdown\][ \t]+(below|under)[ \t]+` + price)
	rejectionTokenRe = regexp.MustCompile(`(?i)\[rejection\][ \t]+(near|at|around)[ \t]+` + price)
	bounceTokenRe    = regexp.MustCompile(`(?i)\[bounce\][ \t]+(from|near|at)[ \t]+` + price)

	// Bounce zones carry a two-price trigger: "Bounce Zone 571.00-573.00".
	bounceZoneRe = regexp.MustCompile(`(?i)(?:\[bounce\][ \t]*)?\bbounce\b[^\n]*?\bzone[ \t]+` + price + `[ \t]*[-\x{2013}][ \t]*` + price)
)

// Aggressiveness qualifiers, scanned on the signal's own line.
var (
	aggrWordRe  = regexp.MustCompile(`(?i)\b(aggressive|conservative)\b`)
	aggrLevelRe = regexp.MustCompile(`(?i)\b(low|medium|high)[ \t]+(?:risk|aggression)\b`)
)

// Target forms, tried in order: parenthesized ladder after a price,
// enumerated "Target N:", then a bare "Target:"/"Targets:" list.
var (
	parenLadderRe      = regexp.MustCompile(`\$?\d+(?:\.\d+)?[ \t]*\(([^()\n]+)\)`)
	ladderContentRe    = regexp.MustCompile(`^[ \t]*\$?\d+(?:\.\d+)?(?:[ \t]*[,/][ \t]*\$?\d+(?:\.\d+)?)*[ \t]*$`)
	ladderPriceRe      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	enumeratedTargetRe = regexp.MustCompile(`(?i)\btarget[ \t]*(\d{1,2})[ \t]*[:\-][ \t]*` + price)
	listTargetRe       = regexp.MustCompile(`(?i)\btargets?[ \t]*[:\-][ \t]*(\$?\d+(?:\.\d+)?(?:[ \t]*,[ \t]*\$?\d+(?:\.\d+)?)*)`)
)

// Bias forms in priority order, plus the independent flip clause.
var (
	canonicalBiasRe  = regexp.MustCompile(`(?i)\b(bullish|bearish)[ \t]+bias[ \t]+(above|below)[ \t]+` + price)
	simplifiedBiasRe = regexp.MustCompile(`(?i)\b(bullish|bearish)[ \t]+(above|below)[ \t]+` + price)
	warningBiasRe    = regexp.MustCompile(`(?i)\[warning\][^\n]*?\b(bullish|bearish)\b[^\n]*?\b(above|below)[ \t]+` + price)
	flipRe           = regexp.MustCompile(`(?i)\bflip(?:s|ping)?[ \t]+(?:to[ \t]+)?(bullish|bearish)[ \t]+(above|below)[ \t]+` + price)
)

// Message date forms, scanned over the first lines only.
var (
	monthDateRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[ \t]+(\d{1,2})(?:st|nd|rd|th)?(?:,?[ \t]+(\d{4}))?`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	// "9/21 EMA" style indicator references are not dates.
	indicatorRefRe = regexp.MustCompile(`(?i)^[ \t]*(?:ema|sma|ma|vwap)\b`)
)

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}
