// Package location derives a city from free-text Indian delivery addresses.
package location

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const Unknown = "Unknown"

// Checked in order; the first substring hit wins.
var gazetteer = []string{
	"mumbai", "delhi", "bangalore", "bengaluru", "hyderabad", "ahmedabad",
	"chennai", "kolkata", "surat", "pune", "jaipur", "lucknow",
	"kanpur", "nagpur", "indore", "thane", "bhopal", "visakhapatnam",
	"pimpri", "patna", "vadodara", "ghaziabad", "ludhiana", "agra",
	"nashik", "faridabad", "meerut", "rajkot", "kalyan", "vasai",
	"varanasi", "srinagar", "aurangabad", "dhanbad", "amritsar",
	"navi mumbai", "allahabad", "prayagraj", "ranchi", "howrah",
	"coimbatore", "jabalpur", "gwalior", "vijayawada", "jodhpur",
	"madurai", "raipur", "kota", "chandigarh", "guwahati",
}

var synonyms = map[string]string{
	"bengaluru": "bangalore",
	"bombay":    "mumbai",
	"calcutta":  "kolkata",
	"madras":    "chennai",
	"prayagraj": "allahabad",
}

var pincode = regexp.MustCompile(`\d{6}`)

// Extract returns a best-effort city name for address, or Unknown.
func Extract(address string) string {
	lower := strings.ToLower(strings.TrimSpace(address))
	if lower == "" {
		return Unknown
	}
	for _, city := range gazetteer {
		if strings.Contains(lower, city) {
			return capitalizeFirst(city)
		}
	}

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		candidate := parts[len(parts)-2]
		if loc := pincode.FindStringIndex(candidate); loc != nil {
			candidate = candidate[:loc[0]] + candidate[loc[1]:]
		}
		candidate = strings.TrimSpace(candidate)
		if utf8.RuneCountInString(candidate) > 2 {
			return capitalizeWords(candidate)
		}
		return capitalizeWords(parts[1])
	}
	return Unknown
}

// Normalize folds case, whitespace and known historical names so two
// spellings of the same city compare equal.
func Normalize(loc string) string {
	n := strings.ToLower(strings.TrimSpace(loc))
	if canon, ok := synonyms[n]; ok {
		return canon
	}
	return n
}

// Match reports whether a and b name the same city.
func Match(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// maxSpellings stays under Firestore's limit on "in" filter values.
const maxSpellings = 30

// Spellings lists the stored forms loc may appear under: the value as given,
// the canonical city and every synonym, each both lowercased and capitalized.
// Locations are stored as written, so equality filters must try them all.
func Spellings(loc string) []string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil
	}
	canon := Normalize(loc)
	names := []string{canon}
	aliases := make([]string, 0, len(synonyms))
	for alias, c := range synonyms {
		if c == canon {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	names = append(names, aliases...)

	out := []string{loc}
	seen := map[string]bool{loc: true}
	add := func(v string) {
		if !seen[v] && len(out) < maxSpellings {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, n := range names {
		add(capitalizeWords(n))
		add(n)
	}
	return out
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func capitalizeWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = capitalizeFirst(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
