// Package formats implements the predicates behind the "format" keyword.
//
// Each predicate reports why a string does not conform; a nil error means
// it does. Predicates are stateless and safe for concurrent use.
package formats

import (
	"errors"
	"fmt"
	"net/netip"
	gourl "net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/net/idna"
)

// Func checks whether s conforms to a format.
type Func func(s string) error

var registry = map[string]Func{
	"regex":                 Regex,
	"json-pointer":          JSONPointer,
	"relative-json-pointer": RelativeJSONPointer,
	"uuid":                  UUID,
	"duration":              Duration,
	"period":                Period,
	"ipv4":                  IPV4,
	"ipv6":                  IPV6,
	"hostname":              Hostname,
	"idn-hostname":          IDNHostname,
	"email":                 Email,
	"idn-email":             IDNEmail,
	"date":                  Date,
	"time":                  Time,
	"date-time":             DateTime,
	"uri":                   URI,
	"iri":                   IRI,
	"uri-reference":         URIReference,
	"iri-reference":         IRIReference,
	"uri-template":          URITemplate,
}

// Lookup returns the predicate registered for name.
func Lookup(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the names of all known formats, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Regex checks s is an ECMA-262 regular expression.
func Regex(s string) error {
	_, err := regexp2.Compile(s, regexp2.ECMAScript)
	return err
}

// see https://www.rfc-editor.org/rfc/rfc6901#section-3
func JSONPointer(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return errors.New("not starting with /")
	}
	for _, tok := range strings.Split(s, "/")[1:] {
		escape := false
		for _, ch := range tok {
			if escape {
				escape = false
				if ch != '0' && ch != '1' {
					return errors.New("~ must be followed by 0 or 1")
				}
				continue
			}
			if ch == '~' {
				escape = true
			}
		}
		if escape {
			return errors.New("~ must be followed by 0 or 1")
		}
	}
	return nil
}

// see https://tools.ietf.org/html/draft-handrews-relative-json-pointer-01#section-3
func RelativeJSONPointer(s string) error {
	// start with non-negative-integer
	numDigits := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		numDigits++
	}
	if numDigits == 0 {
		return errors.New("must start with non-negative integer")
	}
	if numDigits > 1 && strings.HasPrefix(s, "0") {
		return errors.New("starts with zero")
	}
	s = s[numDigits:]

	// followed by either json-pointer or '#'
	if s == "#" {
		return nil
	}
	return JSONPointer(s)
}

// see https://datatracker.ietf.org/doc/html/rfc4122#page-4
func UUID(s string) error {
	hexGroups := []int{8, 4, 4, 4, 12}
	groups := strings.Split(s, "-")
	if len(groups) != len(hexGroups) {
		return fmt.Errorf("must have %d elements", len(hexGroups))
	}
	for i, group := range groups {
		if len(group) != hexGroups[i] {
			return fmt.Errorf("element %d must be %d characters long", i+1, hexGroups[i])
		}
		for _, ch := range group {
			switch {
			case ch >= '0' && ch <= '9':
			case ch >= 'a' && ch <= 'f':
			case ch >= 'A' && ch <= 'F':
			default:
				return fmt.Errorf("non-hex character %q", ch)
			}
		}
	}
	return nil
}

// see https://datatracker.ietf.org/doc/html/rfc3339#appendix-A
func Duration(s string) error {
	s, ok := strings.CutPrefix(s, "P")
	if !ok {
		return errors.New("must start with P")
	}
	if s == "" {
		return errors.New("nothing after P")
	}

	// dur-week
	if s, ok := strings.CutSuffix(s, "W"); ok {
		if s == "" {
			return errors.New("no number in week")
		}
		for _, ch := range s {
			if ch < '0' || ch > '9' {
				return errors.New("invalid week")
			}
		}
		return nil
	}

	allUnits := []string{"YMD", "HMS"}
	for i, s := range strings.Split(s, "T") {
		if i != 0 && s == "" {
			return errors.New("no time elements")
		}
		if i >= len(allUnits) {
			return errors.New("more than one T")
		}
		units := allUnits[i]
		for s != "" {
			digitCount := 0
			for _, ch := range s {
				if ch < '0' || ch > '9' {
					break
				}
				digitCount++
			}
			if digitCount == 0 {
				return errors.New("missing number")
			}
			s = s[digitCount:]
			if s == "" {
				return errors.New("missing unit")
			}
			unit := s[0]
			j := strings.IndexByte(units, unit)
			if j == -1 {
				if strings.IndexByte(allUnits[i], unit) != -1 {
					return fmt.Errorf("unit %q out of order", unit)
				}
				return fmt.Errorf("invalid unit %q", unit)
			}
			units = units[j+1:]
			s = s[1:]
		}
	}
	return nil
}

// Period checks s is a time interval: start/end, start/duration or duration/end.
func Period(s string) error {
	start, end, ok := strings.Cut(s, "/")
	if !ok {
		return errors.New("missing slash")
	}
	if strings.HasPrefix(start, "P") {
		if err := Duration(start); err != nil {
			return fmt.Errorf("invalid start duration: %v", err)
		}
		if err := DateTime(end); err != nil {
			return fmt.Errorf("invalid end date-time: %v", err)
		}
		return nil
	}
	if err := DateTime(start); err != nil {
		return fmt.Errorf("invalid start date-time: %v", err)
	}
	if strings.HasPrefix(end, "P") {
		if err := Duration(end); err != nil {
			return fmt.Errorf("invalid end duration: %v", err)
		}
	} else if err := DateTime(end); err != nil {
		return fmt.Errorf("invalid end date-time: %v", err)
	}
	return nil
}

func IPV4(s string) error {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return errors.New("expected four decimals")
	}
	for _, group := range groups {
		if len(group) > 1 && group[0] == '0' {
			return errors.New("leading zeros")
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return err
		}
		if n < 0 || n > 255 {
			return errors.New("decimal must be between 0 and 255")
		}
	}
	return nil
}

func IPV6(s string) error {
	if !strings.Contains(s, ":") {
		return errors.New("missing colon")
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if addr.Zone() != "" {
		return errors.New("zone id is not a part of ipv6 address")
	}
	return nil
}

// see https://en.wikipedia.org/wiki/Hostname#Restrictions_on_valid_host_names
func Hostname(s string) error {
	// entire hostname (including the delimiting dots but not a trailing dot) has a maximum of 253 ASCII characters
	s = strings.TrimSuffix(s, ".")
	if len(s) > 253 {
		return errors.New("more than 253 characters long")
	}

	// Hostnames are composed of series of labels concatenated with dots, as are all domain names
	for _, label := range strings.Split(s, ".") {
		// Each label must be from 1 to 63 characters long
		if len(label) < 1 || len(label) > 63 {
			return errors.New("label must be 1 to 63 characters long")
		}

		// labels must not start or end with a hyphen
		if strings.HasPrefix(label, "-") {
			return errors.New("label starts with hyphen")
		}
		if strings.HasSuffix(label, "-") {
			return errors.New("label ends with hyphen")
		}

		// labels may contain only the ASCII letters 'a' through 'z' (in a case-insensitive manner),
		// the digits '0' through '9', and the hyphen ('-')
		for _, ch := range label {
			switch {
			case ch >= 'a' && ch <= 'z':
			case ch >= 'A' && ch <= 'Z':
			case ch >= '0' && ch <= '9':
			case ch == '-':
			default:
				return fmt.Errorf("invalid character %q", ch)
			}
		}
	}
	return nil
}

var idnProfile = idna.New(
	idna.ValidateForRegistration(),
	idna.BidiRule(),
	idna.CheckJoiners(true),
)

// IDNHostname checks s is an internationalized hostname (RFC 5890).
func IDNHostname(s string) error {
	ascii, err := idnProfile.ToASCII(s)
	if err != nil {
		return err
	}
	return Hostname(ascii)
}

// see https://en.wikipedia.org/wiki/Email_address
func Email(s string) error {
	return email(s, false)
}

// IDNEmail is like Email, but allows non-ascii characters in the local part
// and an internationalized domain.
func IDNEmail(s string) error {
	return email(s, true)
}

func email(s string, idn bool) error {
	// entire email address to be no more than 254 characters long
	if !idn && len(s) > 254 {
		return errors.New("more than 254 characters long")
	}

	// email address is generally recognized as having two parts joined with an at-sign
	at := strings.LastIndexByte(s, '@')
	if at == -1 {
		return errors.New("missing @")
	}
	local, domain := s[:at], s[at+1:]

	// local part may be up to 64 characters long
	if len(local) > 64 {
		return errors.New("local part more than 64 characters long")
	}

	if len(local) > 1 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`) {
		local := local[1 : len(local)-1]
		if strings.IndexByte(local, '\\') != -1 || strings.IndexByte(local, '"') != -1 {
			return errors.New("backslash and quote are not allowed within quoted local part")
		}
	} else {
		if strings.HasPrefix(local, ".") {
			return errors.New("starts with dot")
		}
		if strings.HasSuffix(local, ".") {
			return errors.New("ends with dot")
		}
		if strings.Contains(local, "..") {
			return errors.New("consecutive dots")
		}
		for _, ch := range local {
			switch {
			case ch >= 'a' && ch <= 'z':
			case ch >= 'A' && ch <= 'Z':
			case ch >= '0' && ch <= '9':
			case strings.ContainsRune(".!#$%&'*+-/=?^_`{|}~", ch):
			case idn && ch >= 0x80:
			default:
				return fmt.Errorf("invalid character %q", ch)
			}
		}
	}

	// domain if enclosed in brackets, must match an IP address
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		domain = domain[1 : len(domain)-1]
		if rem, ok := strings.CutPrefix(domain, "IPv6:"); ok {
			if err := IPV6(rem); err != nil {
				return fmt.Errorf("invalid ipv6 address: %v", err)
			}
			return nil
		}
		if err := IPV4(domain); err != nil {
			return fmt.Errorf("invalid ipv4 address: %v", err)
		}
		return nil
	}

	check := Hostname
	if idn {
		check = IDNHostname
	}
	if err := check(domain); err != nil {
		return fmt.Errorf("invalid domain: %v", err)
	}
	return nil
}

// see https://datatracker.ietf.org/doc/html/rfc3339#section-5.6
func Date(s string) error {
	_, err := time.Parse("2006-01-02", s)
	return err
}

// see https://datatracker.ietf.org/doc/html/rfc3339#section-5.6
// NOTE: golang time package does not support leap seconds.
func Time(str string) error {
	// min: hh:mm:ssZ
	if len(str) < 9 {
		return errors.New("less than 9 characters long")
	}
	if str[2] != ':' || str[5] != ':' {
		return errors.New("missing colon in correct place")
	}

	// parse hh:mm:ss
	var hms []int
	for _, tok := range strings.SplitN(str[:8], ":", 3) {
		i, err := strconv.Atoi(tok)
		if err != nil {
			return errors.New("invalid hour/min/sec")
		}
		if i < 0 {
			return errors.New("non-positive hour/min/sec")
		}
		hms = append(hms, i)
	}
	h, m, s := hms[0], hms[1], hms[2]
	if h > 23 || m > 59 || s > 60 {
		return errors.New("hour/min/sec out of range")
	}
	str = str[8:]

	// parse sec-frac if present
	if rem, ok := strings.CutPrefix(str, "."); ok {
		numDigits := 0
		for _, ch := range rem {
			if ch < '0' || ch > '9' {
				break
			}
			numDigits++
		}
		if numDigits == 0 {
			return errors.New("no digits in second fraction")
		}
		str = rem[numDigits:]
	}

	if str != "z" && str != "Z" {
		// parse time-numoffset
		if len(str) != 6 {
			return errors.New("offset must be 6 characters long")
		}
		var sign int
		switch str[0] {
		case '+':
			sign = -1
		case '-':
			sign = +1
		default:
			return errors.New("offset must begin with plus/minus")
		}
		str = str[1:]
		if str[2] != ':' {
			return errors.New("missing colon in offset in correct place")
		}

		var zhm []int
		for _, tok := range strings.SplitN(str, ":", 2) {
			i, err := strconv.Atoi(tok)
			if err != nil {
				return errors.New("invalid hour/min in offset")
			}
			if i < 0 {
				return errors.New("non-positive hour/min in offset")
			}
			zhm = append(zhm, i)
		}
		zh, zm := zhm[0], zhm[1]
		if zh > 23 || zm > 59 {
			return errors.New("hour/min in offset out of range")
		}

		// apply timezone
		hm := (h*60 + m) + sign*(zh*60+zm)
		if hm < 0 {
			hm += 24 * 60
		}
		h, m = hm/60%24, hm%60
	}

	// check leap second
	if s >= 60 && (h != 23 || m != 59) {
		return errors.New("invalid leap second")
	}
	return nil
}

// see https://datatracker.ietf.org/doc/html/rfc3339#section-5.6
func DateTime(s string) error {
	// min: yyyy-mm-ddThh:mm:ssZ
	if len(s) < 20 {
		return errors.New("less than 20 characters long")
	}
	if s[10] != 't' && s[10] != 'T' {
		return errors.New("11th character must be t or T")
	}
	if err := Date(s[:10]); err != nil {
		return fmt.Errorf("invalid date element: %v", err)
	}
	if err := Time(s[11:]); err != nil {
		return fmt.Errorf("invalid time element: %v", err)
	}
	return nil
}

func parseURL(s string) (*gourl.URL, error) {
	u, err := gourl.Parse(s)
	if err != nil {
		return nil, err
	}

	// gourl does not validate ipv6 host address
	hostName := u.Hostname()
	if strings.Contains(hostName, ":") {
		if !strings.Contains(u.Host, "[") || !strings.Contains(u.Host, "]") {
			return nil, errors.New("ipv6 address not enclosed in brackets")
		}
		if err := IPV6(hostName); err != nil {
			return nil, fmt.Errorf("invalid ipv6 address: %v", err)
		}
	}
	return u, nil
}

func asciiOnly(s string) error {
	for _, ch := range s {
		if ch >= 0x80 {
			return fmt.Errorf("non-ascii character %q", ch)
		}
		if ch <= ' ' || strings.ContainsRune(`"<>\^`+"`{|}", ch) {
			return fmt.Errorf("invalid character %q", ch)
		}
	}
	return nil
}

func URI(s string) error {
	if err := asciiOnly(s); err != nil {
		return err
	}
	return IRI(s)
}

func IRI(s string) error {
	u, err := parseURL(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return errors.New("relative url")
	}
	return nil
}

func URIReference(s string) error {
	if err := asciiOnly(s); err != nil {
		return err
	}
	return IRIReference(s)
}

func IRIReference(s string) error {
	if strings.Contains(s, `\`) {
		return errors.New(`contains \`)
	}
	_, err := parseURL(s)
	return err
}

func URITemplate(s string) error {
	want := true
	for _, ch := range s {
		var got bool
		switch ch {
		case '{':
			got = true
		case '}':
			got = false
		default:
			continue
		}
		if got != want {
			return errors.New("nested curly braces")
		}
		want = !want
	}
	if !want {
		return errors.New("no matching closing brace")
	}
	return nil
}
