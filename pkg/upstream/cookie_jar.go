package upstream

import (
	"sort"
	"strings"

	"acaradar-web/internal/pkg/logger"
)

// CookieHolder is anything that keeps the merged upstream cookie header between
// round trips. The browser session implements it.
type CookieHolder interface {
	UpstreamCookieValue() string
	SetUpstreamCookieValue(value string)
}

// CookieJar bridges upstream Set-Cookie headers into the per-session cookie
// string. Only the allow-listed cookie name ever reaches the stored value.
type CookieJar struct {
	allowedName string
	logger      logger.ILogger
}

func NewCookieJar(allowedName string, log logger.ILogger) *CookieJar {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CookieJar{
		allowedName: strings.TrimSpace(allowedName),
		logger:      log,
	}
}

func (j *CookieJar) AllowedName() string {
	return j.allowedName
}

// Extract returns the header value to send upstream, or "" when nothing is stored.
func (j *CookieJar) Extract(holder CookieHolder) string {
	if holder == nil {
		return ""
	}
	return serializeCookies(j.parse(holder.UpstreamCookieValue()))
}

// MergeAndStore folds freshly observed Set-Cookie values into the stored string.
// Without any allow-listed pair the stored value is left untouched.
func (j *CookieJar) MergeAndStore(holder CookieHolder, rawSetCookie []string) {
	if holder == nil || len(rawSetCookie) == 0 {
		return
	}

	observed := make(map[string]string)
	for _, raw := range rawSetCookie {
		name, value, ok := splitCookiePair(raw)
		if !ok {
			j.logger.Debug("CookieJar", "Skipping malformed Set-Cookie value", map[string]interface{}{"raw_length": len(raw)})
			continue
		}
		if name != j.allowedName {
			continue
		}
		observed[name] = value
	}
	if len(observed) == 0 {
		return
	}

	jar := j.parse(holder.UpstreamCookieValue())
	for name, value := range observed {
		jar[name] = value
	}
	holder.SetUpstreamCookieValue(serializeCookies(jar))
}

// parse turns "a=1; b=2" into a map, dropping anything not allow-listed.
func (j *CookieJar) parse(stored string) map[string]string {
	jar := make(map[string]string)
	for _, part := range strings.Split(stored, ";") {
		name, value, ok := splitNameValue(part)
		if !ok || name != j.allowedName {
			continue
		}
		jar[name] = value
	}
	return jar
}

// splitCookiePair keeps the "name=value" head of a Set-Cookie line and drops
// attributes such as Path or HttpOnly.
func splitCookiePair(raw string) (string, string, bool) {
	head, _, _ := strings.Cut(raw, ";")
	return splitNameValue(head)
}

func splitNameValue(pair string) (string, string, bool) {
	name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}

func serializeCookies(jar map[string]string) string {
	if len(jar) == 0 {
		return ""
	}
	names := make([]string, 0, len(jar))
	for name := range jar {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+jar[name])
	}
	return strings.Join(pairs, "; ")
}
