package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// CookieProvider supplies the browser session cookies sent with Drive requests.
type CookieProvider interface {
	AcquireCookies(ctx context.Context) (map[string]string, error)
}

type FileCookieProvider struct {
	Path string
}

func (p FileCookieProvider) AcquireCookies(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening cookie file: %w", err)
	}
	defer f.Close()
	return LoadCookies(f)
}

type StaticCookieProvider map[string]string

func (p StaticCookieProvider) AcquireCookies(ctx context.Context) (map[string]string, error) {
	return maps.Clone(map[string]string(p)), nil
}

// LoadCookies reads either a browser export ([{"name": ..., "value": ...}, ...]) or a flat
// name to value object.
func LoadCookies(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading cookies: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("cookie file is empty")
	}
	cookies := make(map[string]string)
	if data[0] == '[' {
		var entries []struct {
			Name  *string `json:"name"`
			Value *string `json:"value"`
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("error parsing cookie list: %w", err)
		}
		for _, entry := range entries {
			if entry.Name != nil && entry.Value != nil {
				cookies[*entry.Name] = *entry.Value
			}
		}
		return cookies, nil
	}
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("error parsing cookie object: %w", err)
	}
	return cookies, nil
}

type CookieInfo struct {
	Name     string
	What     string
	Why      string
	How      string
	When     string
	Required bool
}

var cookieOrder = []string{"SID", "HSID", "SSID", "APISID", "SAPISID", "__Secure-1PSID", "__Secure-3PSID"}

var cookieCatalog = map[string]CookieInfo{
	"SID": {
		Name: "SID", Required: true,
		What: "Primary session identifier for your Google account",
		Why:  "Google uses it to verify you are logged in and authorized",
		How:  "DevTools > Application > Cookies > google.com, copy the value of SID",
		When: "Sent with every request to authenticate the session",
	},
	"HSID": {
		Name: "HSID", Required: true,
		What: "Hashed session ID that backs up SID",
		Why:  "Adds a second check to session validation",
		How:  "Same cookie list as SID, look for HSID",
		When: "Sent alongside SID",
	},
	"SSID": {
		Name: "SSID",
		What: "Session identifier for HTTPS connections",
		Why:  "Ties the session to secure transport",
		How:  "Same cookie list, look for SSID",
		When: "Sent on HTTPS requests",
	},
	"APISID": {
		Name: "APISID",
		What: "Session ID for Google API requests",
		Why:  "Needed by some Drive endpoints",
		How:  "Look for APISID in the google.com cookies",
		When: "Sent when calling get_video_info",
	},
	"SAPISID": {
		Name: "SAPISID",
		What: "Secure variant of APISID",
		Why:  "Authenticates API calls over HTTPS",
		How:  "Next to APISID, look for SAPISID",
		When: "Sent on secure API calls",
	},
	"__Secure-1PSID": {
		Name: "__Secure-1PSID",
		What: "Secure first-party session ID",
		Why:  "Newer first-party session cookie",
		How:  "Look for cookies starting with __Secure-",
		When: "Sent by modern browsers on first-party requests",
	},
	"__Secure-3PSID": {
		Name: "__Secure-3PSID",
		What: "Secure third-party session ID",
		Why:  "Newer cross-site session cookie",
		How:  "Look for cookies starting with __Secure-",
		When: "Sent by modern browsers on cross-site requests",
	},
}

// CookieCatalog returns the documented Google session cookies in display order. The slice is a
// copy; the catalog itself never changes.
func CookieCatalog() []CookieInfo {
	out := make([]CookieInfo, 0, len(cookieOrder))
	for _, name := range cookieOrder {
		out = append(out, cookieCatalog[name])
	}
	return out
}

func LookupCookie(name string) (CookieInfo, bool) {
	info, ok := cookieCatalog[name]
	return info, ok
}

func RequiredCookies() []string {
	var out []string
	for _, name := range cookieOrder {
		if cookieCatalog[name].Required {
			out = append(out, name)
		}
	}
	return out
}

// MissingRequired lists required cookie names that are absent or empty in cookies.
func MissingRequired(cookies map[string]string) []string {
	var missing []string
	for _, name := range RequiredCookies() {
		if cookies[name] == "" {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
