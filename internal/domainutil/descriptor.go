package domainutil

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Descriptor identifies a validated Zulip organization. It is produced by
// [Checker.CheckDomain] and persisted as a known server.
type Descriptor struct {
	URL          string `yaml:"url"`
	Alias        string `yaml:"alias"`
	Icon         string `yaml:"icon,omitempty"`
	ZulipVersion string `yaml:"zulip_version,omitempty"`
	FeatureLevel int    `yaml:"feature_level,omitempty"`
}

// descriptorFromSettings builds a descriptor from a /api/v1/server_settings payload.
// base is the formatted URL the settings were fetched from.
func descriptorFromSettings(body []byte, base *url.URL) Descriptor {
	res := gjson.ParseBytes(body)
	d := Descriptor{
		URL:          base.String(),
		Alias:        base.Hostname(),
		ZulipVersion: res.Get("zulip_version").String(),
		FeatureLevel: int(res.Get("zulip_feature_level").Int()),
	}

	// Older servers only send realm_uri.
	realm := res.Get("realm_url").String()
	if realm == "" {
		realm = res.Get("realm_uri").String()
	}
	if realm != "" {
		if ru, err := url.Parse(realm); err == nil && ru.Host != "" {
			base = ru
			d.URL = strings.TrimRight(ru.String(), "/")
		}
	}
	if name := strings.TrimSpace(res.Get("realm_name").String()); name != "" {
		d.Alias = name
	}
	if icon := res.Get("realm_icon").String(); icon != "" {
		if ref, err := url.Parse(icon); err == nil {
			d.Icon = base.ResolveReference(ref).String()
		}
	}
	return d
}

// isServerSettings reports whether body looks like a successful server_settings response.
func isServerSettings(body []byte) bool {
	if !gjson.ValidBytes(body) {
		return false
	}
	return gjson.GetBytes(body, "result").String() == "success"
}
