package model

import "strings"

// Platform is a catalog entry used for display metadata on redirect and
// profile pages. The catalog never restricts which platform strings a link
// may carry.
type Platform struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Color   string `json:"color"`
	BaseURL string `json:"base_url"`
}

// Platforms is the fixed display catalog.
var Platforms = []Platform{
	{Name: "GitHub", Icon: "🐙", Color: "#333", BaseURL: "https://github.com/"},
	{Name: "LinkedIn", Icon: "💼", Color: "#0077B5", BaseURL: "https://linkedin.com/in/"},
	{Name: "LeetCode", Icon: "🧠", Color: "#FFA116", BaseURL: "https://leetcode.com/u/"},
	{Name: "Twitter", Icon: "🐦", Color: "#1DA1F2", BaseURL: "https://twitter.com/"},
	{Name: "Instagram", Icon: "📸", Color: "#E4405F", BaseURL: "https://instagram.com/"},
	{Name: "Portfolio", Icon: "🌐", Color: "#6366F1", BaseURL: ""},
	{Name: "YouTube", Icon: "📺", Color: "#FF0000", BaseURL: "https://youtube.com/@"},
	{Name: "Medium", Icon: "✍️", Color: "#00AB6C", BaseURL: "https://medium.com/@"},
}

// PlatformByName looks up a catalog entry case-insensitively. The second
// return value reports whether the name is in the catalog.
func PlatformByName(name string) (Platform, bool) {
	for _, p := range Platforms {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Platform{}, false
}
