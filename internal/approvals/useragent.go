package approvals

import "strings"

// FormatUserAgent condenses a raw browser user agent into
// "<Browser> Browser (<Platform>)" for session listings. Unrecognized
// agents are passed through the Unknown buckets rather than shown raw.
func FormatUserAgent(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	return browserOf(userAgent) + " Browser (" + platformOf(userAgent) + ")"
}

// browserOf identifies the browser. Order matters: most agents contain both
// "Chrome" and "Safari".
func browserOf(ua string) string {
	switch {
	case strings.Contains(ua, "Edg/"):
		return "Edge"
	case strings.Contains(ua, "OPR/"):
		return "Opera"
	case strings.Contains(ua, "Chrome/"):
		return "Chrome"
	case strings.Contains(ua, "Firefox/"):
		return "Firefox"
	case strings.Contains(ua, "Safari/"):
		// After Chrome, Edge and Opera.
		return "Safari"
	case strings.Contains(ua, "Trident/"):
		return "Internet Explorer"
	default:
		return "Unknown"
	}
}

// platformOf identifies the OS. "Android" agents also contain "Linux".
func platformOf(ua string) string {
	switch {
	case strings.Contains(ua, "Windows NT"):
		return "Windows"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return "iOS"
	case strings.Contains(ua, "Macintosh"), strings.Contains(ua, "Mac OS X"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Unknown Platform"
	}
}
