package click

import (
	"strings"

	"bioAffiliate/domain"
)

// Substrings that mark a user agent as automated traffic. Bot clicks are
// stored for audit but excluded from every rate statistic.
var botMarkers = []string{
	"bot",
	"crawler",
	"spider",
	"slurp",
	"curl",
	"wget",
	"python-requests",
	"go-http-client",
	"headless",
	"phantomjs",
	"monitor",
	"preview",
	"facebookexternalhit",
	"whatsapp",
}

func isBot(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}

	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}

	return false
}

func deviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return domain.DeviceTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return domain.DeviceMobile
	default:
		return domain.DeviceDesktop
	}
}

func browserFamily(userAgent string) string {
	ua := strings.ToLower(userAgent)

	// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari".
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "opera"
	case strings.Contains(ua, "firefox"):
		return "firefox"
	case strings.Contains(ua, "chrome"):
		return "chrome"
	case strings.Contains(ua, "safari"):
		return "safari"
	default:
		return "other"
	}
}
