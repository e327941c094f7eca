package service

import (
	"strings"

	"github.com/mssola/useragent"
)

// describeClient reduces a User-Agent to "Browser on OS" for the ledger.
// An empty agent yields "".
func describeClient(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if ua.Bot() {
		return "bot " + browser
	}

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	os := ua.OS()
	if browser == "" {
		browser = "unknown"
	}
	if os == "" {
		return browser
	}
	return browser + " on " + os
}
