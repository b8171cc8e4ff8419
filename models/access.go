package models

import (
	"fmt"
	"strings"
)

// AccessType selects which traffic the collector gathers for an article.
type AccessType string

const (
	AccessDesktop    AccessType = "desktop"
	AccessMobile     AccessType = "mobile"
	AccessCumulative AccessType = "cumulative"
)

// API access variants understood by the per-article pageviews endpoint.
const (
	VariantDesktop   = "desktop"
	VariantMobileWeb = "mobile-web"
	VariantMobileApp = "mobile-app"
	VariantAllAccess = "all-access"
)

// Variants returns the API access variants requested for this access type, in
// request order.
func (a AccessType) Variants() []string {
	switch a {
	case AccessDesktop:
		return []string{VariantDesktop}
	case AccessMobile:
		return []string{VariantMobileWeb, VariantMobileApp}
	case AccessCumulative:
		return []string{VariantAllAccess}
	default:
		return nil
	}
}

// Label is the suffix used to tag chart lines, e.g. "Stegosaurus_Desktop".
func (a AccessType) Label() string {
	switch a {
	case AccessDesktop:
		return "Desktop"
	case AccessMobile:
		return "Mobile"
	case AccessCumulative:
		return "Cumulative"
	default:
		return string(a)
	}
}

// ParseAccessType converts a flag value into an AccessType.
func ParseAccessType(s string) (AccessType, error) {
	switch AccessType(strings.ToLower(strings.TrimSpace(s))) {
	case AccessDesktop:
		return AccessDesktop, nil
	case AccessMobile:
		return AccessMobile, nil
	case AccessCumulative, "all-access", "all":
		return AccessCumulative, nil
	}
	return "", fmt.Errorf("unknown access type %q (want desktop, mobile or cumulative)", s)
}

// AllAccessTypes lists the access types a full collection run produces.
func AllAccessTypes() []AccessType {
	return []AccessType{AccessMobile, AccessDesktop, AccessCumulative}
}
