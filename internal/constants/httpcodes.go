// Package constants provides shared constant values used throughout the application.
//
// The httpcodes.go file defines HTTP-related constants such as headers, content
// types and security header values shared by the handlers and middleware.
package constants

// HTTP Headers define standard and custom HTTP header names used in the application.
const (
	// HeaderContentType indicates the media type of the resource.
	HeaderContentType = "Content-Type"

	// HeaderCacheControl directs caching mechanisms in requests and responses.
	HeaderCacheControl = "Cache-Control"

	// HeaderPragma provides backward compatibility with HTTP/1.0 caches.
	HeaderPragma = "Pragma"

	// HeaderExpires contains the date/time after which the response is considered stale.
	HeaderExpires = "Expires"

	// HeaderAuthorization contains the bearer token.
	HeaderAuthorization = "Authorization"

	// HeaderXRequestID contains a unique identifier for the request.
	HeaderXRequestID = "X-Request-ID"

	// HeaderRetryAfter tells a rate limited client when to try again.
	HeaderRetryAfter = "Retry-After"

	// HeaderXContentTypeOptions controls MIME type sniffing.
	HeaderXContentTypeOptions = "X-Content-Type-Options"

	// HeaderXFrameOptions controls whether the page can be displayed in a frame.
	HeaderXFrameOptions = "X-Frame-Options"

	// HeaderXXSSProtection enables the Cross-site scripting (XSS) filter in browsers.
	HeaderXXSSProtection = "X-XSS-Protection"

	// HeaderReferrerPolicy controls how much referrer information should be included with requests.
	HeaderReferrerPolicy = "Referrer-Policy"

	// HeaderContentSecurityPolicy defines content sources which are approved and can be loaded.
	HeaderContentSecurityPolicy = "Content-Security-Policy"
)

// ContentTypeJSON specifies the content is in JSON format.
const ContentTypeJSON = "application/json"

// Security Header Values define the values for various security-related HTTP headers.
const (
	FrameOptionsDeny           = "DENY"
	XSSProtectionModeBlock     = "1; mode=block"
	ContentTypeOptionsNoSniff  = "nosniff"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
	CSPDefaultSrc              = "default-src 'none'; frame-ancestors 'none'"
	CacheControlNoStore        = "no-cache, no-store, must-revalidate"
	PragmaNoCache              = "no-cache"
	ExpiresZero                = "0"
)
