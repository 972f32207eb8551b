// Package google sources the authorization expression carried on the hosted
// Gmail tool binding.
//
// The expression is either provided verbatim through configuration or minted
// from an OAuth2 token source backed by a token file, in which case it tracks
// token refreshes.
package google
