package nativeapp

import "golang.org/x/oauth2"

// AuthURLOptions are the optional parameters of the authorization request.
type AuthURLOptions struct {
	State string
	// AccessType is "online" or "offline". Offline asks the provider for a refresh token.
	AccessType string
	// ApprovalPrompt is "auto" or "force".
	ApprovalPrompt string
	// CodeVerifier enables PKCE with the S256 challenge when set.
	CodeVerifier string
}

// BuildAuthorizationURL returns the provider's authorization URL with client_id, redirect_uri,
// scope and response_type=code, plus whatever opts enables.
func BuildAuthorizationURL(req AuthorizationRequest, opts AuthURLOptions) string {
	var params []oauth2.AuthCodeOption
	if opts.AccessType != "" {
		params = append(params, oauth2.SetAuthURLParam("access_type", opts.AccessType))
	}
	if opts.ApprovalPrompt != "" {
		params = append(params, oauth2.SetAuthURLParam("approval_prompt", opts.ApprovalPrompt))
	}
	if opts.CodeVerifier != "" {
		params = append(params, oauth2.S256ChallengeOption(opts.CodeVerifier))
	}
	return req.oauthConfig().AuthCodeURL(opts.State, params...)
}
