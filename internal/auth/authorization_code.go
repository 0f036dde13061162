package auth

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/gin-gonic/gin"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/sirupsen/logrus"
)

// authorize request parameters carried through the consent form
var consentParams = []string{
	"client_id", "redirect_uri", "response_type", "scope", "state",
	"code_challenge", "code_challenge_method", "access_type", "approval_prompt", "prompt",
}

var consentPage = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientName}}</title></head>
<body>
<h1>{{.ClientName}} wants to access your account</h1>
<p>Signed in as {{.UserEmail}}</p>
<ul>{{range .Scopes}}<li>{{.}}</li>{{end}}</ul>
<form method="post" action="{{.Action}}">
{{range $name, $value := .Params}}<input type="hidden" name="{{$name}}" value="{{$value}}">
{{end}}<button type="submit" name="decision" value="approve">Allow</button>
<button type="submit" name="decision" value="deny">Deny</button>
</form>
</body>
</html>
`))

var codePage = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorization code</title></head>
<body>
{{if .Code}}<p>Please copy this code, switch to your application and paste it there:</p>
<pre>{{.Code}}</pre>{{else}}<p>Authorization failed: {{.Error}}</p>{{end}}
</body>
</html>
`))

// HandleAuthorize handles the authorization endpoint
// @Summary Authorization Endpoint
// @Description Start the authorization code grant. Renders a consent page unless auto-approve is on, then redirects to redirect_uri with code and state (or error=access_denied).
// @Tags OAuth2
// @Produce html
// @Param client_id query string true "Client ID"
// @Param redirect_uri query string true "Loopback redirect URI on any port, or urn:ietf:wg:oauth:2.0:oob"
// @Param response_type query string true "Must be code"
// @Param scope query string false "Space-separated scopes"
// @Param state query string false "Opaque value echoed back"
// @Param code_challenge query string false "PKCE challenge"
// @Param code_challenge_method query string false "S256 or plain"
// @Success 200 {string} string "Consent page"
// @Failure 302 {string} string "Redirect with code or error"
// @Failure 400 {object} models.OAuth2Error
// @Router /oauth/authorize [get]
func (o *OAuthService) HandleAuthorize(c *gin.Context) {
	clientID := c.Request.FormValue("client_id")
	redirectURI := c.Request.FormValue("redirect_uri")

	// Validate client and redirect URI before anything is redirected to it
	var client models.OAuthClient
	if err := o.db.WithContext(c).Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidClient, "unknown client_id"))
		return
	}
	if err := ValidateRedirectURI(client.GetDomain(), redirectURI); err != nil {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri is not registered for this client"))
		return
	}

	w := &oobResponseWriter{ResponseWriter: c.Writer}

	if err := o.server.HandleAuthorizeRequest(w, c.Request); err != nil {
		log.WithError(err).WithField("client_id", clientID).Warn("Invalid authorization request")
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, err.Error()))
		return
	}

	if w.location != "" {
		renderCodePage(c, w.location)
	}
}

// authorizeUser is the go-oauth2 UserAuthorizationHandler. An empty user id with a nil error means
// the consent page was rendered and the request ends there.
func (o *OAuthService) authorizeUser(w http.ResponseWriter, r *http.Request) (string, error) {
	userID := strconv.FormatUint(uint64(o.opts.DevUserID), 10)
	logger := log.WithFields(logrus.Fields{
		"client_id": r.FormValue("client_id"),
		"scope":     r.FormValue("scope"),
	})

	if o.opts.AutoApprove {
		logger.Info("Authorization auto-approved")
		return userID, nil
	}

	if r.Method == http.MethodPost {
		switch r.FormValue("decision") {
		case "approve":
			logger.Info("Authorization approved")
			return userID, nil
		case "deny":
			logger.Info("Authorization denied")
			return "", oauth2errors.ErrAccessDenied
		}
	}

	return "", o.renderConsent(w, r)
}

func (o *OAuthService) renderConsent(w http.ResponseWriter, r *http.Request) error {
	var client models.OAuthClient
	if err := o.db.WithContext(r.Context()).Where("id = ?", r.FormValue("client_id")).First(&client).Error; err != nil {
		return oauth2errors.ErrInvalidClient
	}
	var user models.User
	if err := o.db.WithContext(r.Context()).First(&user, o.opts.DevUserID).Error; err != nil {
		return err
	}

	params := map[string]string{}
	for _, name := range consentParams {
		if value := r.FormValue(name); value != "" {
			params[name] = value
		}
	}

	name := client.Name
	if name == "" {
		name = client.ID
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	return consentPage.Execute(w, map[string]any{
		"ClientName": name,
		"UserEmail":  user.Email,
		"Scopes":     strings.Fields(r.FormValue("scope")),
		"Action":     r.URL.Path,
		"Params":     params,
	})
}

// oobResponseWriter swallows the redirect to the out-of-band URI so the code can be shown instead
type oobResponseWriter struct {
	http.ResponseWriter
	location string
}

func (w *oobResponseWriter) WriteHeader(status int) {
	if status == http.StatusFound {
		if location := w.Header().Get("Location"); strings.HasPrefix(location, OOBRedirectURI) {
			w.location = location
			w.Header().Del("Location")
			return
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func renderCodePage(c *gin.Context, location string) {
	data := map[string]string{}
	if u, err := url.Parse(location); err == nil {
		query := u.Query()
		data["Code"] = query.Get("code")
		data["Error"] = query.Get("error")
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := codePage.Execute(c.Writer, data); err != nil {
		log.WithError(err).Error("Failed to render code page")
	}
}
