package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/auth"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/nativeapp"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ClientController struct {
	clientService services.ClientService
	baseURL       string
}

// NewClientController answers registrations with endpoints under baseURL, e.g. http://localhost:8080
func NewClientController(clientService services.ClientService, baseURL string) *ClientController {
	return &ClientController{clientService: clientService, baseURL: strings.TrimRight(baseURL, "/")}
}

// InstalledClientSecrets wraps the client details the way a client_secrets.json file does
type InstalledClientSecrets struct {
	Installed nativeapp.ClientSecrets `json:"installed"`
}

// CreateClient godoc
// @Summary Register an installed application
// @Description Create an installed OAuth2 client on the loopback domain. The response is a client_secrets.json document; the secret is shown only once.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body object{name=string} true "Client details"
// @Success 201 {object} InstalledClientSecrets
// @Failure 400 {object} models.APIError "Invalid request"
// @Failure 500 {object} models.APIError "Client creation failed"
// @Security BearerAuth
// @Router /api/v1/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	client, secret, err := cc.clientService.RegisterInstalledClient(req.Name, c.GetUint("userID"))
	if err != nil {
		log.WithError(err).Error("Client registration failed")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "client creation failed"))
		return
	}

	log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"owner":     client.UserID,
	}).Info("Installed client registered")

	c.JSON(http.StatusCreated, NewInstalledClientSecrets(cc.baseURL, client.ID, secret))
}

// NewInstalledClientSecrets describes a registered client with endpoints under baseURL
func NewInstalledClientSecrets(baseURL, clientID, secret string) InstalledClientSecrets {
	baseURL = strings.TrimRight(baseURL, "/")
	return InstalledClientSecrets{Installed: nativeapp.ClientSecrets{
		ClientID:     clientID,
		ClientSecret: secret,
		AuthURI:      baseURL + "/oauth/authorize",
		TokenURI:     baseURL + "/oauth/token",
		RedirectURIs: []string{services.InstalledClientDomain, auth.OOBRedirectURI},
	}}
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} object "List of clients"
// @Failure 500 {object} models.APIError "Failed to retrieve clients"
// @Security BearerAuth
// @Router /api/v1/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "failed to retrieve clients"))
		return
	}

	// never echo the secret hash
	response := make([]gin.H, 0, len(clients))
	for _, client := range clients {
		response = append(response, gin.H{
			"client_id":   client.ID,
			"name":        client.Name,
			"domain":      client.GetDomain(),
			"scopes":      client.Scopes,
			"grant_types": client.GrantTypes,
			"created_at":  client.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated user, revoking every token issued to it
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/v1/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	clientID := c.Param("id")

	if err := cc.clientService.DeleteClient(clientID, c.GetUint("userID")); err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "client not found", map[string]interface{}{"client_id": clientID}))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "client deletion failed"))
		return
	}

	c.Status(http.StatusNoContent)
}
