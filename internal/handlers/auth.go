package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"blogdesk/internal/auth"
	"blogdesk/internal/store"
)

// Auth groups the admin registration and login handlers.
type Auth struct {
	admins *store.AdminStore
	issuer *auth.Issuer
}

// NewAuth creates a new Auth handler group.
func NewAuth(admins *store.AdminStore, issuer *auth.Issuer) *Auth {
	return &Auth{admins: admins, issuer: issuer}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeCredentials reads {username, password} from a JSON body.
func decodeCredentials(r *http.Request) (credentials, bool) {
	var c credentials
	if err := render.DecodeJSON(r.Body, &c); err != nil {
		return c, false
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, true
}

// Register creates a new admin account.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(r)
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateCredentials(c.Username, c.Password); msg != "" {
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}

	_, err := a.admins.Create(r.Context(), c.Username, c.Password)
	if errors.Is(err, store.ErrDuplicateUsername) {
		writeMessage(w, r, http.StatusBadRequest, "Username already exists")
		return
	}
	if err != nil {
		internalError(w, r, "register admin failed", err)
		return
	}

	writeMessage(w, r, http.StatusCreated, "Admin registered successfully")
}

// Login verifies credentials and returns a bearer token. Unknown users and
// wrong passwords get the same answer.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(r)
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := a.admins.Authenticate(r.Context(), c.Username, c.Password)
	if err != nil {
		internalError(w, r, "login lookup failed", err)
		return
	}
	if admin == nil {
		writeMessage(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := a.issuer.Issue(admin.Username)
	if err != nil {
		internalError(w, r, "issue token failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"access_token": token})
}

// Me returns the identity carried by the request's token.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"username": username})
}
