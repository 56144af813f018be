package sitekit

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

func (a *App) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, authStatus{Authed: isAuthed(c)})
}

func (a *App) handleCSRF(c echo.Context) error {
	token, err := ensureCSRFToken(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, csrfResponse{Token: token})
}

func (a *App) handleLogin(c echo.Context) error {
	// The limiter counts every attempt, successful or not.
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "too many login attempts")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.String(http.StatusBadRequest, "missing password")
	}
	if a.Config.PasswordHash == "" {
		return c.String(http.StatusInternalServerError, "server not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.Config.PasswordHash), []byte(req.Password)); err != nil {
		return c.String(http.StatusUnauthorized, "invalid credentials")
	}

	if err := setAuthedSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (a *App) handleContent(c echo.Context) error {
	raw, err := a.Store.Read()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (a *App) handleContentSave(c echo.Context) error {
	var doc any
	if err := json.NewDecoder(c.Request().Body).Decode(&doc); err != nil {
		return c.String(http.StatusBadRequest, "payload must be an object")
	}
	if err := ValidateSiteContent(doc); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	pretty = append(pretty, '\n')
	if len(pretty) > a.Config.MaxContentBytes {
		return c.String(http.StatusRequestEntityTooLarge, "payload too large")
	}

	if err := a.Store.Write(pretty); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
