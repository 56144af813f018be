package sitekit

// authStatus is the GET /api/me response body.
type authStatus struct {
	Authed bool `json:"authed"`
}

// csrfResponse is the GET /api/csrf response body.
type csrfResponse struct {
	Token string `json:"token"`
}

// loginRequest is the POST /api/login request body.
type loginRequest struct {
	Password string `json:"password"`
}

// okResponse acknowledges a mutating operation.
type okResponse struct {
	OK bool `json:"ok"`
}
