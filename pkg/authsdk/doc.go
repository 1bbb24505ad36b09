/*
Package authsdk provides the wire types and a Go client for the NovaStudy
authentication service.

# Overview

The server and the client share the request/response types in this package so
the JSON contract lives in one place. Every successful response is wrapped in
an envelope:

	{"timestamp": "...", "status": 200, "message": "Login successful", "data": {...}}

and every handler error uses the error body:

	{"status": 401, "message": "...", "path": "/auth/login", "errorCode": "ERR_INVALID_CREDENTIALS", "timestamp": "..."}

Requests rejected by the authentication pipeline carry a smaller body with only
status, message and errorCode.

# SDKClient vs Session

  - SDKClient: public endpoints (register, login, health)
  - Session: what login returns, holds the access and refresh tokens

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.Login(ctx, "alice", "secret123")

	// Requires VIEW_PROFILE
	account, err := session.MyAccount(ctx)

	// Exchange the refresh token for a new access token
	err = session.Refresh(ctx)

	// Revoke both tokens
	err = session.Logout(ctx)

# Error Handling

All non-2xx responses are returned as *APIError. Use errors.Is against the
predefined values to branch on the error code:

	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong username or password
	}
*/
package authsdk
