package api

import "context"

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, email, password string) (TokenData, error) {
	body := map[string]string{"email": email, "password": password}
	var t TokenData
	if err := c.post(ctx, "/auth/login/", body, &t); err != nil {
		return TokenData{}, err
	}
	return t, nil
}

// Register creates a new customer account. The backend echoes the created
// user; it does not log the user in.
func (c *Client) Register(ctx context.Context, username, email, password, password2 string) (UserData, error) {
	body := map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password2,
	}
	var u UserData
	if err := c.post(ctx, "/auth/register/", body, &u); err != nil {
		return UserData{}, err
	}
	return u, nil
}

// Me returns the user owning the installed credential.
func (c *Client) Me(ctx context.Context) (UserData, error) {
	var u UserData
	if err := c.get(ctx, "/auth/me/", nil, &u); err != nil {
		return UserData{}, err
	}
	return u, nil
}

// ChangePassword updates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.do(ctx, "PUT", "/auth/change-password/", nil, body, nil)
}

// ResetPassword triggers the password reset mail for the given address.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/reset-password/", map[string]string{"email": email}, nil)
}
