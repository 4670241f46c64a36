package handler

import "mongoidentity/internal/identity/models"

type registerRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
}

type linkLoginRequest struct {
	Provider    string `json:"provider"`
	ProviderKey string `json:"providerKey"`
	DisplayName string `json:"displayName,omitempty"`
}

type claimsRequest struct {
	Claims []claimPayload `json:"claims"`
}

type claimPayload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type roleRequest struct {
	Name string `json:"name"`
}

type setPasswordRequest struct {
	PasswordHash string `json:"passwordHash"`
}

type loginResponse struct {
	Provider    string `json:"provider"`
	ProviderKey string `json:"providerKey"`
	DisplayName string `json:"displayName,omitempty"`
}

type claimResponse struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type securityStampResponse struct {
	SecurityStamp string `json:"securityStamp"`
}

// userResponse is the public shape of a user record. The password hash
// never leaves the process boundary.
type userResponse struct {
	ID                 string          `json:"id"`
	UserName           string          `json:"userName"`
	NormalizedUserName string          `json:"normalizedUserName"`
	Email              string          `json:"email,omitempty"`
	EmailConfirmed     bool            `json:"emailConfirmed"`
	TwoFactorEnabled   bool            `json:"twoFactorEnabled"`
	Logins             []loginResponse `json:"logins"`
	Claims             []claimResponse `json:"claims"`
	Roles              []string        `json:"roles"`
}

func toUserResponse(u *models.User) userResponse {
	logins := make([]loginResponse, 0, len(u.Logins))
	for _, l := range u.Logins {
		logins = append(logins, loginResponse{Provider: l.Provider, ProviderKey: l.ProviderKey, DisplayName: l.DisplayName})
	}
	claims := make([]claimResponse, 0, len(u.Claims))
	for _, c := range u.Claims {
		claims = append(claims, claimResponse{Type: c.Type, Value: c.Value})
	}
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return userResponse{
		ID:                 u.ID,
		UserName:           u.UserName,
		NormalizedUserName: u.NormalizedUserName,
		Email:              u.Email,
		EmailConfirmed:     u.EmailConfirmed,
		TwoFactorEnabled:   u.TwoFactorEnabled,
		Logins:             logins,
		Claims:             claims,
		Roles:              roles,
	}
}

func toClaims(payload []claimPayload) []models.Claim {
	claims := make([]models.Claim, 0, len(payload))
	for _, c := range payload {
		claims = append(claims, models.Claim{Type: c.Type, Value: c.Value})
	}
	return claims
}
