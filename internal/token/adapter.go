package token

import (
	authmw "campusgate/pkg/platform/middleware/auth"
)

// MiddlewareAdapter exposes the token service through the middleware's
// validator interface.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) Validate(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		PrincipalID: claims.PrincipalID,
		Email:       claims.Email,
		Role:        claims.Role,
	}, nil
}
