package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireloop/billing/internal/model"
)

const (
	profileHeader = "profile_id"
	principalKey  = "principal"
)

// ProfileResolver looks up the caller profile named by the profile_id
// header.
type ProfileResolver interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Profile resolves the profile_id header to a Principal and aborts with
// 401 before any handler runs when the caller cannot be resolved.
func Profile(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(profileHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing profile_id header"})
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid profile_id header"})
			return
		}

		profile, err := resolver.GetProfile(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(principalKey, model.Principal{ID: profile.ID, Type: profile.Type})
		c.Next()
	}
}

// MustPrincipal returns the Principal stored by the Profile middleware.
func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}
