package middleware

import (
	"errors"

	"learnhub/config"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// Protect authenticates the bearer token and loads the caller into the
// request context. Downstream handlers read it with CurrentUser.
func Protect(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Not authorized to access this route")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "User no longer exists")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		c.Locals(currentUserKey, &user)
		return c.Next()
	}
}

// Authorize rejects callers whose role is not in the allowed set.
// Must run after Protect.
func Authorize(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Not authorized to access this route")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Role '"+user.Role+"' is not authorized to access this route")
	}
}

// CurrentUser returns the authenticated caller set by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
