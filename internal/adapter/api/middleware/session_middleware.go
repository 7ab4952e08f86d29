package middleware

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/response"
)

const sessionKey = "session"

// SessionMiddleware turns the verified uid into a usecase.Session carrying
// the caller's role.
type SessionMiddleware struct {
	userRepo repository.UserRepository
}

func NewSessionMiddleware(userRepo repository.UserRepository) *SessionMiddleware {
	return &SessionMiddleware{
		userRepo: userRepo,
	}
}

// Load builds the session. Without a uid the session is anonymous; a uid
// with no profile yet gets a session with no role.
func (m *SessionMiddleware) Load(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := usecase.Session{}
		if uid, ok := c.Get("uid").(string); ok && uid != "" {
			s.UserID = uid
			user, err := m.userRepo.GetByID(c.Request().Context(), uid)
			switch {
			case err == nil:
				s.Role = user.Role
			case !errors.Is(err, errors.CodeNotFound):
				return response.Error(c, err)
			}
		}

		c.Set(sessionKey, s)
		return next(c)
	}
}

// RequireRole rejects callers whose session role differs. It must run after
// Load.
func (m *SessionMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := GetSession(c)
			var err error
			switch role {
			case entity.RoleFarmer:
				err = s.RequireFarmer()
			case entity.RoleConsumer:
				err = s.RequireConsumer()
			}
			if err != nil {
				return response.Error(c, err)
			}
			return next(c)
		}
	}
}

// GetSession returns the request's session, anonymous if none was loaded.
func GetSession(c echo.Context) usecase.Session {
	s, _ := c.Get(sessionKey).(usecase.Session)
	return s
}
