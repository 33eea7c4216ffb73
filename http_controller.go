package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterPayload is the registration DTO.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginPayload is the login DTO.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DefaultRouteRoles is the static table of role-gated operations,
// consulted once when routes are registered.
var DefaultRouteRoles = RoleTable{
	"auth.private3": {RoleAdmin},
}

// HTTPController exposes the credential service over fiber routes.
type HTTPController struct {
	auther *Auther
	roles  RoleTable
	logger Logger
}

func NewHTTPController(auther *Auther) *HTTPController {
	return &HTTPController{
		auther: auther,
		roles:  DefaultRouteRoles,
		logger: defLogger{},
	}
}

func (ctrl *HTTPController) WithRoleTable(table RoleTable) *HTTPController {
	if table != nil {
		ctrl.roles = table
	}
	return ctrl
}

func (ctrl *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		ctrl.logger = logger
	}
	return ctrl
}

// RegisterRoutes mounts the auth surface. Role requirements come from the
// static table; routes without an entry are authenticated only.
func (ctrl *HTTPController) RegisterRoutes(app fiber.Router) {
	grp := app.Group("/auth")

	grp.Post("/register", ctrl.Register)
	grp.Post("/login", ctrl.Login)
	grp.Get("/check-status", ctrl.auther.Protected(), ctrl.CheckStatus)
	grp.Get("/private", ctrl.auther.Protected(ctrl.roles.Required("auth.private")...), ctrl.Private)
	grp.Get("/private3", ctrl.auther.Protected(ctrl.roles.Required("auth.private3")...), ctrl.Private3)
}

func (ctrl *HTTPController) Register(c *fiber.Ctx) error {
	payload := RegisterPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return RespondWithError(c, ErrNoEmptyString)
	}

	result, err := ctrl.auther.Register(c.UserContext(), payload.Email, payload.Password, payload.FullName)
	if err != nil {
		ctrl.logger.Info("registration rejected", "error", err)
		return RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (ctrl *HTTPController) Login(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return RespondWithError(c, ErrNoEmptyString)
	}

	result, err := ctrl.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		ctrl.logger.Info("login rejected", "detail", CredentialDetail(err))
		return RespondWithError(c, err)
	}

	return c.JSON(result)
}

// CheckStatus re-issues a token for the already-resolved identity.
func (ctrl *HTTPController) CheckStatus(c *fiber.Ctx) error {
	user, _ := UserFromFiber(c, ctrl.auther.cfg.GetContextKey())

	result, err := ctrl.auther.RefreshStatus(c.UserContext(), user)
	if err != nil {
		return RespondWithError(c, err)
	}

	return c.JSON(result)
}

func (ctrl *HTTPController) Private(c *fiber.Ctx) error {
	user, _ := UserFromFiber(c, ctrl.auther.cfg.GetContextKey())

	return c.JSON(fiber.Map{
		"ok":        true,
		"message":   "Success Private",
		"user":      user,
		"userEmail": user.Email,
	})
}

func (ctrl *HTTPController) Private3(c *fiber.Ctx) error {
	user, _ := UserFromFiber(c, ctrl.auther.cfg.GetContextKey())

	return c.JSON(fiber.Map{
		"ok":   true,
		"user": user,
	})
}
