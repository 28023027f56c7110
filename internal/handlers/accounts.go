package handlers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"textrecords/internal/config"
	"textrecords/internal/db"
	"textrecords/internal/middleware"
	"textrecords/internal/models"
	"textrecords/internal/validation"
)

const invalidCredentials = "Invalid email or password"

// AccountHandler handles local email/password sign-up and sign-in.
type AccountHandler struct {
	accounts AccountStore
	cfg      *config.Config
	logger   *zap.Logger
	cost     int
	compare  func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts AccountStore, cfg *config.Config, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		cfg:      cfg,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

// checkPassword compares password against user's hash. A nil user is checked
// against a throwaway hash of the same cost so unknown emails take as long.
func (h *AccountHandler) checkPassword(user *models.User, password string) bool {
	var hash []byte
	if user != nil {
		hash = []byte(user.PasswordHash)
	} else {
		hash = h.unknownUserHash()
	}
	err := h.compare(hash, []byte(password))
	return user != nil && err == nil
}

func (h *AccountHandler) unknownUserHash() []byte {
	h.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("unknown-account"), h.cost)
		if err != nil {
			h.logger.Error("failed to prepare password hash", zap.Error(err))
		}
		h.dummyHash = hash
	})
	return h.dummyHash
}

func (h *AccountHandler) renderForm(c fiber.Ctx, status int, page, email, message string) error {
	return c.Status(status).Render(page, MergeBranding(fiber.Map{
		"Email": email,
		"Error": message,
	}, h.cfg))
}

// ShowLogin renders the sign-in page.
func (h *AccountHandler) ShowLogin(c fiber.Ctx) error {
	if middleware.CurrentUser(c) != nil {
		return c.Redirect().To("/")
	}
	return h.renderForm(c, fiber.StatusOK, "login", "", "")
}

// ShowRegister renders the sign-up page.
func (h *AccountHandler) ShowRegister(c fiber.Ctx) error {
	if !h.cfg.EnableLocalAccounts {
		return fiber.NewError(fiber.StatusNotFound, "registration is disabled")
	}
	return h.renderForm(c, fiber.StatusOK, "register", "", "")
}

// Register creates a local account and signs the user in.
func (h *AccountHandler) Register(c fiber.Ctx) error {
	if !h.cfg.EnableLocalAccounts {
		return fiber.NewError(fiber.StatusNotFound, "registration is disabled")
	}

	email := validation.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	name := c.FormValue("name")

	if valid, msg := validation.ValidateEmail(email); !valid {
		return h.renderForm(c, fiber.StatusBadRequest, "register", email, msg)
	}
	if valid, msg := validation.ValidatePassword(password); !valid {
		return h.renderForm(c, fiber.StatusBadRequest, "register", email, msg)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return err
	}

	user := &models.User{Email: email, Name: name, PasswordHash: string(hash)}
	if err := h.accounts.CreateLocalUser(c.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return h.renderForm(c, fiber.StatusConflict, "register", email, db.ErrDuplicateEmail.Error())
		}
		return err
	}

	h.logger.Info("local account registered", zap.String("user_id", user.ID.String()))

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	return completeLogin(c, sess, user)
}

// Login verifies a local account's password and signs the user in.
func (h *AccountHandler) Login(c fiber.Ctx) error {
	if !h.cfg.EnableLocalAccounts {
		return fiber.NewError(fiber.StatusNotFound, "password sign-in is disabled")
	}

	email := validation.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")

	user, err := h.accounts.GetLocalUserByEmail(c.Context(), email)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		return err
	}

	if !h.checkPassword(user, password) {
		return h.renderForm(c, fiber.StatusUnauthorized, "login", email, invalidCredentials)
	}

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	return completeLogin(c, sess, user)
}
