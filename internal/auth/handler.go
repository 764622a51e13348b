package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/logger"
	"webtemplate-backend/internal/store"
)

// Handler serves the login, refresh and logout endpoints.
type Handler struct {
	store  *store.Store
	tokens *TokenIssuer
}

func NewHandler(s *store.Store, tokens *TokenIssuer) *Handler {
	return &Handler{store: s, tokens: tokens}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apperr.ParseError("Invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return apperr.UnauthorizedError("Email and password are required")
	}

	ctx := c.UserContext()

	user, err := h.findUserByEmail(ctx, body.Email)
	if err != nil {
		return apperr.UnauthorizedError("Invalid email or password")
	}

	if active, _ := user["active"].(bool); !active {
		return apperr.UnauthorizedError("Account is disabled")
	}

	passwordHash, _ := user["password_hash"].(string)
	if !CheckPassword(body.Password, passwordHash) {
		return apperr.UnauthorizedError("Invalid email or password")
	}

	userID, _ := user["id"].(string)
	email, _ := user["email"].(string)
	roles, err := h.store.Dialect.ScanArray(user["roles"])
	if err != nil {
		return fmt.Errorf("user roles: %w", err)
	}

	pair, err := h.generateTokenPair(ctx, userID, email, roles)
	if err != nil {
		return err
	}

	logger.Info().Str("user_id", userID).Msg("login")
	return c.JSON(fiber.Map{"data": pair})
}

// Refresh handles POST /api/auth/refresh. The presented refresh token is
// consumed and a new pair issued.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	token, err := refreshTokenFromBody(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	d := h.store.Dialect

	rows, err := store.QueryRows(ctx, h.store.DB,
		fmt.Sprintf(`SELECT rt.id, rt.user_id, rt.expires_at, u.email, u.roles, u.active
		 FROM _refresh_tokens rt
		 JOIN _users u ON u.id = rt.user_id
		 WHERE rt.token = %s`, d.Placeholder(1)), token)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return apperr.UnauthorizedError("Invalid refresh token")
	}
	if d.NeedsBoolFix() {
		store.NormalizeBooleans(rows, []string{"active"})
	}
	row := rows[0]

	tokenID, _ := row["id"].(string)
	// Consumed either way: rotated on success, discarded when expired.
	if err := h.consumeRefreshToken(ctx, tokenID); err != nil {
		return err
	}

	expiresAt, ok := store.ToTime(row["expires_at"])
	if !ok || time.Now().After(expiresAt) {
		return apperr.UnauthorizedError("Refresh token expired")
	}
	if active, _ := row["active"].(bool); !active {
		return apperr.UnauthorizedError("Account is disabled")
	}

	userID, _ := row["user_id"].(string)
	email, _ := row["email"].(string)
	roles, err := d.ScanArray(row["roles"])
	if err != nil {
		return fmt.Errorf("user roles: %w", err)
	}

	pair, err := h.generateTokenPair(ctx, userID, email, roles)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pair})
}

// consumeRefreshToken deletes the token row. Only the request whose delete
// removed the row may use the token.
func (h *Handler) consumeRefreshToken(ctx context.Context, tokenID string) error {
	n, err := store.Exec(ctx, h.store.DB,
		fmt.Sprintf("DELETE FROM _refresh_tokens WHERE id = %s", h.store.Dialect.Placeholder(1)), tokenID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.UnauthorizedError("Invalid refresh token")
	}
	return nil
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token, err := refreshTokenFromBody(c)
	if err != nil {
		return err
	}

	_, err = store.Exec(c.UserContext(), h.store.DB,
		fmt.Sprintf("DELETE FROM _refresh_tokens WHERE token = %s", h.store.Dialect.Placeholder(1)), token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// RegisterRoutes registers auth routes on the given Fiber app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	g := app.Group("/api/auth")
	g.Post("/login", h.Login)
	g.Post("/refresh", h.Refresh)
	g.Post("/logout", h.Logout)
}

// --- helpers ---

func refreshTokenFromBody(c *fiber.Ctx) (string, error) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return "", apperr.ParseError("Invalid request body")
	}
	if body.RefreshToken == "" {
		return "", apperr.UnauthorizedError("Refresh token is required")
	}
	return body.RefreshToken, nil
}

func (h *Handler) findUserByEmail(ctx context.Context, email string) (map[string]any, error) {
	rows, err := store.QueryRows(ctx, h.store.DB,
		fmt.Sprintf("SELECT id, email, password_hash, roles, active FROM _users WHERE email = %s",
			h.store.Dialect.Placeholder(1)), email)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	if h.store.Dialect.NeedsBoolFix() {
		store.NormalizeBooleans(rows, []string{"active"})
	}
	return rows[0], nil
}

func (h *Handler) generateTokenPair(ctx context.Context, userID, email string, roles []string) (*TokenPair, error) {
	accessToken, err := h.tokens.Issue(userID, email, roles)
	if err != nil {
		return nil, err
	}

	refreshToken := GenerateRefreshToken()
	expiresAt := time.Now().Add(RefreshTokenTTL).UTC().Format(time.RFC3339)

	pb := h.store.Dialect.NewParamBuilder()
	q := fmt.Sprintf(`INSERT INTO _refresh_tokens (id, user_id, token, expires_at) VALUES (%s, %s, %s, %s)`,
		pb.Add(uuid.NewString()), pb.Add(userID), pb.Add(refreshToken), pb.Add(expiresAt))
	if _, err := store.Exec(ctx, h.store.DB, q, pb.Params()...); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.tokens.accessTTL.Seconds()),
	}, nil
}
