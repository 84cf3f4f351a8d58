package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Language  string `json:"language" validate:"omitempty,oneof=python javascript"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{SessionID: "s1", Language: "python"}))

	err := ValidateRequest(sampleRequest{Language: "cobol"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["SessionID"])
	assert.Equal(t, "must be one of: python javascript", verr.Fields["Language"])
}

func decode(t *testing.T, app *fiber.App, path string, header map[string]string) (int, Response) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var body Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res.StatusCode, body
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "Report not found") })
	app.Get("/invalid", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("dial tcp: secret host") })

	code, body := decode(t, app, "/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Report not found", body.Message)
	assert.False(t, body.Success)

	code, body = decode(t, app, "/invalid", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", body.Message)

	code, body = decode(t, app, "/boom", nil)
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/hr", NewJwtMiddleware("s3cret"), func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", c.Locals("user_id")))
	})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "hr-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	code, body := decode(t, app, "/hr", map[string]string{"Authorization": "Bearer " + signed})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "hr-1", body.Data)

	code, _ = decode(t, app, "/hr", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "x"}).SignedString([]byte("other"))
	code, body = decode(t, app, "/hr", map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", body.Message)
}
