package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sencity/user-service/internal/application/usecase/emailcheck"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
)

type EmailCheckHandler struct {
	checkEmailUseCase *emailcheck.CheckEmailUseCase
	logger            logger.Logger
}

func NewEmailCheckHandler(uc *emailcheck.CheckEmailUseCase, log logger.Logger) *EmailCheckHandler {
	return &EmailCheckHandler{
		checkEmailUseCase: uc,
		logger:            log,
	}
}

type checkEmailRequest struct {
	Email json.RawMessage `json:"email"`
}

func (h *EmailCheckHandler) CheckEmail(c *gin.Context) {
	email, err := emailParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.checkEmailUseCase.Execute(c.Request.Context(), emailcheck.CheckEmailInput{Email: email})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_duplicate": output.IsDuplicate})
}

// emailParam returns "" when the email is absent, null or not a string.
func emailParam(c *gin.Context) (string, error) {
	if c.Request.Method == http.MethodGet {
		return c.Query(userprofile.FieldEmail), nil
	}

	if isFormRequest(c) {
		if err := parseForm(c); err != nil {
			return "", apperror.NewInvalidInput("invalid form body for email check", err)
		}
		return c.Request.PostForm.Get(userprofile.FieldEmail), nil
	}

	var req checkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", apperror.NewInvalidInput("invalid JSON body for email check", err)
	}
	var email string
	if err := json.Unmarshal(req.Email, &email); err != nil {
		return "", nil
	}
	return email, nil
}
