package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sencity/user-service/internal/application/usecase/signup"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
)

const MsgSignUpSuccess = "signup successful"

const maxMultipartMemory = 1 << 20

type SignUpHandler struct {
	signUpUseCase *signup.SignUpUseCase
	logger        logger.Logger
}

func NewSignUpHandler(uc *signup.SignUpUseCase, log logger.Logger) *SignUpHandler {
	return &SignUpHandler{
		signUpUseCase: uc,
		logger:        log,
	}
}

func (h *SignUpHandler) SignUp(c *gin.Context) {
	sub, err := bindSubmission(c)
	if err != nil {
		c.Error(err)
		return
	}

	if _, err := h.signUpUseCase.Execute(c.Request.Context(), signup.SignUpInput{Submission: sub}); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": MsgSignUpSuccess})
}

// bindSubmission reads a JSON or form body. An empty body yields an empty
// submission so every required field is reported.
func bindSubmission(c *gin.Context) (userprofile.Submission, error) {
	var sub userprofile.Submission

	if isFormRequest(c) {
		if err := parseForm(c); err != nil {
			return sub, apperror.NewInvalidInput("invalid form body for signup", err)
		}
		return userprofile.SubmissionFromForm(c.Request.PostForm), nil
	}

	if err := c.ShouldBindJSON(&sub); err != nil && !errors.Is(err, io.EOF) {
		return sub, apperror.NewInvalidInput("invalid JSON body for signup", err)
	}
	return sub, nil
}

func isFormRequest(c *gin.Context) bool {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

func parseForm(c *gin.Context) error {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		return c.Request.ParseMultipartForm(maxMultipartMemory)
	}
	return c.Request.ParseForm()
}
