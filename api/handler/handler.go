package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"golang.org/x/text/message"

	"github.com/jvre/memberd/account"
	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/locale"
	"github.com/jvre/memberd/scheduler"
)

// Handler serves the public account endpoints.
type Handler struct {
	svc     *account.Service
	db      database.DB
	sched   *scheduler.Scheduler
	printer *message.Printer
}

// New creates a new handler.
func New(svc *account.Service, db database.DB, sched *scheduler.Scheduler, printer *message.Printer) *Handler {
	return &Handler{
		svc:     svc,
		db:      db,
		sched:   sched,
		printer: printer,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type customField struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

type registerRequest struct {
	Username string        `json:"username" binding:"required,min=3,max=64"`
	Email    string        `json:"email" binding:"required,email"`
	Password string        `json:"password" binding:"required,min=8,max=128"`
	Fields   []customField `json:"fields" binding:"omitempty,dive"`
}

// Register handles POST /api/account/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	fields := lo.Map(req.Fields, func(f customField, _ int) account.CustomField {
		return account.CustomField{Name: f.Name, Value: f.Value}
	})

	acc, err := h.svc.RegisterAccount(c.Request.Context(), account.RegisterData{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, fields)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account_id": acc.ID,
		"username":   acc.Username,
		"status":     int(acc.Status),
	})
}

// ConfirmRegister handles GET /account/confirm-register/:username/:code.
func (h *Handler) ConfirmRegister(c *gin.Context) {
	err := h.svc.ConfirmRegister(c.Request.Context(), c.Param("username"), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": h.printer.Sprintf("Your account has been activated. You can now sign in."),
	})
}

// fail maps a workflow failure to an HTTP response. Business failures carry
// the localized message, anything unexpected is a plain 500.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, account.ErrUsernameExists), errors.Is(err, account.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": locale.ErrorMessage(h.printer, err)})
	case errors.Is(err, account.ErrUsernameDisallowed), errors.Is(err, account.ErrConfirmCodeInvalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": locale.ErrorMessage(h.printer, err)})
	case errors.Is(err, account.ErrTemplateUnreadable), errors.Is(err, account.ErrEmailSendFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": locale.ErrorMessage(h.printer, err)})
	default:
		log.Error("registration request failed", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
