package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/repository"
	"marketplace/internal/utils"
)

const msgBadCredentials = "Invalid email or password."

func (h *Handler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title": "Register", "Form": RegistrationForm{}, "Errors": map[string]string{},
	})
}

func (h *Handler) Register(c *gin.Context) {
	var form RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, form, fieldErrors(err))
		return
	}

	hash, err := utils.HashPassword(form.Password)
	if err != nil {
		h.fail(c, "hash password", err)
		return
	}
	user := &models.User{
		Username:     strings.TrimSpace(form.Username),
		Email:        form.Email,
		PasswordHash: hash,
		IsSeller:     form.IsSeller,
	}
	err = h.Users.Create(c.Request.Context(), user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		h.renderRegister(c, form, map[string]string{"email": "Email already registered."})
		return
	}
	if err != nil {
		h.fail(c, "create user", err)
		return
	}

	e := utils.NewAuditEntry(c, utils.ActionUserRegister, utils.ResourceUser, strconv.FormatUint(uint64(user.ID), 10))
	e.UserID, e.UserEmail = e.ResourceID, user.Email
	h.audit(c, e)

	h.flashRedirect(c, "Registration successful. Please login.", "/login")
}

func (h *Handler) renderRegister(c *gin.Context, form RegistrationForm, errs map[string]string) {
	form.Password, form.Password2 = "", ""
	h.render(c, http.StatusUnprocessableEntity, "register.html", gin.H{
		"Title": "Register", "Form": form, "Errors": errs,
	})
}

func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login", "Form": LoginForm{}, "Errors": map[string]string{}, "Next": c.Query("next"),
	})
}

func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	next := c.Query("next")

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "login.html", gin.H{
			"Title": "Login", "Form": form, "Errors": fieldErrors(err), "Next": next,
		})
		return
	}

	user, err := h.Users.GetByEmail(ctx, form.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.BurnPasswordCheck(form.Password)
		h.loginFailed(c, form, next)
		return
	case err != nil:
		h.fail(c, "load user by email", err)
		return
	}

	ok, err := utils.VerifyPassword(form.Password, user.PasswordHash)
	if err != nil {
		h.Logger.WarnContext(ctx, "unreadable password hash", "user_id", user.ID, "err", err)
	}
	if !ok {
		h.loginFailed(c, form, next)
		return
	}

	if h.Throttle != nil {
		if err := h.Throttle.Reset(ctx, middleware.ThrottleKey(form.Email)); err != nil {
			h.Logger.WarnContext(ctx, "reset login throttle", "err", err)
		}
	}
	h.Sessions.Login(c, user, form.RememberMe)
	h.audit(c, utils.NewAuditEntry(c, utils.ActionLoginSuccess, utils.ResourceAuth, strconv.FormatUint(uint64(user.ID), 10)))
	h.redirect(c, middleware.SafeNext(next))
}

func (h *Handler) loginFailed(c *gin.Context, form LoginForm, next string) {
	ctx := c.Request.Context()
	if h.Throttle != nil {
		if err := h.Throttle.Fail(ctx, middleware.ThrottleKey(form.Email)); err != nil {
			h.Logger.WarnContext(ctx, "record failed login", "err", err)
		}
	}
	e := utils.NewAuditEntry(c, utils.ActionLoginFailed, utils.ResourceAuth, "")
	e.UserEmail, e.Success, e.ErrorMsg = middleware.ThrottleKey(form.Email), false, "bad credentials"
	h.audit(c, e)

	middleware.AddFlash(c, msgBadCredentials)
	form.Password = ""
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login", "Form": form, "Errors": map[string]string{}, "Next": next,
	})
}

// LoginThrottled renders the login form for an e-mail in cooldown.
func (h *Handler) LoginThrottled(c *gin.Context) {
	left := middleware.RetryAfter(c)
	minutes := int(math.Ceil(left.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	email := middleware.ThrottleKey(c.PostForm("email"))

	e := utils.NewAuditEntry(c, utils.ActionLoginThrottle, utils.ResourceAuth, "")
	e.UserEmail, e.Success, e.ErrorMsg = email, false, "throttled"
	h.audit(c, e)

	c.Header("Retry-After", strconv.Itoa(int(math.Ceil(left.Seconds()))))
	middleware.AddFlash(c, fmt.Sprintf("Too many failed attempts. Try again in %d minute(s).", minutes))
	h.render(c, http.StatusTooManyRequests, "login.html", gin.H{
		"Title": "Login", "Form": LoginForm{Email: email}, "Errors": map[string]string{}, "Next": c.Query("next"),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.audit(c, utils.NewAuditEntry(c, utils.ActionLogout, utils.ResourceAuth, ""))
	h.Sessions.Logout(c)
	h.redirect(c, "/")
}
