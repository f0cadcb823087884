package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
)

type UserController struct {
	*baseController
}

func (uc UserController) GetMe(ctx *gin.Context) {
	authUser, err := uc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := uc.app.Repository.User.GetById(ctx, nil, authUser.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get user", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"user": user,
	})
}

func (uc UserController) RegisterUser(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" form:"email" binding:"required,email"`
		Username string `json:"username" form:"username" binding:"required,strNotEmpty,max=150"`
		Password string `json:"password" form:"password" binding:"required,min=8"`
	}
	var body Request

	authUser, err := uc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if !authUser.IsSuperuser {
		util.ResponseFailed(ctx, http.StatusForbidden, "Only superusers can register users", util.GenerateErrorMessages(errors.New("only superusers can register users")), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	newUser := model.User{
		Email:    body.Email,
		Username: body.Username,
	}
	if err := newUser.SetPassword(body.Password); err != nil {
		uc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to register user", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := uc.app.Repository.User.Create(ctx, nil, &newUser); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to register user", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"user": newUser,
	})
}
