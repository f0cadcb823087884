package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
)

type AuthController struct {
	*baseController
}

const ErrInvalidCredentials = "invalid email or password"

func (ac AuthController) Login(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" form:"email" binding:"required,email"`
		Password string `json:"password" form:"password" binding:"required,strNotEmpty"`
	}
	var body Request

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := ac.app.Repository.User.GetByEmail(ctx, nil, body.Email)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Login failed", util.GenerateErrorMessages(errors.New(ErrInvalidCredentials)), nil)
		return
	}

	if !user.CheckPassword(body.Password) {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Login failed", util.GenerateErrorMessages(errors.New(ErrInvalidCredentials)), nil)
		return
	}

	refreshToken, accessToken, err := ac.app.JWTService.GenerateRefreshAndAccessToken(auth.JWTPayload{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	})
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Login failed", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"refreshToken": refreshToken,
		"accessToken":  accessToken,
	})
}

func (ac AuthController) VerifyJwtAccessToken(ctx *gin.Context) {
	token := ctx.Param("token")

	// Keep in mind that verify jwt token does not check database.
	jwtClaims, err := ac.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err), gin.H{
			"tokenValid": false,
		})
		return
	}

	if jwtClaims == nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New("jwt claim empty")), gin.H{
			"tokenValid": false,
		})
		return
	}

	if jwtClaims.Type != constant.JWT_TYPE_ACCESS {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New("invalid jwt token type")), gin.H{
			"tokenValid": false,
		})
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"tokenValid": true,
		"payload":    jwtClaims,
	})
}

func (ac AuthController) RefreshAccessToken(ctx *gin.Context) {
	refreshToken, err := util.ReadRefreshToken(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err), nil)
		return
	}

	jwtClaims, err := ac.app.JWTService.VerifyJwtToken(refreshToken)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err), nil)
		return
	}

	if jwtClaims == nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New("jwt claim empty")), nil)
		return
	}

	if jwtClaims.Type != constant.JWT_TYPE_REFRESH {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New("invalid jwt token type")), nil)
		return
	}

	// Reload the user so revoked accounts or changed flags take effect on
	// the next token pair.
	user, err := ac.app.Repository.User.GetById(ctx, nil, jwtClaims.User.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err), nil)
		return
	}

	newRefreshToken, newAccessToken, err := ac.app.JWTService.GenerateRefreshAndAccessToken(auth.JWTPayload{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"refreshToken": newRefreshToken,
		"accessToken":  newAccessToken,
	})
}
