package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	appcontext "github.com/silvioheinze/isr-field-sub000/internal/app_context"
	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index       *IndexController
	Auth        *AuthController
	User        *UserController
	Dataset     *DatasetController
	Field       *FieldController
	Typology    *TypologyController
	Geometry    *GeometryController
	Entry       *EntryController
	Import      *ImportController
	Export      *ExportController
	MappingArea *MappingAreaController
	File        *FileController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:       &IndexController{baseController: bc},
		Auth:        &AuthController{baseController: bc},
		User:        &UserController{baseController: bc},
		Dataset:     &DatasetController{baseController: bc},
		Field:       &FieldController{baseController: bc},
		Typology:    &TypologyController{baseController: bc},
		Geometry:    &GeometryController{baseController: bc},
		Entry:       &EntryController{baseController: bc},
		Import:      &ImportController{baseController: bc},
		Export:      &ExportController{baseController: bc},
		MappingArea: &MappingAreaController{baseController: bc},
		File:        &FileController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}

func (b *baseController) getDatasetRole(ctx *gin.Context, datasetId string) (*auth.JWTPayload, constant.DatasetRole, *model.Dataset, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return nil, constant.DatasetRoleNone, nil, fmt.Errorf("failed to get auth user: %w", err)
	}

	role, dataset, err := b.app.Repository.Dataset.GetRoleOfDataset(ctx, nil, datasetId, user)
	if err != nil {
		return nil, constant.DatasetRoleNone, nil, fmt.Errorf("failed to get dataset role: %w", err)
	}

	return user, role, dataset, nil
}

// asModelUser converts the jwt payload into the model shape expected by
// repository access checks.
func asModelUser(payload *auth.JWTPayload) model.User {
	return model.User{
		BaseModel:   model.BaseModel{ID: payload.ID},
		Email:       payload.Email,
		Username:    payload.Username,
		IsSuperuser: payload.IsSuperuser,
	}
}
