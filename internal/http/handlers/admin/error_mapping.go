package admin

import (
	"net/http"

	"github.com/catalog-next/internal/authz"
	handlershared "github.com/catalog-next/internal/http/handlers/shared"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/service"
)

var orderStatusErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	{Target: service.ErrOrderNotMutable, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
	{Target: service.ErrInvalidOrderStatus, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrOrderStatusConflict, Status: http.StatusConflict, Code: response.CodeStateConflict},
}

var productErrorRules = []handlershared.MappedError{
	{Target: service.ErrProductNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	{Target: service.ErrInvalidPrice, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrCategoryNotFound, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrEmptyPatch, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrProductInUse, Status: http.StatusConflict, Code: response.CodeStateConflict},
}

var categoryErrorRules = []handlershared.MappedError{
	{Target: service.ErrCategoryNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	{Target: service.ErrDuplicateCategory, Status: http.StatusBadRequest, Code: response.CodeDuplicate},
	{Target: service.ErrEmptyPatch, Status: http.StatusBadRequest, Code: response.CodeValidation},
}

var authzErrorRules = []handlershared.MappedError{
	{Target: authz.ErrRoleNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	{Target: authz.ErrInvalidRole, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: authz.ErrPermissionRequired, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: authz.ErrProtectedPolicy, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
}
