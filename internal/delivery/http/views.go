package http

import (
	"net/http"
	"playstore-predictor/internal/dto"
	"playstore-predictor/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupViews(base *echo.Group) {
	v1 := base.Group("/v1/views")
	{
		v1.POST("", h.OpenView)
		v1.GET("/:id", h.GetView)
		v1.DELETE("/:id", h.CloseView)
		v1.PATCH("/:id/draft", h.UpdateDraft)
		v1.POST("/:id/submit", h.SubmitView)
		v1.GET("/:id/events", h.ViewEvents)
	}
}

func (h *HttpAPIHandler) OpenView(c echo.Context) error {
	ctx := c.Request().Context()
	view, err := h.service.ViewRegistry.Open(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to open prediction view", logger.ErrorField(err))
		return errorResponse(c, err)
	}
	response := dto.NewBaseResponse(http.StatusCreated, "View opened", dto.OpenViewResponse{
		ID:    view.ID(),
		State: view.State(),
	})
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) GetView(c echo.Context) error {
	view, err := h.service.ViewRegistry.Get(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", view.State()))
}

func (h *HttpAPIHandler) CloseView(c echo.Context) error {
	if err := h.service.ViewRegistry.Close(c.Param("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("View closed", nil))
}

func (h *HttpAPIHandler) UpdateDraft(c echo.Context) error {
	var req dto.UpdateFieldRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	view, err := h.service.ViewRegistry.Get(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if err := view.UpdateField(req.Name, req.Value); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Draft updated", view.State()))
}

// SubmitView starts a submission and answers once the view is submitting. The
// outcome arrives on the event stream.
func (h *HttpAPIHandler) SubmitView(c echo.Context) error {
	view, err := h.service.ViewRegistry.Get(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if err := view.SubmitAsync(); err != nil {
		return errorResponse(c, err)
	}
	response := dto.NewBaseResponse(http.StatusAccepted, "Prediction submitted", view.State())
	return c.JSON(response.Code, response)
}
