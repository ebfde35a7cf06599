package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/surblend-api/internal/application/dto"
)

// BlendHandler formulaciones de mezcla.
type BlendHandler struct {
	uc blendService
}

// NewBlendHandler construye el handler.
func NewBlendHandler(uc blendService) *BlendHandler {
	return &BlendHandler{uc: uc}
}

// Preview godoc
// @Summary      Calcular una mezcla sin guardarla
// @Description  Devuelve análisis de nutrientes, costo por tonelada y métricas por acre.
// @Tags         blends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateBlendRequest  true  "composición"
// @Success      200   {object}  dto.BlendResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/blends/preview [post]
func (h *BlendHandler) Preview(c *fiber.Ctx) error {
	var in dto.CreateBlendRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Preview(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear mezcla
// @Tags         blends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateBlendRequest  true  "composición"
// @Success      201   {object}  dto.BlendResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/blends [post]
func (h *BlendHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBlendRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/blends?active=true&templates=false
func (h *BlendHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.QueryBool("active", true), c.QueryBool("templates", false), pageFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/blends/:id
func (h *BlendHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar mezcla (recalcula derivados)
// @Tags         blends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID"
// @Param        body  body  dto.UpdateBlendRequest  true  "cambios"
// @Success      200   {object}  dto.BlendResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/blends/{id} [put]
func (h *BlendHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBlendRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/blends/:id. Si hay cotizaciones que la usan, se desactiva.
func (h *BlendHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), GetUserID(c), c.IP(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
