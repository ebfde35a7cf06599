package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// QuoteHandler cotizaciones y su ciclo de vida.
type QuoteHandler struct {
	uc quoteService
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc quoteService) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cotización
// @Description  Congela la mezcla, calcula precios y asigna el número Q-YYYYMM-NNNN.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateQuoteRequest  true  "cotización"
// @Success      201   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse  "contención al asignar número; reintentar"
// @Router       /api/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), c.IP(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar cotizaciones
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status       query  string  false  "DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED"
// @Param        customer_id  query  string  false  "cliente"
// @Param        limit        query  int     false  "límite"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.QuoteListResponse
// @Router       /api/quotes [get]
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("status"), c.Query("customer_id"), pageFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/quotes/:id (acepta id o número de cotización)
func (h *QuoteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar cotización en DRAFT (recalcula precios)
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID"
// @Param        body  body  dto.UpdateQuoteRequest  true  "cambios"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [put]
func (h *QuoteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.IP(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Send godoc
// @Summary      Enviar cotización (DRAFT → SENT)
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.QuoteResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *fiber.Ctx) error {
	return h.transition(c, entity.QuoteStatusSent)
}

// Accept POST /api/quotes/:id/accept (SENT → ACCEPTED)
func (h *QuoteHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, entity.QuoteStatusAccepted)
}

// Reject POST /api/quotes/:id/reject (SENT → REJECTED)
func (h *QuoteHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, entity.QuoteStatusRejected)
}

// Expire POST /api/quotes/:id/expire (DRAFT|SENT vencida → EXPIRED). Solo admin.
func (h *QuoteHandler) Expire(c *fiber.Ctx) error {
	return h.transition(c, entity.QuoteStatusExpired)
}

func (h *QuoteHandler) transition(c *fiber.Ctx, target string) error {
	out, err := h.uc.Transition(c.UserContext(), GetUserID(c), c.IP(), c.Params("id"), target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
