package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/fees/controller"
)

func FeeAdminRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewFeeController(db)

	comp := r.Group("/fee-components")
	comp.Get("/", h.ListComponents)
	comp.Post("/", h.CreateComponent)
	comp.Put("/:id", h.UpdateComponent)
	comp.Delete("/:id", h.DeleteComponent)

	tpl := r.Group("/fee-templates")
	tpl.Get("/", h.ListTemplates)
	tpl.Post("/", h.CreateTemplate)
	tpl.Get("/:id", h.GetTemplate)
	tpl.Patch("/:id", h.PatchTemplate)
	tpl.Post("/:id/components", h.AddComponent)
	tpl.Patch("/:id/components/:component_id", h.SetOverride)
	tpl.Delete("/:id/components/:component_id", h.RemoveComponent)
}
