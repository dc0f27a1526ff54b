package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/contactdeck/contactdeck/app/models"
	"github.com/contactdeck/contactdeck/app/repository"
	"github.com/contactdeck/contactdeck/internal/pkg/billing"
	"github.com/contactdeck/contactdeck/internal/pkg/entitlements"
	"github.com/contactdeck/contactdeck/internal/pkg/usercontext"
)

// ContactController manages the org-scoped contact book. Create paths
// enforce the plan limits of the caller's organization.
type ContactController struct {
	repos    *repository.Factory
	catalog  *billing.Catalog
	validate *validator.Validate
}

// NewContactController creates the contact controller.
func NewContactController(repos *repository.Factory, catalog *billing.Catalog) *ContactController {
	return &ContactController{repos: repos, catalog: catalog, validate: validator.New()}
}

type createContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email,max=200"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Company string `json:"company" validate:"omitempty,max=200"`
	Notes   string `json:"notes"`
	GroupID *uint  `json:"groupId"`
}

// HandleCreateContact adds a contact if the organization's plan allows
// another one.
func (cc *ContactController) HandleCreateContact(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := cc.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	count, err := cc.repos.Contacts().CountByOrganization(userCtx.OrganizationID)
	if err != nil {
		return internalError(c, err)
	}
	limits := entitlements.ForPlan(cc.catalog, userCtx.Plan)
	if !limits.CanAddContact(count) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "plan_limit_reached",
			"message": "Contact limit for the current plan reached. Upgrade to add more contacts.",
		})
	}

	contact := &models.Contact{
		OrganizationID: userCtx.OrganizationID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Company:        req.Company,
		Notes:          req.Notes,
		GroupID:        req.GroupID,
		CreatedByID:    userCtx.UserID,
	}
	if err := cc.repos.Contacts().Create(contact); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

// HandleListContacts lists the organization's contacts.
func (cc *ContactController) HandleListContacts(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	contacts, err := cc.repos.Contacts().ListByOrganization(userCtx.OrganizationID, limit, offset)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"contacts": contacts})
}

type createGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// HandleCreateGroup adds a contact group within the plan's group limit.
func (cc *ContactController) HandleCreateGroup(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := cc.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	count, err := cc.repos.Contacts().CountGroupsByOrganization(userCtx.OrganizationID)
	if err != nil {
		return internalError(c, err)
	}
	limits := entitlements.ForPlan(cc.catalog, userCtx.Plan)
	if !limits.CanAddGroup(count) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "plan_limit_reached",
			"message": "Group limit for the current plan reached. Upgrade to add more groups.",
		})
	}

	group := &models.ContactGroup{
		OrganizationID: userCtx.OrganizationID,
		Name:           req.Name,
	}
	if err := cc.repos.Contacts().CreateGroup(group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "group_exists", "message": "A group with this name already exists."})
		}
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// HandleListGroups lists the organization's contact groups.
func (cc *ContactController) HandleListGroups(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	groups, err := cc.repos.Contacts().ListGroups(userCtx.OrganizationID)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"groups": groups})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": err.Error()})
}
