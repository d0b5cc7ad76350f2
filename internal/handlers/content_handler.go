package handlers

import (
	"vaidya/internal/models"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves blogs, appointment bookings and newsletter sign-ups.
type ContentHandler struct {
	blogs         *services.BlogService
	appointments  *services.AppointmentService
	subscriptions *services.SubscriberService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(blogs *services.BlogService, appointments *services.AppointmentService, subscriptions *services.SubscriberService) *ContentHandler {
	return &ContentHandler{
		blogs:         blogs,
		appointments:  appointments,
		subscriptions: subscriptions,
	}
}

// RegisterRoutes registers the public content routes.
func (h *ContentHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/blogs", h.HandleGetPosts)
	router.Get("/blogs/:id", h.HandleGetPost)
	router.Post("/appointments", h.HandleBookAppointment)
	router.Post("/subscribers", h.HandleSubscribe)
}

// RegisterAdminRoutes registers content management under an admin-only router.
func (h *ContentHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/blogs", h.HandleGetPosts)
	admin.Post("/blogs", h.HandleCreatePost)
	admin.Put("/blogs/:id", h.HandleUpdatePost)
	admin.Delete("/blogs/:id", h.HandleDeletePost)

	admin.Get("/appointments", h.HandleGetAppointments)
	admin.Post("/appointments/:id/toggle", h.HandleToggleAppointment)

	admin.Get("/subscribers", h.HandleGetSubscribers)
	admin.Delete("/subscribers/:id", h.HandleDeleteSubscriber)
}

// HandleGetPosts lists blog posts, newest first.
func (h *ContentHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.blogs.GetAllPosts(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve blog posts")
	}
	return c.JSON(posts)
}

// HandleGetPost retrieves a post by ID or slug.
func (h *ContentHandler) HandleGetPost(c *fiber.Ctx) error {
	post, err := h.blogs.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Blog post not found")
	}
	return c.JSON(post)
}

// HandleCreatePost publishes a new blog post.
func (h *ContentHandler) HandleCreatePost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		return badBody(c, err)
	}
	post.ID = ""
	if err := h.blogs.CreatePost(c.UserContext(), &post); err != nil {
		return respondError(c, err, "Could not create blog post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleUpdatePost replaces a blog post.
func (h *ContentHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		return badBody(c, err)
	}
	post.ID = c.Params("id")
	if err := h.blogs.UpdatePost(c.UserContext(), &post); err != nil {
		return respondError(c, err, "Could not update blog post")
	}
	return c.JSON(post)
}

// HandleDeletePost removes a blog post.
func (h *ContentHandler) HandleDeletePost(c *fiber.Ctx) error {
	if err := h.blogs.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete blog post")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleBookAppointment stores a consultation request.
func (h *ContentHandler) HandleBookAppointment(c *fiber.Ctx) error {
	var appointment models.Appointment
	if err := c.BodyParser(&appointment); err != nil {
		return badBody(c, err)
	}
	appointment.ID = ""
	if err := h.appointments.BookAppointment(c.UserContext(), &appointment); err != nil {
		return respondError(c, err, "Could not book appointment")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Appointment request received",
		"appointment": appointment,
	})
}

// HandleGetAppointments lists consultation requests.
func (h *ContentHandler) HandleGetAppointments(c *fiber.Ctx) error {
	appointments, err := h.appointments.GetAllAppointments(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve appointments")
	}
	return c.JSON(appointments)
}

// HandleToggleAppointment flips an appointment between Pending and Completed.
func (h *ContentHandler) HandleToggleAppointment(c *fiber.Ctx) error {
	appointment, err := h.appointments.ToggleAppointmentStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not toggle appointment status")
	}
	return c.JSON(appointment)
}

// HandleSubscribe adds an email to the newsletter list.
func (h *ContentHandler) HandleSubscribe(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	subscriber, err := h.subscriptions.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return respondError(c, err, "Could not subscribe")
	}
	return c.Status(fiber.StatusCreated).JSON(subscriber)
}

// HandleGetSubscribers lists newsletter subscribers.
func (h *ContentHandler) HandleGetSubscribers(c *fiber.Ctx) error {
	subscribers, err := h.subscriptions.GetAllSubscribers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve subscribers")
	}
	return c.JSON(subscribers)
}

// HandleDeleteSubscriber removes a subscriber.
func (h *ContentHandler) HandleDeleteSubscriber(c *fiber.Ctx) error {
	if err := h.subscriptions.Unsubscribe(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not remove subscriber")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
