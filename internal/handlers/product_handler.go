package handlers

import (
	"vaidya/internal/middleware"
	"vaidya/internal/models"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductView is a product as listed in the storefront.
type ProductView struct {
	models.Product
	DiscountPercent int    `json:"discount_percent"`
	PrimaryImage    string `json:"primary_image"`
}

func newProductView(p models.Product) ProductView {
	return ProductView{Product: p, DiscountPercent: p.DiscountPercent(), PrimaryImage: p.PrimaryImage()}
}

// ProductHandler serves the catalog, product reviews and the admin product screens.
type ProductHandler struct {
	service       *services.ProductService
	reviewService *services.ReviewService
	authService   *services.AuthService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, reviewService *services.ReviewService, authService *services.AuthService) *ProductHandler {
	return &ProductHandler{
		service:       service,
		reviewService: reviewService,
		authService:   authService,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleGetCategories)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Get("/:id/reviews", h.HandleGetProductReviews)
	productRoutes.Post("/:id/reviews", middleware.AuthRequired(h.authService), h.HandleCreateReview)
}

// RegisterAdminRoutes registers product and review management under an admin-only router.
func (h *ProductHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/products", h.HandleAdminGetProducts)
	admin.Post("/products", h.HandleCreateProduct)
	admin.Put("/products/:id", h.HandleUpdateProduct)
	admin.Delete("/products/:id", h.HandleDeleteProduct)

	admin.Get("/reviews", h.HandleGetReviews)
	admin.Delete("/reviews/:id", h.HandleDeleteReview)
}

// HandleGetProducts lists the catalog filtered by ?category= and ?q=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.Browse(c.UserContext(), c.Query("category", services.CategoryAll), c.Query("q"))
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return c.JSON(views)
}

// HandleGetCategories lists the distinct product categories.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(append([]string{services.CategoryAll}, categories...))
}

// HandleGetProduct retrieves a single product by ID or slug.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Product not found")
	}
	return c.JSON(newProductView(*product))
}

// HandleGetProductReviews lists the reviews of one product.
func (h *ProductHandler) HandleGetProductReviews(c *fiber.Ctx) error {
	reviews, err := h.reviewService.GetProductReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HandleCreateReview stores a review written by the signed-in shopper.
func (h *ProductHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	review := models.Review{
		ProductID: c.Params("id"),
		UserID:    middleware.UserID(c),
		Author:    middleware.UserName(c),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.reviewService.CreateReview(c.UserContext(), &review); err != nil {
		return respondError(c, err, "Could not create review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleAdminGetProducts lists every product without filtering.
func (h *ProductHandler) HandleAdminGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = ""

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = c.Params("id")

	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetReviews lists every review for moderation.
func (h *ProductHandler) HandleGetReviews(c *fiber.Ctx) error {
	reviews, err := h.reviewService.GetAllReviews(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}

// HandleDeleteReview permanently removes a review.
func (h *ProductHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.reviewService.DeleteReview(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete review")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
