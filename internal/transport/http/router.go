package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

type Deps struct {
	Gate    *authmw.Gate
	Metrics *metrics.HTTPMetrics
	// Ready reports whether backing stores answer; nil means always ready.
	Ready   func(ctx context.Context) error

	Auth    *AuthHTTP
	Access  *AccessHTTP
	Tasks   *TaskHTTP
	Catalog *CatalogHTTP
	Orders  *OrderHTTP
	Users   *UserHTTP
	Posts   *PostHTTP
	Admin   *AdminHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Warn("not_ready", "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	required := d.Gate.Required()
	members := authmw.RequireRoles(auth.RoleAdmin, auth.RoleUser)
	admins := authmw.RequireRoles(auth.RoleAdmin)

	a := e.Group("/auth")
	a.POST("/login", d.Auth.Login)
	a.POST("/register", d.Auth.Register)
	a.POST("/logout", d.Auth.Logout, required)
	a.GET("/verify", d.Auth.Verify, required)

	e.GET("/public", d.Access.Public)
	e.GET("/public/personalized", d.Access.Personalized, d.Gate.Optional())
	e.GET("/protected", d.Access.Protected, required)
	e.POST("/protected/action", d.Access.Action, required, members)
	e.GET("/user/profile", d.Access.Profile, required)
	e.GET("/user/data", d.Access.UserData, required, members)

	admin := e.Group("/admin", required, admins)
	admin.GET("/users", d.Access.AdminUsers)
	admin.GET("/dashboard", d.Admin.Dashboard)
	admin.GET("/stats", d.Admin.Stats)
	admin.GET("/orders", d.Admin.ListOrders)
	admin.PUT("/orders/:id/status", d.Admin.UpdateOrderStatus)

	tasks := e.Group("/tasks")
	tasks.GET("", d.Tasks.List)
	tasks.GET("/:id", d.Tasks.Get)
	tasks.POST("", d.Tasks.Create)
	tasks.PUT("/:id", d.Tasks.Update)
	tasks.DELETE("/:id", d.Tasks.Delete)

	products := e.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/category/:id", d.Catalog.CategoryProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.GET("/:id/related", d.Catalog.RelatedProducts)
	products.POST("", d.Catalog.CreateProduct, required, admins)
	products.PUT("/:id", d.Catalog.UpdateProduct, required, admins)
	products.DELETE("/:id", d.Catalog.DeleteProduct, required, admins)

	categories := e.Group("/categories")
	categories.GET("", d.Catalog.ListCategories)
	categories.GET("/:id", d.Catalog.GetCategory)

	users := e.Group("/users", required)
	users.GET("", d.Users.List, admins)
	users.POST("", d.Users.Create, admins)
	users.GET("/:id", d.Users.Get)
	users.PUT("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete, admins)
	users.GET("/:id/orders", d.Users.UserOrders)

	orders := e.Group("/orders", required)
	orders.GET("", d.Orders.List)
	orders.POST("", d.Orders.Create)
	orders.GET("/:id", d.Orders.Get)
	orders.PUT("/:id/cancel", d.Orders.Cancel)

	posts := e.Group("/posts")
	posts.GET("", d.Posts.List)
	posts.GET("/archive/:year", d.Posts.Archive)
	posts.GET("/archive/:year/:month", d.Posts.Archive)
	posts.GET("/categories", d.Posts.ListCategories)
	posts.GET("/categories/:name", d.Posts.GetCategory)
	posts.GET("/categories/:name/posts", d.Posts.CategoryPosts)
	posts.GET("/:id", d.Posts.Get)
	posts.POST("", d.Posts.Create, required, members)
	posts.PUT("/:id", d.Posts.Update, required, members)
	posts.DELETE("/:id", d.Posts.Delete, required, members)
}
