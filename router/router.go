// router/router.go

package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeevanhealth/shell/cart"
	shell_errors "github.com/jeevanhealth/shell/errors"
	"github.com/jeevanhealth/shell/middleware"
	"github.com/jeevanhealth/shell/model"
	"github.com/jeevanhealth/shell/queries"
	"github.com/jeevanhealth/shell/session"
)

// Deps are the constructed stores the router serves.
type Deps struct {
	Resolver *session.Resolver
	Queries  *queries.Client
	Cart     *cart.Store
}

// SetupRouter wires the public surface, the cart, and the four role-gated
// dashboard groups.
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	registerAuth(router, deps)
	registerPublic(router, deps)
	registerCart(router, deps)

	portal := router.Group("/portal")
	portal.Use(middleware.RequireAccess(deps.Resolver, deps.Queries.CustomerPortalPolicy()))
	registerPortal(portal, deps)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireAccess(deps.Resolver, deps.Queries.AdminDashboardPolicy()))
	registerAdmin(admin, deps)

	doctor := router.Group("/doctor")
	doctor.Use(middleware.RequireAccess(deps.Resolver, deps.Queries.DoctorDashboardPolicy()))
	registerDoctor(doctor, deps)

	phlebotomist := router.Group("/phlebotomist")
	phlebotomist.Use(middleware.RequireAccess(deps.Resolver, deps.Queries.PhlebotomistDashboardPolicy()))
	registerPhlebotomist(phlebotomist, deps)

	return router
}

func registerAuth(r *gin.Engine, deps Deps) {
	r.POST("/auth/logout", func(c *gin.Context) {
		if err := deps.Resolver.Logout(c.Request.Context()); err != nil {
			if errors.Is(err, shell_errors.ErrNotAuthenticated) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "logged out"})
	})
	r.GET("/auth/session", func(c *gin.Context) {
		s, err := deps.Resolver.CurrentSession(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "profile unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"authenticated":    s.Identity != nil,
			"role":             s.Role,
			"needs_onboarding": s.NeedsOnboarding(),
		})
	})
}

func registerPublic(r *gin.Engine, deps Deps) {
	r.GET("/services", func(c *gin.Context) {
		services, err := deps.Queries.AllServices(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "services unavailable"})
			return
		}
		c.JSON(http.StatusOK, services)
	})
	r.GET("/packages", func(c *gin.Context) {
		packages, err := deps.Queries.ActiveHealthPackages(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "packages unavailable"})
			return
		}
		c.JSON(http.StatusOK, packages)
	})
}

func registerCart(r *gin.Engine, deps Deps) {
	r.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"items":            deps.Cart.Items(),
			"total_price":      deps.Cart.TotalPrice(),
			"total_list_price": deps.Cart.TotalListPrice(),
			"savings":          deps.Cart.Savings(),
		})
	})
	r.POST("/cart/items", func(c *gin.Context) {
		var item model.CartItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart item"})
			return
		}
		items, err := deps.Cart.Add(item)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart storage failure"})
			return
		}
		c.JSON(http.StatusOK, items)
	})
	r.DELETE("/cart/items/:id", func(c *gin.Context) {
		items, err := deps.Cart.Remove(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart storage failure"})
			return
		}
		c.JSON(http.StatusOK, items)
	})
	r.POST("/cart/checkout", func(c *gin.Context) {
		var details cart.CheckoutDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout details"})
			return
		}
		ref, err := deps.Cart.Checkout(c.Request.Context(), deps.Queries, details)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"reference": ref})
	})
}

func registerPortal(g *gin.RouterGroup, deps Deps) {
	g.GET("/patients", func(c *gin.Context) {
		patients, err := deps.Queries.MyPatients(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "patients unavailable"})
			return
		}
		c.JSON(http.StatusOK, patients)
	})
	g.GET("/vitals", func(c *gin.Context) {
		vitals, err := deps.Queries.MyFamilyVitals(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "vitals unavailable"})
			return
		}
		c.JSON(http.StatusOK, vitals)
	})
}

func registerAdmin(g *gin.RouterGroup, deps Deps) {
	g.GET("/customers", func(c *gin.Context) {
		customers, err := deps.Queries.AllCustomers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "customers unavailable"})
			return
		}
		c.JSON(http.StatusOK, customers)
	})
	g.GET("/patients", func(c *gin.Context) {
		patients, err := deps.Queries.AllPatients(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "patients unavailable"})
			return
		}
		c.JSON(http.StatusOK, patients)
	})
	g.POST("/patients", func(c *gin.Context) {
		var patient model.Patient
		if err := c.ShouldBindJSON(&patient); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient"})
			return
		}
		if err := deps.Queries.AddPatient(c.Request.Context(), patient); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, patient)
	})
	g.GET("/vitals", func(c *gin.Context) {
		vitals, err := deps.Queries.AllVitals(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "vitals unavailable"})
			return
		}
		c.JSON(http.StatusOK, vitals)
	})
	g.GET("/bookings", func(c *gin.Context) {
		bookings, err := deps.Queries.AllBookings(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "bookings unavailable"})
			return
		}
		c.JSON(http.StatusOK, bookings)
	})
}

func registerDoctor(g *gin.RouterGroup, deps Deps) {
	g.GET("/patients", func(c *gin.Context) {
		patients, err := deps.Queries.AllPatients(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "patients unavailable"})
			return
		}
		c.JSON(http.StatusOK, patients)
	})
}

func registerPhlebotomist(g *gin.RouterGroup, deps Deps) {
	g.GET("/collections", func(c *gin.Context) {
		collections, err := deps.Queries.SampleCollections(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "collections unavailable"})
			return
		}
		c.JSON(http.StatusOK, collections)
	})
}
