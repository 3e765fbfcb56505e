package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/sury19/ExamPaperPortal/internal/handler"    // import the handlers that implement business logic
	"github.com/sury19/ExamPaperPortal/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// which load balancers and monitoring systems use to verify that the
// service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints and the protected
// identity route.  OTP issuance and verification plus the admin
// password login are the only unauthenticated entry points into the
// system; everything else behind JWTAuth goes through the same token
// validation.  The optional otpLimit middleware rate limits code
// requests per client.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, otpLimit echo.MiddlewareFunc) {
	// Unauthenticated entry points.  SendOtp carries the token bucket so
	// a single client cannot flood the mail queue; the per-email 60s
	// throttle inside the issuance transaction holds regardless.
	e.POST("/send-otp", a.SendOtp, otpLimit)
	e.POST("/verify-otp", a.VerifyOtp)
	e.POST("/admin-login", a.AdminLogin)

	// Identity resolution for any authenticated caller.
	e.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the anonymous browse endpoints.  These apply
// no JWT middleware; guests may list approved papers, download their
// files and read the course catalogue.  The cache middleware is applied
// only to the listing, the hot path for anonymous traffic.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, ad *handler.AdminHandler, cache echo.MiddlewareFunc) {
	e.GET("/papers/public/all", p.ListApproved, cache)
	e.GET("/papers/:id/download", p.Download)
	e.GET("/courses", ad.ListCourses)
}

// RegisterStudent registers the authenticated upload surface.  Any
// valid session may upload; papers start pending and only admins move
// them on.
func RegisterStudent(e *echo.Echo, s *handler.StudentHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	e.POST("/papers/upload", s.Upload, auth)
	e.GET("/papers/mine", s.MyPapers, auth)
}

// RegisterAdmin registers the review workflow and course management.
// Every route here chains JWTAuth and RequireAdmin: a missing or bad
// token fails 401 before the role check, a valid student token fails
// 403 at the role check.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireAdmin()

	e.GET("/admin/dashboard", ad.Dashboard, auth, admin)
	e.GET("/papers/pending", ad.ListPending, auth, admin)
	e.PATCH("/papers/:id/review", ad.ReviewPaper, auth, admin)
	e.PUT("/papers/:id/edit", ad.EditPaper, auth, admin)

	e.POST("/courses", ad.CreateCourse, auth, admin)
	e.PUT("/courses/:id", ad.UpdateCourse, auth, admin)
	e.DELETE("/courses/:id", ad.DeleteCourse, auth, admin)
}
